package model

import "time"

// Favorite links a customer to a catalog product. The pair is unique.
type Favorite struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uint      `gorm:"not null;uniqueIndex:uix_customer_product,priority:1" json:"customer_id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:uix_customer_product,priority:2;index" json:"product_id"`
	CreatedAt  time.Time `json:"created_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// FavoriteView is the read-time projection returned to clients
type FavoriteView struct {
	ID         uint     `json:"id"`
	CustomerID uint     `json:"customer_id"`
	Product    *Product `json:"product"`
}
