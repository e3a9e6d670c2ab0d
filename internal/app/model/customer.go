package model

import "time"

type CustomerRole string

const (
	RoleUser  CustomerRole = "user"
	RoleAdmin CustomerRole = "admin"
)

// Customer is hard deleted; its email stays unique across the table.
type Customer struct {
	ID           uint         `gorm:"primarykey" json:"id"`
	Name         string       `gorm:"type:varchar(100);not null" json:"name"`
	Email        string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"not null" json:"-"`
	Role         CustomerRole `gorm:"type:varchar(20);default:'user';not null" json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) IsAdmin() bool {
	return c.Role == RoleAdmin
}
