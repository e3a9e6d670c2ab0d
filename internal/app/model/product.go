package model

import (
	"time"

	"github.com/aiqfome/favorites-backend/pkg/catalog"
	"github.com/shopspring/decimal"
)

func init() {
	// prices leave the API as JSON numbers, e.g. 109.95
	decimal.MarshalJSONWithoutQuotes = true
}

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is an immutable snapshot of a catalog product. ID is the catalog id.
type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"type:varchar(100)" json:"category"`
	Image       string          `json:"image"`
	Rating      *Rating         `gorm:"serializer:json" json:"rating,omitempty"`
	FetchedAt   time.Time       `gorm:"index;not null" json:"-"` // when the snapshot left the catalog
}

func (Product) TableName() string {
	return "products"
}

// ProductFromCatalog snapshots a catalog product at fetchedAt
func ProductFromCatalog(p *catalog.Product, fetchedAt time.Time) *Product {
	product := &Product{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price.Round(2),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		FetchedAt:   fetchedAt,
	}
	if p.Rating != nil {
		product.Rating = &Rating{Rate: p.Rating.Rate, Count: p.Rating.Count}
	}
	return product
}
