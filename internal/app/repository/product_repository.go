package repository

import (
	"context"
	"time"

	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository stores durable product snapshots, the tier between the
// Redis cache and the catalog.
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	Upsert(ctx context.Context, product *model.Product) error
	DeleteFetchedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Upsert replaces the stored snapshot for product.ID
func (r *productRepository) Upsert(ctx context.Context, product *model.Product) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(product).Error
	if err != nil {
		logger.Error("Failed to upsert product snapshot", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	logger.Debug("Product snapshot stored", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

func (r *productRepository) DeleteFetchedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("fetched_at < ?", cutoff).Delete(&model.Product{})
	if result.Error != nil {
		logger.Error("Failed to prune product snapshots", result.Error, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0, result.Error
	}

	logger.Info("Product snapshots pruned", map[string]interface{}{
		"cutoff":  cutoff,
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
