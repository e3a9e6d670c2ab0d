package repository

import (
	"context"

	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository interface {
	Exists(ctx context.Context, customerID, productID uint) (bool, error)
	CreateMany(ctx context.Context, favorites []model.Favorite) (int64, error)
	FindByCustomerID(ctx context.Context, customerID uint) ([]model.Favorite, error)
	Delete(ctx context.Context, customerID, productID uint) (bool, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Exists(ctx context.Context, customerID, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check favorite existence", err, map[string]interface{}{
			"customer_id": customerID,
			"product_id":  productID,
		})
		return false, err
	}
	return count > 0, nil
}

// CreateMany inserts all favorites in one transaction and returns how many
// rows were written. Pairs that already exist, including ones a concurrent
// request inserted after the caller checked, are skipped row by row.
func (r *favoriteRepository) CreateMany(ctx context.Context, favorites []model.Favorite) (int64, error) {
	if len(favorites) == 0 {
		return 0, nil
	}

	logger.Debug("Creating favorites in database", map[string]interface{}{
		"customer_id": favorites[0].CustomerID,
		"count":       len(favorites),
	})

	var inserted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).Create(&favorites)
		inserted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		logger.Error("Failed to create favorites in database", err, map[string]interface{}{
			"customer_id": favorites[0].CustomerID,
		})
		return 0, err
	}

	if skipped := int64(len(favorites)) - inserted; skipped > 0 {
		logger.Warn("Favorites already present were skipped", map[string]interface{}{
			"customer_id": favorites[0].CustomerID,
			"skipped":     skipped,
		})
	}
	logger.Debug("Favorites created in database", map[string]interface{}{
		"customer_id": favorites[0].CustomerID,
		"count":       inserted,
	})
	return inserted, nil
}

func (r *favoriteRepository) FindByCustomerID(ctx context.Context, customerID uint) ([]model.Favorite, error) {
	logger.Debug("Finding favorites by customer ID in database", map[string]interface{}{
		"customer_id": customerID,
	})

	var favorites []model.Favorite
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Find(&favorites).Error
	if err != nil {
		logger.Error("Failed to find favorites by customer ID in database", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}

	logger.Debug("Favorites found by customer ID in database", map[string]interface{}{
		"customer_id": customerID,
		"count":       len(favorites),
	})
	return favorites, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, customerID, productID uint) (bool, error) {
	logger.Debug("Deleting favorite from database", map[string]interface{}{
		"customer_id": customerID,
		"product_id":  productID,
	})

	result := r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&model.Favorite{})
	if result.Error != nil {
		logger.Error("Failed to delete favorite from database", result.Error, map[string]interface{}{
			"customer_id": customerID,
			"product_id":  productID,
		})
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
