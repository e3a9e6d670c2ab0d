package db

import (
	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every persisted type in migration order
func Models() []interface{} {
	return []interface{}{
		&model.Customer{},
		&model.Product{},
		&model.Favorite{},
	}
}

// Migrate runs database migrations
func Migrate(database *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := database.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
