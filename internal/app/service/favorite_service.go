package service

import (
	"context"
	"errors"

	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/internal/app/repository"
	"github.com/aiqfome/favorites-backend/internal/metrics"
	"github.com/aiqfome/favorites-backend/pkg/logger"
	"gorm.io/gorm"
)

type FavoriteService interface {
	// AddFavorites favorites every resolvable, not yet favorited product in
	// productIDs and returns the customer's full favorites list. Unknown,
	// unavailable and duplicate ids are skipped.
	AddFavorites(ctx context.Context, customerID uint, productIDs []uint) ([]model.FavoriteView, error)
	ListFavorites(ctx context.Context, customerID uint) ([]model.FavoriteView, error)
	// RemoveFavorite reports whether a favorite was removed
	RemoveFavorite(ctx context.Context, customerID, productID uint) (bool, error)
}

type favoriteService struct {
	favoriteRepo   repository.FavoriteRepository
	customerRepo   repository.CustomerRepository
	productService ProductService
	metrics        *metrics.Metrics
}

func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	customerRepo repository.CustomerRepository,
	productService ProductService,
	m *metrics.Metrics,
) FavoriteService {
	return &favoriteService{
		favoriteRepo:   favoriteRepo,
		customerRepo:   customerRepo,
		productService: productService,
		metrics:        m,
	}
}

func (s *favoriteService) AddFavorites(ctx context.Context, customerID uint, productIDs []uint) ([]model.FavoriteView, error) {
	logger.Info("Adding favorites", map[string]interface{}{
		"customer_id": customerID,
		"requested":   len(productIDs),
	})

	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add favorites: customer not found", map[string]interface{}{
				"customer_id": customerID,
			})
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	seen := make(map[uint]struct{}, len(productIDs))
	toCreate := make([]model.Favorite, 0, len(productIDs))

	for _, productID := range productIDs {
		if _, dup := seen[productID]; dup {
			continue
		}

		exists, err := s.favoriteRepo.Exists(ctx, customerID, productID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		if _, err := s.productService.GetProduct(ctx, productID); err != nil {
			logger.Info("Skipping unresolvable product", map[string]interface{}{
				"customer_id": customerID,
				"product_id":  productID,
				"reason":      err.Error(),
			})
			continue
		}

		toCreate = append(toCreate, model.Favorite{CustomerID: customerID, ProductID: productID})
		seen[productID] = struct{}{}
	}

	created, err := s.createBatch(ctx, customerID, toCreate)
	if err != nil {
		return nil, err
	}

	logger.Info("Favorites added", map[string]interface{}{
		"customer_id": customerID,
		"created":     created,
	})
	return s.ListFavorites(ctx, customerID)
}

// createBatch persists favorites and returns how many rows this call wrote.
// Pairs a concurrent request inserted after the Exists checks are skipped by
// the repository without failing the rest of the batch.
func (s *favoriteService) createBatch(ctx context.Context, customerID uint, favorites []model.Favorite) (int64, error) {
	if len(favorites) == 0 {
		return 0, nil
	}

	created, err := s.favoriteRepo.CreateMany(ctx, favorites)
	if err != nil {
		logger.Error("Failed to create favorites", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return 0, err
	}

	if skipped := int64(len(favorites)) - created; skipped > 0 {
		logger.Warn("Products already favorited by a concurrent request", map[string]interface{}{
			"customer_id": customerID,
			"skipped":     skipped,
		})
	}
	s.metrics.FavoritesCreated(int(created))
	return created, nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, customerID uint) ([]model.FavoriteView, error) {
	favorites, err := s.favoriteRepo.FindByCustomerID(ctx, customerID)
	if err != nil {
		logger.Error("Failed to list favorites", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}

	views := make([]model.FavoriteView, 0, len(favorites))
	for _, f := range favorites {
		product, err := s.productService.GetProduct(ctx, f.ProductID)
		if err != nil {
			logger.Warn("Omitting favorite with unresolvable product", map[string]interface{}{
				"customer_id": customerID,
				"product_id":  f.ProductID,
				"reason":      err.Error(),
			})
			continue
		}
		views = append(views, model.FavoriteView{
			ID:         f.ID,
			CustomerID: f.CustomerID,
			Product:    product,
		})
	}

	logger.Debug("Favorites listed", map[string]interface{}{
		"customer_id": customerID,
		"stored":      len(favorites),
		"resolved":    len(views),
	})
	return views, nil
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, customerID, productID uint) (bool, error) {
	logger.Info("Removing favorite", map[string]interface{}{
		"customer_id": customerID,
		"product_id":  productID,
	})

	removed, err := s.favoriteRepo.Delete(ctx, customerID, productID)
	if err != nil {
		return false, err
	}
	if !removed {
		logger.Warn("Favorite to remove was not found", map[string]interface{}{
			"customer_id": customerID,
			"product_id":  productID,
		})
	}
	return removed, nil
}
