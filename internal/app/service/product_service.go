package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aiqfome/favorites-backend/internal/app/cache"
	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/internal/app/repository"
	"github.com/aiqfome/favorites-backend/internal/metrics"
	"github.com/aiqfome/favorites-backend/pkg/catalog"
	"github.com/aiqfome/favorites-backend/pkg/logger"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product catalog unavailable")
)

// ProductCatalog fetches products from the upstream catalog
type ProductCatalog interface {
	FetchProduct(ctx context.Context, productID uint) (*catalog.Product, error)
}

// ProductService resolves products through cache, durable snapshot and
// catalog, in that order.
type ProductService interface {
	GetProduct(ctx context.Context, productID uint) (*model.Product, error)
	PruneStaleSnapshots(ctx context.Context) (int64, error)
}

type productService struct {
	cache          cache.ProductCache
	productRepo    repository.ProductRepository
	catalog        ProductCatalog
	snapshotMaxAge time.Duration
	metrics        *metrics.Metrics
	group          singleflight.Group
	now            func() time.Time
}

func NewProductService(
	productCache cache.ProductCache,
	productRepo repository.ProductRepository,
	productCatalog ProductCatalog,
	snapshotMaxAge time.Duration,
	m *metrics.Metrics,
) ProductService {
	return &productService{
		cache:          productCache,
		productRepo:    productRepo,
		catalog:        productCatalog,
		snapshotMaxAge: snapshotMaxAge,
		metrics:        m,
		now:            time.Now,
	}
}

func (s *productService) GetProduct(ctx context.Context, productID uint) (*model.Product, error) {
	if product, ok := s.cache.Get(ctx, productID); ok {
		return product, nil
	}

	if product := s.freshSnapshot(ctx, productID); product != nil {
		s.cache.Set(ctx, product)
		return product, nil
	}

	v, err, shared := s.group.Do(strconv.FormatUint(uint64(productID), 10), func() (interface{}, error) {
		// one caller going away must not fail the others waiting on this fetch
		return s.fetchFromCatalog(context.WithoutCancel(ctx), productID)
	})
	if shared {
		logger.Debug("Catalog fetch shared between callers", map[string]interface{}{
			"product_id": productID,
		})
	}
	if err != nil {
		return nil, err
	}
	return v.(*model.Product), nil
}

func (s *productService) freshSnapshot(ctx context.Context, productID uint) *model.Product {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product snapshot lookup failed", map[string]interface{}{
				"product_id": productID,
				"error":      err.Error(),
			})
		}
		return nil
	}
	if s.snapshotMaxAge > 0 && s.now().Sub(product.FetchedAt) > s.snapshotMaxAge {
		return nil
	}
	return product
}

func (s *productService) fetchFromCatalog(ctx context.Context, productID uint) (*model.Product, error) {
	fetched, err := s.catalog.FetchProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			s.metrics.CatalogOutcome(metrics.CatalogNotFound)
			logger.Info("Product not found in catalog", map[string]interface{}{
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		s.metrics.CatalogOutcome(metrics.CatalogUnavailable)
		logger.Warn("Catalog unavailable for product", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrProductUnavailable, err)
	}
	s.metrics.CatalogOutcome(metrics.CatalogFound)

	product := model.ProductFromCatalog(fetched, s.now().UTC())
	s.cache.Set(ctx, product)
	if err := s.productRepo.Upsert(ctx, product); err != nil {
		logger.Warn("Failed to store product snapshot", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
	}

	return product, nil
}

// PruneStaleSnapshots deletes snapshots older than the configured max age
func (s *productService) PruneStaleSnapshots(ctx context.Context) (int64, error) {
	if s.snapshotMaxAge <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().Add(-s.snapshotMaxAge)
	deleted, err := s.productRepo.DeleteFetchedBefore(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to prune stale product snapshots", err)
		return 0, err
	}
	return deleted, nil
}
