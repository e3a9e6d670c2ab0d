package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aiqfome/favorites-backend/internal/app/cache"
	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/internal/app/repository"
	"github.com/aiqfome/favorites-backend/internal/db"
	"github.com/aiqfome/favorites-backend/pkg/catalog"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeCatalog serves a fixed product set and counts fetches per id
type fakeCatalog struct {
	mu          sync.Mutex
	products    map[uint]*catalog.Product
	unavailable map[uint]bool
	calls       map[uint]int
	delay       time.Duration
}

func newFakeCatalog(ids ...uint) *fakeCatalog {
	c := &fakeCatalog{
		products:    make(map[uint]*catalog.Product),
		unavailable: make(map[uint]bool),
		calls:       make(map[uint]int),
	}
	for _, id := range ids {
		c.products[id] = &catalog.Product{
			ID:       id,
			Title:    "Product",
			Price:    decimal.RequireFromString("10.50"),
			Category: "electronics",
			Image:    "https://fakestoreapi.com/img/product.jpg",
			Rating:   &catalog.Rating{Rate: 4.5, Count: 10},
		}
	}
	return c
}

func (c *fakeCatalog) FetchProduct(ctx context.Context, productID uint) (*catalog.Product, error) {
	c.mu.Lock()
	c.calls[productID]++
	delay := c.delay
	unavailable := c.unavailable[productID]
	product, ok := c.products[productID]
	c.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if unavailable {
		return nil, catalog.ErrCatalogUnavailable
	}
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (c *fakeCatalog) callsFor(productID uint) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[productID]
}

func (c *fakeCatalog) remove(productID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, productID)
}

type serviceDeps struct {
	db           *gorm.DB
	redis        *miniredis.Miniredis
	catalog      *fakeCatalog
	customerRepo repository.CustomerRepository
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
	products     ProductService
}

func setupServiceDeps(t *testing.T, catalogIDs ...uint) *serviceDeps {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fc := newFakeCatalog(catalogIDs...)
	productRepo := repository.NewProductRepository(testDB)
	productCache := cache.NewProductCache(client, time.Hour, 200*time.Millisecond, nil)

	return &serviceDeps{
		db:           testDB,
		redis:        mr,
		catalog:      fc,
		customerRepo: repository.NewCustomerRepository(testDB),
		favoriteRepo: repository.NewFavoriteRepository(testDB),
		productRepo:  productRepo,
		products:     NewProductService(productCache, productRepo, fc, 24*time.Hour, nil),
	}
}

func (d *serviceDeps) createCustomer(t *testing.T, email string) *model.Customer {
	customer := &model.Customer{
		Name:         "Cliente",
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	require.NoError(t, d.customerRepo.Create(context.Background(), customer))
	return customer
}

func createFavorites(t *testing.T, repo repository.FavoriteRepository, favorites []model.Favorite) {
	t.Helper()
	_, err := repo.CreateMany(context.Background(), favorites)
	require.NoError(t, err)
}

func productIDs(views []model.FavoriteView) []uint {
	ids := make([]uint, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.Product.ID)
	}
	return ids
}
