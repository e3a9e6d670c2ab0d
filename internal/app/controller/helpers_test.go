package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aiqfome/favorites-backend/internal/app/cache"
	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/internal/app/repository"
	"github.com/aiqfome/favorites-backend/internal/app/service"
	"github.com/aiqfome/favorites-backend/internal/db"
	apperrors "github.com/aiqfome/favorites-backend/internal/errors"
	"github.com/aiqfome/favorites-backend/internal/middleware"
	"github.com/aiqfome/favorites-backend/pkg/catalog"
	appredis "github.com/aiqfome/favorites-backend/pkg/redis"
	"github.com/aiqfome/favorites-backend/pkg/util"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubCatalog struct {
	products    map[uint]bool
	unavailable bool
}

func (s *stubCatalog) FetchProduct(ctx context.Context, productID uint) (*catalog.Product, error) {
	if s.unavailable {
		return nil, catalog.ErrCatalogUnavailable
	}
	if !s.products[productID] {
		return nil, catalog.ErrProductNotFound
	}
	return &catalog.Product{
		ID:       productID,
		Title:    "Mens Casual Slim Fit",
		Price:    decimal.RequireFromString("15.99"),
		Category: "men's clothing",
		Image:    "https://fakestoreapi.com/img/71YXzeOuslL._AC_UY879_.jpg",
		Rating:   &catalog.Rating{Rate: 2.1, Count: 430},
	}, nil
}

type controllerTestEnv struct {
	router    *gin.Engine
	catalog   *stubCatalog
	redis     *miniredis.Miniredis
	customers service.CustomerService
}

// setupControllerTest wires every controller behind the same middleware the
// server uses, backed by SQLite, miniredis and a stub catalog.
func setupControllerTest(t *testing.T, catalogIDs ...uint) *controllerTestEnv {
	gin.SetMode(gin.TestMode)
	apperrors.UseJSONFieldNames()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	redisClient := appredis.NewFromClient(rdb)
	t.Cleanup(func() { _ = redisClient.Close() })

	stub := &stubCatalog{products: make(map[uint]bool)}
	for _, id := range catalogIDs {
		stub.products[id] = true
	}

	customerRepo := repository.NewCustomerRepository(testDB)
	favoriteRepo := repository.NewFavoriteRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)

	productService := service.NewProductService(
		cache.NewProductCache(rdb, time.Hour, 200*time.Millisecond, nil),
		productRepo, stub, 24*time.Hour, nil,
	)
	customerService := service.NewCustomerService(customerRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, customerRepo, productService, nil)
	authService := service.NewAuthService(customerRepo, redisClient, testSecret, 30*time.Minute)

	authCtrl := NewAuthController(authService)
	customerCtrl := NewCustomerController(customerService)
	productCtrl := NewProductController(productService)
	favoriteCtrl := NewFavoriteController(favoriteService)
	auth := middleware.NewAuthMiddleware(testSecret, redisClient)

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.POST("/auth/token", authCtrl.Token)
	router.POST("/auth/logout", auth.Authenticate(), authCtrl.Logout)
	router.POST("/customers", customerCtrl.Register)
	router.GET("/customers", auth.Authenticate(), auth.RequireRole(model.RoleAdmin), customerCtrl.List)
	router.GET("/customers/:id", auth.Authenticate(), auth.RequireSelfOrAdmin("id"), customerCtrl.Get)
	router.PUT("/customers/:id", auth.Authenticate(), auth.RequireSelfOrAdmin("id"), customerCtrl.Update)
	router.DELETE("/customers/:id", auth.Authenticate(), auth.RequireSelfOrAdmin("id"), customerCtrl.Delete)
	router.GET("/products/:id", productCtrl.GetProduct)
	router.POST("/customers/:id/favorites", auth.Authenticate(), auth.RequireSelf("id"), favoriteCtrl.AddFavorites)
	router.GET("/customers/:id/favorites", auth.Authenticate(), auth.RequireSelf("id"), favoriteCtrl.ListFavorites)
	router.DELETE("/customers/:id/favorites/:product_id", auth.Authenticate(), auth.RequireSelf("id"), favoriteCtrl.RemoveFavorite)

	return &controllerTestEnv{
		router:    router,
		catalog:   stub,
		redis:     mr,
		customers: customerService,
	}
}

func (e *controllerTestEnv) createCustomer(t *testing.T, email string, role model.CustomerRole) (*model.Customer, string) {
	customer, err := e.customers.Create(context.Background(), "Maria", email, "secret123", role)
	require.NoError(t, err)

	token, err := util.GenerateAccessToken(customer.ID, customer.Email, string(customer.Role), testSecret, 30*time.Minute)
	require.NoError(t, err)
	return customer, token.Token
}

func (e *controllerTestEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	require.Equal(t, code, decodeMap(t, w)["error"])
}
