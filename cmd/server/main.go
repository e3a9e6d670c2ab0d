package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aiqfome/favorites-backend/config"
	"github.com/aiqfome/favorites-backend/internal/app/cache"
	"github.com/aiqfome/favorites-backend/internal/app/controller"
	"github.com/aiqfome/favorites-backend/internal/app/repository"
	"github.com/aiqfome/favorites-backend/internal/app/service"
	"github.com/aiqfome/favorites-backend/internal/db"
	"github.com/aiqfome/favorites-backend/internal/metrics"
	"github.com/aiqfome/favorites-backend/internal/middleware"
	"github.com/aiqfome/favorites-backend/internal/router"
	"github.com/aiqfome/favorites-backend/internal/scheduler"
	"github.com/aiqfome/favorites-backend/pkg/catalog"
	"github.com/aiqfome/favorites-backend/pkg/logger"
	"github.com/aiqfome/favorites-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting favorites backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	database, err := db.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the product cache and the token blacklist. Both degrade to
	// misses when it is down, so a failed ping is not fatal.
	redisClient := redis.New(&cfg.Redis)
	if err := redisClient.Ping(context.Background()); err != nil {
		logger.Warn("Continuing without Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	catalogClient, err := catalog.NewClient(catalog.Config{
		BaseURL:        cfg.Catalog.BaseURL,
		Timeout:        cfg.Catalog.Timeout,
		MaxRetries:     cfg.Catalog.MaxRetries,
		RetryBaseDelay: cfg.Catalog.RetryBaseDelay,
	})
	if err != nil {
		logger.Fatal("Failed to create catalog client", err)
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(database)
	favoriteRepo := repository.NewFavoriteRepository(database)
	productRepo := repository.NewProductRepository(database)

	// Initialize services
	productCache := cache.NewProductCache(redisClient.Raw(), cfg.Redis.Expiration, cfg.Redis.Timeout, appMetrics)
	productService := service.NewProductService(
		productCache,
		productRepo,
		catalogClient,
		cfg.Products.SnapshotMaxAge,
		appMetrics,
	)
	customerService := service.NewCustomerService(customerRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, customerRepo, productService, appMetrics)
	authService := service.NewAuthService(
		customerRepo,
		redisClient,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	customerController := controller.NewCustomerController(customerService)
	productController := controller.NewProductController(productService)
	favoriteController := controller.NewFavoriteController(favoriteService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, redisClient)
	loginLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)

	// Setup router
	r := router.NewRouter(
		authController,
		customerController,
		productController,
		favoriteController,
		authMiddleware,
		loginLimiter,
		appMetrics,
		registry,
		cfg,
	)
	engine := r.Setup()

	snapshotScheduler := scheduler.NewProductSnapshotScheduler(productService, cfg.Products.PruneSchedule)
	if err := snapshotScheduler.Start(); err != nil {
		logger.Fatal("Failed to start product snapshot scheduler", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": server.Addr,
			"pid":     os.Getpid(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...", map[string]interface{}{
		"timeout": cfg.Server.ShutdownTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	snapshotScheduler.Stop()

	if err := redisClient.Close(); err != nil {
		logger.Error("Failed to close Redis connection", err)
	}
	if err := db.Close(database); err != nil {
		logger.Error("Failed to close database connection", err)
	}

	logger.Info("Server stopped successfully")
}
