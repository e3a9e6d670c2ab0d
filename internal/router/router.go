package router

import (
	"net/http"
	"time"

	"github.com/aiqfome/favorites-backend/config"
	"github.com/aiqfome/favorites-backend/internal/app/controller"
	"github.com/aiqfome/favorites-backend/internal/app/model"
	apperrors "github.com/aiqfome/favorites-backend/internal/errors"
	"github.com/aiqfome/favorites-backend/internal/metrics"
	"github.com/aiqfome/favorites-backend/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	authController     *controller.AuthController
	customerController *controller.CustomerController
	productController  *controller.ProductController
	favoriteController *controller.FavoriteController
	authMiddleware     *middleware.AuthMiddleware
	loginLimiter       *middleware.IPRateLimiter
	metrics            *metrics.Metrics
	gatherer           prometheus.Gatherer
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	customerController *controller.CustomerController,
	productController *controller.ProductController,
	favoriteController *controller.FavoriteController,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *middleware.IPRateLimiter,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		customerController: customerController,
		productController:  productController,
		favoriteController: favoriteController,
		authMiddleware:     authMiddleware,
		loginLimiter:       loginLimiter,
		metrics:            m,
		gatherer:           gatherer,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	apperrors.UseJSONFieldNames()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(r.metrics))
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	if r.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	auth := r.authMiddleware

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/token", r.loginLimiter.Limit(), r.authController.Token)
			authGroup.POST("/logout", auth.Authenticate(), r.authController.Logout)
		}

		v1.GET("/products/:id", r.productController.GetProduct)

		customers := v1.Group("/customers")
		{
			customers.POST("", r.customerController.Register)
			customers.GET("", auth.Authenticate(), auth.RequireRole(model.RoleAdmin), r.customerController.List)

			customer := customers.Group("/:id")
			customer.Use(auth.Authenticate())
			{
				customer.GET("", auth.RequireSelfOrAdmin("id"), r.customerController.Get)
				customer.PUT("", auth.RequireSelfOrAdmin("id"), r.customerController.Update)
				customer.DELETE("", auth.RequireSelfOrAdmin("id"), r.customerController.Delete)

				favorites := customer.Group("/favorites")
				favorites.Use(auth.RequireSelf("id"))
				{
					favorites.GET("", r.favoriteController.ListFavorites)
					favorites.POST("", r.favoriteController.AddFavorites)
					favorites.DELETE("/:product_id", r.favoriteController.RemoveFavorite)
				}
			}
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg)
		}
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
		return cors.New(cfg)
	}
	cfg.AllowOrigins = allowedOrigins
	return cors.New(cfg)
}
