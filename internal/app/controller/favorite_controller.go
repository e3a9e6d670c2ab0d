package controller

import (
	"errors"
	"net/http"

	"github.com/aiqfome/favorites-backend/internal/app/service"
	apperrors "github.com/aiqfome/favorites-backend/internal/errors"
	"github.com/aiqfome/favorites-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// MaxFavoritesPerRequest caps product_ids in one AddFavorites call
const MaxFavoritesPerRequest = 100

type FavoriteController struct {
	favoriteService service.FavoriteService
}

func NewFavoriteController(favoriteService service.FavoriteService) *FavoriteController {
	return &FavoriteController{favoriteService: favoriteService}
}

type AddFavoritesRequest struct {
	ProductIDs []uint `json:"product_ids" binding:"required,min=1,max=100,dive,gt=0"`
}

// AddFavorites favorites a batch of products for the customer
// POST /api/v1/customers/:id/favorites
func (ctrl *FavoriteController) AddFavorites(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	customerID, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid customer ID")
		return
	}

	var req AddFavoritesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add favorites request", map[string]interface{}{
			"customer_id": customerID,
			"error":       err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	views, err := ctrl.favoriteService.AddFavorites(c.Request.Context(), customerID, req.ProductIDs)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			apperrors.NotFound(c, apperrors.CustomerNotFound, "Customer not found")
			return
		}
		log.Error("Failed to add favorites", err, map[string]interface{}{
			"customer_id": customerID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create favorites")
		return
	}

	c.JSON(http.StatusCreated, views)
}

// ListFavorites returns the customer's favorites with product details
// GET /api/v1/customers/:id/favorites
func (ctrl *FavoriteController) ListFavorites(c *gin.Context) {
	customerID, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid customer ID")
		return
	}

	views, err := ctrl.favoriteService.ListFavorites(c.Request.Context(), customerID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list favorites", err, map[string]interface{}{
			"customer_id": customerID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list favorites")
		return
	}

	c.JSON(http.StatusOK, views)
}

// RemoveFavorite removes one product from the customer's favorites
// DELETE /api/v1/customers/:id/favorites/:product_id
func (ctrl *FavoriteController) RemoveFavorite(c *gin.Context) {
	customerID, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid customer ID")
		return
	}
	productID, err := middleware.ParseIDParam(c, "product_id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	removed, err := ctrl.favoriteService.RemoveFavorite(c.Request.Context(), customerID, productID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to remove favorite", err, map[string]interface{}{
			"customer_id": customerID,
			"product_id":  productID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete favorite")
		return
	}
	if !removed {
		apperrors.NotFound(c, apperrors.FavoriteNotFound, "Favorite not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
