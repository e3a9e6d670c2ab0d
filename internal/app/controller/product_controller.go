package controller

import (
	"errors"
	"net/http"

	"github.com/aiqfome/favorites-backend/internal/app/service"
	apperrors "github.com/aiqfome/favorites-backend/internal/errors"
	"github.com/aiqfome/favorites-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// GetProduct resolves a catalog product
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	product, err := ctrl.productService.GetProduct(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, product)
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrProductUnavailable):
		apperrors.ServiceUnavailable(c, apperrors.ProductUnavailable, "Product catalog is unavailable, please try again later")
	default:
		middleware.GetLoggerFromContext(c).Error("Failed to resolve product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "")
	}
}
