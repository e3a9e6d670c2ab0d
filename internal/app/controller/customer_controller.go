package controller

import (
	"errors"
	"net/http"

	"github.com/aiqfome/favorites-backend/internal/app/service"
	apperrors "github.com/aiqfome/favorites-backend/internal/errors"
	"github.com/aiqfome/favorites-backend/internal/middleware"
	"github.com/aiqfome/favorites-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

type CustomerController struct {
	customerService service.CustomerService
}

func NewCustomerController(customerService service.CustomerService) *CustomerController {
	return &CustomerController{customerService: customerService}
}

type RegisterCustomerRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type UpdateCustomerRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
}

// Register creates a customer account
// POST /api/v1/customers
func (ctrl *CustomerController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	customer, err := ctrl.customerService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		ctrl.respondServiceError(c, err, "create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// List returns every customer (admin only)
// GET /api/v1/customers
func (ctrl *CustomerController) List(c *gin.Context) {
	customers, err := ctrl.customerService.List(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list customers", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list customers")
		return
	}
	c.JSON(http.StatusOK, customers)
}

// Get returns one customer
// GET /api/v1/customers/:id
func (ctrl *CustomerController) Get(c *gin.Context) {
	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid customer ID")
		return
	}

	customer, err := ctrl.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		ctrl.respondServiceError(c, err, "get customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Update changes name and/or password
// PUT /api/v1/customers/:id
func (ctrl *CustomerController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid customer ID")
		return
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid customer update request", map[string]interface{}{
			"customer_id": id,
			"error":       err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	customer, err := ctrl.customerService.Update(c.Request.Context(), id, service.UpdateCustomerInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		ctrl.respondServiceError(c, err, "update customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Delete removes the customer and their favorites
// DELETE /api/v1/customers/:id
func (ctrl *CustomerController) Delete(c *gin.Context) {
	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid customer ID")
		return
	}

	if err := ctrl.customerService.Delete(c.Request.Context(), id); err != nil {
		ctrl.respondServiceError(c, err, "delete customer")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Customer deleted", map[string]interface{}{
		"customer_id": id,
	})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (ctrl *CustomerController) respondServiceError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrCustomerNotFound):
		apperrors.NotFound(c, apperrors.CustomerNotFound, "Customer not found")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		apperrors.Conflict(c, apperrors.CustomerEmailExists, "Email already registered")
	case errors.Is(err, util.ErrPasswordTooLong):
		apperrors.RespondWithValidationError(c, map[string]string{"password": "must be at most 72 bytes"})
	default:
		middleware.GetLoggerFromContext(c).Error("Customer operation failed", err, map[string]interface{}{
			"operation": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}
