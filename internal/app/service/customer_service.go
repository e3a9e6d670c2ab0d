package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/internal/app/repository"
	"github.com/aiqfome/favorites-backend/pkg/logger"
	"github.com/aiqfome/favorites-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrInvalidRole        = errors.New("invalid customer role")
)

// UpdateCustomerInput carries a partial update; nil fields are left alone
type UpdateCustomerInput struct {
	Name     *string
	Password *string
}

type CustomerService interface {
	Register(ctx context.Context, name, email, password string) (*model.Customer, error)
	Create(ctx context.Context, name, email, password string, role model.CustomerRole) (*model.Customer, error)
	GetByID(ctx context.Context, id uint) (*model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)
	Update(ctx context.Context, id uint, input UpdateCustomerInput) (*model.Customer, error)
	Delete(ctx context.Context, id uint) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a regular customer. Admins only come from seeding.
func (s *customerService) Register(ctx context.Context, name, email, password string) (*model.Customer, error) {
	return s.Create(ctx, name, email, password, model.RoleUser)
}

func (s *customerService) Create(ctx context.Context, name, email, password string, role model.CustomerRole) (*model.Customer, error) {
	email = normalizeEmail(email)
	logger.Info("Attempting customer registration", map[string]interface{}{
		"email": email,
		"role":  role,
	})

	if role != model.RoleUser && role != model.RoleAdmin {
		return nil, ErrInvalidRole
	}

	existing, err := s.customerRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing customer", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if existing != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashed, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	customer := &model.Customer{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	logger.Info("Customer registered successfully", map[string]interface{}{
		"customer_id": customer.ID,
		"email":       email,
		"role":        customer.Role,
	})
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, id uint) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		logger.Error("Failed to load customer", err, map[string]interface{}{
			"customer_id": id,
		})
		return nil, err
	}
	return customer, nil
}

func (s *customerService) List(ctx context.Context) ([]model.Customer, error) {
	return s.customerRepo.FindAll(ctx)
}

func (s *customerService) Update(ctx context.Context, id uint, input UpdateCustomerInput) (*model.Customer, error) {
	logger.Info("Updating customer", map[string]interface{}{
		"customer_id":     id,
		"change_name":     input.Name != nil,
		"change_password": input.Password != nil,
	})

	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.Password != nil {
		hashed, err := util.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		customer.PasswordHash = hashed
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Delete removes the customer together with their favorites
func (s *customerService) Delete(ctx context.Context, id uint) error {
	logger.Info("Deleting customer", map[string]interface{}{
		"customer_id": id,
	})

	deleted, err := s.customerRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		logger.Warn("Customer to delete was not found", map[string]interface{}{
			"customer_id": id,
		})
		return ErrCustomerNotFound
	}
	return nil
}
