package repository

import (
	"context"

	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/pkg/logger"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, id uint) (*model.Customer, error)
	FindByEmail(ctx context.Context, email string) (*model.Customer, error)
	FindAll(ctx context.Context) ([]model.Customer, error)
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	logger.Debug("Creating customer in database", map[string]interface{}{
		"email": customer.Email,
	})

	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		logger.Error("Failed to create customer in database", err, map[string]interface{}{
			"email": customer.Email,
		})
		return err
	}

	logger.Debug("Customer created in database", map[string]interface{}{
		"customer_id": customer.ID,
		"email":       customer.Email,
	})
	return nil
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		logger.Debug("Customer not loaded by ID", map[string]interface{}{
			"customer_id": id,
			"error":       err.Error(),
		})
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&customer).Error; err != nil {
		logger.Debug("Customer not loaded by email", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindAll(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&customers).Error; err != nil {
		logger.Error("Failed to list customers", err)
		return nil, err
	}

	logger.Debug("Customers listed from database", map[string]interface{}{
		"count": len(customers),
	})
	return customers, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	logger.Debug("Updating customer in database", map[string]interface{}{
		"customer_id": customer.ID,
	})

	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		logger.Error("Failed to update customer in database", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return err
	}
	return nil
}

// Delete removes the customer and their favorites in one transaction.
// Returns false when no customer had the id.
func (r *customerRepository) Delete(ctx context.Context, id uint) (bool, error) {
	logger.Debug("Deleting customer from database", map[string]interface{}{
		"customer_id": id,
	})

	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Customer{}, id)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete customer from database", err, map[string]interface{}{
			"customer_id": id,
		})
		return false, err
	}

	logger.Debug("Customer delete finished", map[string]interface{}{
		"customer_id": id,
		"deleted":     deleted,
	})
	return deleted, nil
}
