package service

import (
	"context"
	"errors"
	"time"

	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/internal/app/repository"
	"github.com/aiqfome/favorites-backend/pkg/logger"
	"github.com/aiqfome/favorites-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// TokenRevoker records revoked access tokens
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, token string, expiry time.Duration) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.Customer, *util.AccessToken, error)
	Logout(ctx context.Context, token string, expiresAt time.Time) error
}

type authService struct {
	customerRepo repository.CustomerRepository
	revoker      TokenRevoker
	jwtSecret    string
	accessExpiry time.Duration
}

func NewAuthService(
	customerRepo repository.CustomerRepository,
	revoker TokenRevoker,
	jwtSecret string,
	accessExpiry time.Duration,
) AuthService {
	return &authService{
		customerRepo: customerRepo,
		revoker:      revoker,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.Customer, *util.AccessToken, error) {
	email = normalizeEmail(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	customer, err := s.customerRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: customer not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find customer", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(customer.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"customer_id": customer.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	token, err := util.GenerateAccessToken(customer.ID, customer.Email, string(customer.Role), s.jwtSecret, s.accessExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return nil, nil, err
	}

	logger.Info("Customer logged in", map[string]interface{}{
		"customer_id": customer.ID,
		"role":        customer.Role,
	})
	return customer, token, nil
}

// Logout revokes token for the rest of its lifetime
func (s *authService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	remaining := time.Until(expiresAt)
	if remaining <= 0 {
		return nil
	}
	if err := s.revoker.BlacklistToken(ctx, token, remaining); err != nil {
		logger.Error("Failed to revoke token", err)
		return err
	}
	logger.Info("Token revoked", map[string]interface{}{
		"expires_in": remaining.String(),
	})
	return nil
}
