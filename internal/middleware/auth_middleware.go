package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/internal/errors"
	"github.com/aiqfome/favorites-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated customer
const (
	UserIDKey         = "user_id"
	UserEmailKey      = "user_email"
	UserRoleKey       = "user_role"
	AccessTokenKey    = "access_token"
	TokenExpiresAtKey = "token_expires_at"
)

const blacklistCheckTimeout = 500 * time.Millisecond

// TokenBlacklist answers whether a token was revoked by logout
type TokenBlacklist interface {
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret string
	blacklist TokenBlacklist
}

// NewAuthMiddleware builds the middleware. blacklist may be nil.
func NewAuthMiddleware(jwtSecret string, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		blacklist: blacklist,
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate validates the bearer token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Header("WWW-Authenticate", "Bearer")
			errors.Unauthorized(c, "Authentication required")
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Header("WWW-Authenticate", "Bearer")
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Malformed authorization header")
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Header("WWW-Authenticate", "Bearer")
			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Token has expired")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid token")
			}
			return
		}

		if m.isRevoked(c, token) {
			log.Warn("Revoked token presented", map[string]interface{}{
				"user_id": claims.UserID,
			})
			c.Header("WWW-Authenticate", "Bearer")
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Token has been revoked")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, model.CustomerRole(claims.Role))
		c.Set(AccessTokenKey, token)
		if claims.ExpiresAt != nil {
			c.Set(TokenExpiresAtKey, claims.ExpiresAt.Time)
		}

		log.Debug("Customer authenticated", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})

		c.Next()
	}
}

// isRevoked fails open: an unreachable blacklist lets the token through.
func (m *AuthMiddleware) isRevoked(c *gin.Context, token string) bool {
	if m.blacklist == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), blacklistCheckTimeout)
	defer cancel()

	revoked, err := m.blacklist.IsTokenBlacklisted(ctx, token)
	if err != nil {
		GetLoggerFromContext(c).Warn("Token blacklist unavailable, skipping check", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	return revoked
}

// RequireRole checks the customer has one of roles
func (m *AuthMiddleware) RequireRole(roles ...model.CustomerRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, ok := GetUserRole(c)
		if !ok {
			errors.Forbidden(c, "Role information missing")
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        userID,
			"user_role":      role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "Administrator access required")
	}
}

// RequireSelf lets a request through only when the path parameter param is
// the authenticated customer's own id.
func (m *AuthMiddleware) RequireSelf(param string) gin.HandlerFunc {
	return m.requireOwner(param, false)
}

// RequireSelfOrAdmin is RequireSelf that also admits administrators
func (m *AuthMiddleware) RequireSelfOrAdmin(param string) gin.HandlerFunc {
	return m.requireOwner(param, true)
}

func (m *AuthMiddleware) requireOwner(param string, allowAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, err := ParseIDParam(c, param)
		if err != nil {
			errors.BadRequest(c, errors.ValidationInvalidID, "Invalid customer ID")
			return
		}

		userID, ok := GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}
		if userID == targetID {
			c.Next()
			return
		}
		if role, _ := GetUserRole(c); allowAdmin && role == model.RoleAdmin {
			c.Next()
			return
		}

		GetLoggerFromContext(c).Warn("Access to another customer's resource denied", map[string]interface{}{
			"user_id":   userID,
			"target_id": targetID,
			"path":      c.Request.URL.Path,
		})
		errors.RespondWithError(c, http.StatusForbidden, errors.AuthzOwnerOnly, "You can only access your own resources")
	}
}

// ParseIDParam reads a positive integer path parameter
func ParseIDParam(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, strconv.ErrRange
	}
	return uint(id), nil
}

// GetUserID extracts the customer ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserEmail extracts the customer email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// GetUserRole extracts the customer role from context
func GetUserRole(c *gin.Context) (model.CustomerRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(model.CustomerRole)
	return r, ok
}

// GetAccessToken returns the raw bearer token and its expiry
func GetAccessToken(c *gin.Context) (string, time.Time, bool) {
	token := c.GetString(AccessTokenKey)
	if token == "" {
		return "", time.Time{}, false
	}
	return token, c.GetTime(TokenExpiresAtKey), true
}
