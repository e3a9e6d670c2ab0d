package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aiqfome/favorites-backend/internal/app/model"
	apperrors "github.com/aiqfome/favorites-backend/internal/errors"
	"github.com/aiqfome/favorites-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlacklist) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[token], nil
}

func setupMiddlewareTest(blacklist TokenBlacklist) (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router, NewAuthMiddleware(testJWTSecret, blacklist)
}

func generateTestToken(t *testing.T, userID uint, email, role string, expiry time.Duration) string {
	token, err := util.GenerateAccessToken(userID, email, role, testJWTSecret, expiry)
	require.NoError(t, err)
	return token.Token
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	valid := generateTestToken(t, 1, "test@example.com", "user", 15*time.Minute)
	expired := generateTestToken(t, 1, "test@example.com", "user", -time.Minute)
	revoked := generateTestToken(t, 2, "gone@example.com", "user", 15*time.Minute)

	tests := []struct {
		name       string
		header     string
		blacklist  *fakeBlacklist
		wantStatus int
		wantCode   string
	}{
		{name: "Valid token", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "Lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK},
		{name: "Missing header", header: "", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthUnauthorized},
		{name: "Wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenInvalid},
		{name: "Garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenInvalid},
		{name: "Expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenExpired},
		{
			name:       "Revoked token",
			header:     "Bearer " + revoked,
			blacklist:  &fakeBlacklist{revoked: map[string]bool{revoked: true}},
			wantStatus: http.StatusUnauthorized,
			wantCode:   apperrors.AuthTokenRevoked,
		},
		{
			name:       "Blacklist down fails open",
			header:     "Bearer " + revoked,
			blacklist:  &fakeBlacklist{err: errors.New("redis down")},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var blacklist TokenBlacklist
			if tt.blacklist != nil {
				blacklist = tt.blacklist
			}
			router, auth := setupMiddlewareTest(blacklist)
			router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
				userID, _ := GetUserID(c)
				role, _ := GetUserRole(c)
				token, expiresAt, ok := GetAccessToken(c)
				assert.True(t, ok)
				assert.NotEmpty(t, token)
				assert.False(t, expiresAt.IsZero())
				c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"Admin allowed", "admin", http.StatusOK},
		{"User forbidden", "user", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest(nil)
			router.GET("/admin", auth.Authenticate(), auth.RequireRole(model.RoleAdmin), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+generateTestToken(t, 1, "a@example.com", tt.role, time.Minute))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_RequireSelf(t *testing.T) {
	tests := []struct {
		name       string
		userID     uint
		role       string
		path       string
		adminOK    bool
		wantStatus int
		wantCode   string
	}{
		{name: "Own resource", userID: 5, role: "user", path: "/customers/5", wantStatus: http.StatusOK},
		{name: "Other customer", userID: 5, role: "user", path: "/customers/6", wantStatus: http.StatusForbidden, wantCode: apperrors.AuthzOwnerOnly},
		{name: "Admin on self-only route", userID: 1, role: "admin", path: "/customers/6", wantStatus: http.StatusForbidden, wantCode: apperrors.AuthzOwnerOnly},
		{name: "Admin on self-or-admin route", userID: 1, role: "admin", path: "/customers/6", adminOK: true, wantStatus: http.StatusOK},
		{name: "Non-numeric id", userID: 5, role: "user", path: "/customers/abc", wantStatus: http.StatusBadRequest, wantCode: apperrors.ValidationInvalidID},
		{name: "Zero id", userID: 5, role: "user", path: "/customers/0", wantStatus: http.StatusBadRequest, wantCode: apperrors.ValidationInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest(nil)
			guard := auth.RequireSelf("id")
			if tt.adminOK {
				guard = auth.RequireSelfOrAdmin("id")
			}
			router.GET("/customers/:id", auth.Authenticate(), guard, func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+generateTestToken(t, tt.userID, "x@example.com", tt.role, time.Minute))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
			}
		})
	}
}
