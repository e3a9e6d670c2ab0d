package controller

import (
	"errors"
	"net/http"

	"github.com/aiqfome/favorites-backend/internal/app/service"
	apperrors "github.com/aiqfome/favorites-backend/internal/errors"
	"github.com/aiqfome/favorites-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginFormRequest is the OAuth2 password-grant form
type LoginFormRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

// Token exchanges credentials for a bearer token. Accepts a JSON body or an
// OAuth2 password form (username carries the email).
// POST /api/v1/auth/token
func (ctrl *AuthController) Token(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var email, password string
	if c.ContentType() == gin.MIMEJSON {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Warn("Invalid login request", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.RespondWithBindingError(c, err)
			return
		}
		email, password = req.Email, req.Password
	} else {
		var req LoginFormRequest
		if err := c.ShouldBind(&req); err != nil {
			log.Warn("Invalid login form", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.RespondWithBindingError(c, err)
			return
		}
		email, password = req.Username, req.Password
	}

	customer, token, err := ctrl.authService.Login(c.Request.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Incorrect email or password")
			return
		}
		log.Error("Login failed", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		return
	}

	log.Info("Token issued", map[string]interface{}{
		"customer_id": customer.ID,
	})

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token.Token,
		TokenType:   "bearer",
		ExpiresAt:   token.ExpiresAt.Unix(),
	})
}

// Logout revokes the presented token
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token, expiresAt, ok := middleware.GetAccessToken(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), token, expiresAt); err != nil {
		log.Error("Logout failed", err)
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalExternalAPI, "Could not revoke token, please try again")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
