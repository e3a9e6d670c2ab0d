package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
	}{
		{"nil error", nil, "", InternalServerError},
		{"record not found", gorm.ErrRecordNotFound, "customer", ResourceNotFound},
		{"wrapped duplicate email", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), "email", ResourceAlreadyExists},
		{"postgres duplicate email", errors.New(`duplicate key value violates unique constraint "idx_customers_email"`), "create customer", CustomerEmailExists},
		{"foreign key", gorm.ErrForeignKeyViolated, "create favorites", ResourceConflict},
		{"not null", errors.New(`null value in column "name" violates not-null constraint`), "create", ValidationRequired},
		{"network", errors.New("dial tcp: connection refused"), "list", InternalExternalAPI},
		{"unknown", errors.New("boom"), "delete customer", InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

type bindTarget struct {
	Email      string `json:"email" binding:"required,email"`
	ProductIDs []uint `json:"product_ids" binding:"required,min=1,dive,gt=0"`
}

func TestRespondWithBindingError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()

	tests := []struct {
		name       string
		body       string
		wantFields map[string]string
		wantCode   string
	}{
		{
			name: "validator errors use json names",
			body: `{"email":"nope","product_ids":[1,0]}`,
			wantFields: map[string]string{
				"email":          "must be a valid email",
				"product_ids[1]": "must be greater than 0",
			},
			wantCode: ValidationInvalidInput,
		},
		{
			name:       "type mismatch",
			body:       `{"email":"a@b.co","product_ids":"x"}`,
			wantFields: map[string]string{"product_ids": "must be []uint"},
			wantCode:   ValidationInvalidInput,
		},
		{
			name:     "malformed json",
			body:     `{`,
			wantCode: ValidationInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var target bindTarget
			err := c.ShouldBindJSON(&target)
			require.Error(t, err)
			RespondWithBindingError(c, err)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body ValidationError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error)
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, body.Fields)
			}
		})
	}
}

func TestHelpersAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	NotFound(c, FavoriteNotFound, "Favorite not found")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"FAVORITE_NOT_FOUND","message":"Favorite not found"}`, w.Body.String())
}
