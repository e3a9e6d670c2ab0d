package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateAccessToken(t *testing.T) {
	tests := []struct {
		name   string
		userID uint
		email  string
		role   string
	}{
		{
			name:   "Customer token",
			userID: 1,
			email:  "cliente@example.com",
			role:   "user",
		},
		{
			name:   "Admin token",
			userID: 2,
			email:  "admin@example.com",
			role:   "admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := time.Now()
			token, err := GenerateAccessToken(tt.userID, tt.email, tt.role, testSecret, 30*time.Minute)

			require.NoError(t, err)
			require.NotNil(t, token)
			assert.NotEmpty(t, token.Token)
			assert.WithinDuration(t, before.Add(30*time.Minute), token.ExpiresAt, 2*time.Second)
		})
	}
}

func TestValidateToken(t *testing.T) {
	token, err := GenerateAccessToken(123, "test@example.com", "user", testSecret, 15*time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{
			name:   "Valid token",
			token:  token.Token,
			secret: testSecret,
		},
		{
			name:    "Invalid secret",
			token:   token.Token,
			secret:  "wrong-secret",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Invalid token format",
			token:   "invalid.token.format",
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Empty token",
			token:   "",
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(123), claims.UserID)
			assert.Equal(t, "test@example.com", claims.Email)
			assert.Equal(t, "test@example.com", claims.Subject)
			assert.Equal(t, "user", claims.Role)
		})
	}
}

func TestValidateExpiredToken(t *testing.T) {
	token, err := GenerateAccessToken(1, "test@example.com", "user", testSecret, -time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token.Token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestTokenClaimsTimes(t *testing.T) {
	token, err := GenerateAccessToken(42, "user@example.com", "admin", testSecret, 15*time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token.Token, testSecret)
	require.NoError(t, err)

	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.True(t, claims.IssuedAt.Before(claims.ExpiresAt.Time))
	assert.Equal(t, token.ExpiresAt.Unix(), claims.ExpiresAt.Unix())
}
