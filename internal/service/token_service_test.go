package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	appErrors "github.com/noah-isme/sma-attendance-scoring/pkg/errors"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(expiresIn time.Duration) models.JWTClaims {
	return models.JWTClaims{
		UserID: "teacher-1",
		Role:   models.RoleTeacher,
		Email:  "teacher@example.sch.id",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestTokenServiceValidateToken(t *testing.T) {
	svc := NewTokenService("secret", 0)
	token := signToken(t, jwt.SigningMethodHS256, []byte("secret"), validClaims(time.Hour))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestTokenServiceRejectsInvalidTokens(t *testing.T) {
	svc := NewTokenService("secret", 0)
	noRole := validClaims(time.Hour)
	noRole.Role = ""
	noExpiry := validClaims(time.Hour)
	noExpiry.ExpiresAt = nil

	cases := map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims(time.Hour)),
		"expired":      signToken(t, jwt.SigningMethodHS256, []byte("secret"), validClaims(-time.Hour)),
		"wrong method": signToken(t, jwt.SigningMethodHS512, []byte("secret"), validClaims(time.Hour)),
		"missing role": signToken(t, jwt.SigningMethodHS256, []byte("secret"), noRole),
		"no expiry":    signToken(t, jwt.SigningMethodHS256, []byte("secret"), noExpiry),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
		})
	}
}

func TestTokenServiceWithoutSecret(t *testing.T) {
	svc := NewTokenService("", 0)
	_, err := svc.ValidateToken(signToken(t, jwt.SigningMethodHS256, []byte("x"), validClaims(time.Hour)))
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
