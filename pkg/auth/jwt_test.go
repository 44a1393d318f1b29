package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tok, err := GenerateToken(42, "b8f3c1de-0000-4000-8000-000000000001", "fleet@example.com", RoleCustomer)
	require.NoError(t, err)

	claims, err := ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "fleet@example.com", claims.Email)
	assert.Equal(t, RoleCustomer, claims.Role)
	assert.Equal(t, "b8f3c1de-0000-4000-8000-000000000001", claims.Subject)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	tok, err := GenerateToken(1, "user:1", "admin@example.com", RoleAdmin)
	require.NoError(t, err)

	_, err = ValidateToken(tok + "x")
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	old := TokenTTL
	TokenTTL = -time.Minute
	defer func() { TokenTTL = old }()

	tok, err := GenerateToken(1, "user:1", "admin@example.com", RoleAdmin)
	require.NoError(t, err)

	_, err = ValidateToken(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("kenworth-w900")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "kenworth-w900"))
	assert.False(t, CheckPassword(hash, "peterbilt-379"))
}
