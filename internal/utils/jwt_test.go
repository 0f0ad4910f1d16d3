package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenCarriesEmailAndRole(t *testing.T) {
	tok, err := NewAccessToken("secret", "ana@example.com", "CLIENT", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", claims["sub"])
	assert.Equal(t, "CLIENT", claims["role"])
}

func TestRefreshTokenHashIsStable(t *testing.T) {
	ref, err := NewRefreshToken(30)
	require.NoError(t, err)
	assert.Len(t, ref.Raw, 96)

	assert.Equal(t, HashRefreshRaw(ref.Raw), HashRefreshRaw(ref.Raw))

	other, err := NewRefreshToken(30)
	require.NoError(t, err)
	assert.NotEqual(t, ref.Raw, other.Raw)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
