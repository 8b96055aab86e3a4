package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParseToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("top-secret", "user-123", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, "top-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", "user-123", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret-b")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("top-secret", "user-123", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "top-secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseToken_Malformed(t *testing.T) {
	_, err := ParseToken("not-a-jwt", "top-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("", "top-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
