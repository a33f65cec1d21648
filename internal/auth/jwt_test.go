package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "media-attached-filter", time.Hour)

	token, err := m.GenerateAccessToken("42", RoleAdministrator)
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, RoleAdministrator, claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", "media-attached-filter", time.Hour)
	token, err := m.GenerateAccessToken("42", RoleAdministrator)
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := NewJWTManager("other", "media-attached-filter", time.Hour).VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewJWTManager("secret", "someone-else", time.Hour).VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		// NewJWTManager replaces a non-positive ttl with the default
		short := &JWTManager{secretKey: []byte("secret"), issuer: "media-attached-filter", ttl: -time.Minute}
		stale, err := short.GenerateAccessToken("42", RoleAdministrator)
		require.NoError(t, err)
		_, err = m.VerifyAccessToken(stale)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := m.VerifyAccessToken("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("user id required", func(t *testing.T) {
		_, err := m.GenerateAccessToken("", RoleAdministrator)
		assert.Error(t, err)
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := ExtractTokenFromHeader("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = ExtractTokenFromHeader("bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = ExtractTokenFromHeader("Basic abc")
	assert.Error(t, err)

	_, err = ExtractTokenFromHeader("Bearer ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNonceManager(t *testing.T) {
	n := NewNonceManager("secret", "media-attached-filter", time.Hour)

	nonce, err := n.Create("maf-search", "42")
	require.NoError(t, err)

	assert.NoError(t, n.Verify(nonce, "maf-search", "42"))
	assert.ErrorIs(t, n.Verify(nonce, "other-action", "42"), ErrInvalidNonce)
	assert.ErrorIs(t, n.Verify(nonce, "maf-search", "7"), ErrInvalidNonce)
	assert.ErrorIs(t, n.Verify("", "maf-search", "42"), ErrInvalidNonce)
	assert.ErrorIs(t, n.Verify("garbage", "maf-search", "42"), ErrInvalidNonce)

	_, err = n.Create("", "42")
	assert.Error(t, err)
}

func TestNonceManager_NotInterchangeableWithAccessTokens(t *testing.T) {
	m := NewJWTManager("secret", "media-attached-filter", time.Hour)
	n := NewNonceManager("secret", "media-attached-filter", time.Hour)

	access, err := m.GenerateAccessToken("42", RoleAdministrator)
	require.NoError(t, err)
	assert.ErrorIs(t, n.Verify(access, "maf-search", "42"), ErrInvalidNonce)

	nonce, err := n.Create("maf-search", "42")
	require.NoError(t, err)
	_, err = m.VerifyAccessToken(nonce)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDeriveKey(t *testing.T) {
	a := deriveKey("secret", "maf nonce")
	assert.Len(t, a, 32)
	assert.Equal(t, a, deriveKey("secret", "maf nonce"))
	assert.NotEqual(t, a, deriveKey("secret", "other"))
	assert.NotEqual(t, a, deriveKey("secret2", "maf nonce"))
}
