package vault

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRefreshToken(t *testing.T) {
	raw, hash, err := GenerateRefreshToken()
	require.NoError(t, err)

	// 32 random bytes, URL-safe encoded, no padding.
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)

	// The stored hash is the hex SHA-256 of the raw value.
	sum := sha256.Sum256([]byte(raw))
	assert.Equal(t, hex.EncodeToString(sum[:]), hash)
	assert.Equal(t, hash, HashOpaque(raw))
}

func TestGenerateRefreshToken_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		raw, _, err := GenerateRefreshToken()
		require.NoError(t, err)
		_, dup := seen[raw]
		require.False(t, dup, "duplicate token generated")
		seen[raw] = struct{}{}
	}
}

func TestGenerateAuthorizationCode(t *testing.T) {
	raw, hash, err := GenerateAuthorizationCode()
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Len(t, decoded, 16)
	assert.Equal(t, HashOpaque(raw), hash)
}

func TestGenerateSSOSessionToken(t *testing.T) {
	raw, hash, err := GenerateSSOSessionToken()
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Len(t, decoded, 64)
	assert.Equal(t, HashOpaque(raw), hash)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("correct horse battery stapl", hash))
	assert.False(t, CheckPasswordHash("", hash))
}

func TestPasswordHashing_SaltedPerPassword(t *testing.T) {
	h1, err := HashPassword("same password")
	require.NoError(t, err)
	h2, err := HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestClientSecret(t *testing.T) {
	raw, hash, err := GenerateClientSecret()
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	assert.True(t, VerifyClientSecret(raw, hash))
	assert.False(t, VerifyClientSecret(raw+"x", hash))
	assert.False(t, VerifyClientSecret("", hash))
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual("abc", "abc"))
	assert.False(t, ConstantTimeEqual("abc", "abd"))
	assert.False(t, ConstantTimeEqual("abc", "abcd"))
	assert.True(t, ConstantTimeEqual("", ""))
}
