package tokensigner

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyPair(t *testing.T, kid string) KeyPair {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return KeyPair{KID: kid, Private: priv, Public: &priv.PublicKey}
}

func testSigner(t *testing.T, keys ...KeyPair) *Signer {
	t.Helper()
	s, err := New(Config{Issuer: "https://auth.test/api/v1"}, keys)
	require.NoError(t, err)
	return s
}

func TestNew_RequiresKeys(t *testing.T) {
	_, err := New(Config{Issuer: "x"}, nil)
	assert.Error(t, err)

	// A retired-only ring cannot sign.
	retired := testKeyPair(t, "old")
	retired.Private = nil
	_, err = New(Config{Issuer: "x"}, []KeyPair{retired})
	assert.Error(t, err)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	s := testSigner(t, testKeyPair(t, "2026-01"))

	token, err := s.Sign(Claims{Scope: "openid profile", Azp: "client-1"}, "user-123", "client-1", time.Hour)
	require.NoError(t, err)

	claims, err := s.Verify(token, "client-1")
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims["sub"])
	assert.Equal(t, "https://auth.test/api/v1", claims["iss"])
	assert.Equal(t, "client-1", claims["aud"])
	assert.Equal(t, "openid profile", claims["scope"])
	assert.Equal(t, "client-1", claims["azp"])
}

// Verification is deterministic for the token's whole lifetime: repeated
// Verify calls return identical claims.
func TestVerify_Stable(t *testing.T) {
	s := testSigner(t, testKeyPair(t, "k1"))
	token, err := s.Sign(Claims{Scope: "read:users"}, "subject", "aud", time.Hour)
	require.NoError(t, err)

	first, err := s.Verify(token, "")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.Verify(token, "")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestVerify_AcceptsRotatedKey(t *testing.T) {
	old := testKeyPair(t, "2025-12")
	oldSigner := testSigner(t, old)

	token, err := oldSigner.Sign(Claims{}, "user-1", "", time.Hour)
	require.NoError(t, err)

	// After rotation the new signer keeps the old public key in the ring.
	current := testKeyPair(t, "2026-01")
	rotated := testSigner(t, current, KeyPair{KID: old.KID, Public: old.Public})

	claims, err := rotated.Verify(token, "")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["sub"])

	// New tokens carry the new kid and still verify.
	fresh, err := rotated.Sign(Claims{}, "user-2", "", time.Hour)
	require.NoError(t, err)
	_, err = rotated.Verify(fresh, "")
	assert.NoError(t, err)
}

func TestVerify_RejectsUnknownKid(t *testing.T) {
	a := testSigner(t, testKeyPair(t, "a"))
	b := testSigner(t, testKeyPair(t, "b"))

	token, err := a.Sign(Claims{}, "user-1", "", time.Hour)
	require.NoError(t, err)

	_, err = b.Verify(token, "")
	assert.Error(t, err)
}

func TestVerify_RejectsExpired(t *testing.T) {
	s := testSigner(t, testKeyPair(t, "k1"))
	token, err := s.Sign(Claims{}, "user-1", "", -time.Minute)
	require.NoError(t, err)

	_, err = s.Verify(token, "")
	assert.Error(t, err)
}

func TestVerify_RejectsAudienceMismatch(t *testing.T) {
	s := testSigner(t, testKeyPair(t, "k1"))
	token, err := s.Sign(Claims{}, "user-1", "client-a", time.Hour)
	require.NoError(t, err)

	_, err = s.Verify(token, "client-b")
	assert.Error(t, err)

	// Empty expectation skips the audience check.
	_, err = s.Verify(token, "")
	assert.NoError(t, err)
}

func TestVerify_RejectsTampering(t *testing.T) {
	s := testSigner(t, testKeyPair(t, "k1"))
	token, err := s.Sign(Claims{}, "user-1", "", time.Hour)
	require.NoError(t, err)

	_, err = s.Verify(token[:len(token)-2]+"xx", "")
	assert.Error(t, err)
}

// Custom claims must never displace a registered or profile claim; the merge
// is first-writer-wins.
func TestCustomClaims_CannotOverwriteRegistered(t *testing.T) {
	s := testSigner(t, testKeyPair(t, "k1"))
	token, err := s.Sign(Claims{
		Email:  "real@example.com",
		Custom: map[string]any{"sub": "evil", "email": "fake@example.com", "tenant": "acme"},
	}, "user-1", "", time.Hour)
	require.NoError(t, err)

	claims, err := s.Verify(token, "")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["sub"])
	assert.Equal(t, "real@example.com", claims["email"])
	assert.Equal(t, "acme", claims["tenant"])
}

func TestPublicJWKS(t *testing.T) {
	current := testKeyPair(t, "2026-01")
	retired := testKeyPair(t, "2025-12")
	retired.Private = nil
	s := testSigner(t, current, retired)

	jwks := s.PublicJWKS()
	require.Len(t, jwks.Keys, 2)

	kids := []string{jwks.Keys[0].Kid, jwks.Keys[1].Kid}
	assert.Contains(t, kids, "2026-01")
	assert.Contains(t, kids, "2025-12")

	for _, k := range jwks.Keys {
		assert.Equal(t, "RSA", k.Kty)
		assert.Equal(t, "sig", k.Use)
		assert.Equal(t, "RS256", k.Alg)
		_, err := base64.RawURLEncoding.DecodeString(k.N)
		assert.NoError(t, err)
		_, err = base64.RawURLEncoding.DecodeString(k.E)
		assert.NoError(t, err)
	}
}
