package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniauth/uniauth/internal/tokensigner"
)

func testSigner(t *testing.T) (*tokensigner.Signer, *rsa.PrivateKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	s, err := tokensigner.New(tokensigner.Config{Issuer: "https://auth.test"},
		[]tokensigner.KeyPair{{KID: "test", Private: priv, Public: &priv.PublicKey}})
	require.NoError(t, err)
	return s, priv
}

func bearerFor(t *testing.T, s *tokensigner.Signer, sub string, ttl time.Duration) string {
	t.Helper()
	token, err := s.Sign(tokensigner.Claims{}, sub, "", ttl)
	require.NoError(t, err)
	return "Bearer " + token
}

// legacyBearerFor mints a pre-rotation token in the jwt/v4 claim shape: same
// RS256 key ring, subject in "uid" instead of "sub".
func legacyBearerFor(t *testing.T, priv *rsa.PrivateKey, kid, uid string, ttl time.Duration) string {
	t.Helper()
	tok := jwtv4.NewWithClaims(jwtv4.SigningMethodRS256, jwtv4.MapClaims{
		"uid": uid,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	})
	tok.Header["kid"] = kid
	signed, err := tok.SignedString(priv)
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestRequiredAuth_AttachesUser(t *testing.T) {
	signer, _ := testSigner(t)
	userID := uuid.New()

	var got uuid.UUID
	h := NewRequiredAuthMiddleware(signer).Handle(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		got, ok = UserIDFromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req.Header.Set("Authorization", bearerFor(t, signer, userID.String(), time.Hour))
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, got)
}

func TestRequiredAuth_AcceptsLegacyV4Token(t *testing.T) {
	signer, priv := testSigner(t)
	userID := uuid.New()

	var got uuid.UUID
	h := NewRequiredAuthMiddleware(signer).Handle(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		got, ok = UserIDFromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req.Header.Set("Authorization", legacyBearerFor(t, priv, "test", userID.String(), time.Hour))
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, got)
}

func TestRequiredAuth_RejectsBadLegacyV4Token(t *testing.T) {
	signer, priv := testSigner(t)
	h := NewRequiredAuthMiddleware(signer).Handle(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	// A key outside the signer's ring must be rejected even with the legacy
	// claim shape.
	strangerKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"expired":      legacyBearerFor(t, priv, "test", uuid.NewString(), -time.Minute),
		"unknown kid":  legacyBearerFor(t, priv, "retired", uuid.NewString(), time.Hour),
		"foreign key":  legacyBearerFor(t, strangerKey, "test", uuid.NewString(), time.Hour),
		"non-uuid uid": legacyBearerFor(t, priv, "test", "client-123", time.Hour),
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestRequiredAuth_RejectsMissingOrBadToken(t *testing.T) {
	signer, _ := testSigner(t)
	h := NewRequiredAuthMiddleware(signer).Handle(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic dXNlcjpwYXNz",
		"garbage":      "Bearer not.a.jws",
		"expired":      bearerFor(t, signer, uuid.NewString(), -time.Minute),
		"non-uuid sub": bearerFor(t, signer, "client-123", time.Hour),
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), name)
	}
}

func TestOptionalAuth_PassesThroughWithoutHeader(t *testing.T) {
	signer, _ := testSigner(t)
	h := NewOptionalAuthMiddleware(signer).Handle(func(w http.ResponseWriter, r *http.Request) {
		_, ok := UserIDFromContext(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth2/authorize", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalAuth_RejectsInvalidToken(t *testing.T) {
	signer, _ := testSigner(t)
	h := NewOptionalAuthMiddleware(signer).Handle(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth2/authorize", nil)
	req.Header.Set("Authorization", "Bearer tampered")
	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestID(t *testing.T) {
	h := RequestID(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// A fresh ID is minted when the caller sends none.
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	minted := rec.Header().Get("X-Request-Id")
	require.NotEmpty(t, minted)
	_, err := uuid.Parse(minted)
	assert.NoError(t, err)

	// An inbound ID is propagated unchanged.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "upstream-id-1")
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, "upstream-id-1", rec.Header().Get("X-Request-Id"))
}
