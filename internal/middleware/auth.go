// Package middleware implements the cross-cutting HTTP concerns: bearer
// authentication and request-ID propagation. The Required and Optional auth
// variants share one bearer resolver backed by tokensigner.Verify.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/tokensigner"
)

const (
	authorizationHeaderKey = "Authorization"
	bearerPrefix           = "Bearer "
)

type contextKey string

const userIDContextKey contextKey = "userId"

type RequiredAuthMiddleware struct {
	signer *tokensigner.Signer
}

type OptionalAuthMiddleware struct {
	signer *tokensigner.Signer
}

func NewRequiredAuthMiddleware(signer *tokensigner.Signer) *RequiredAuthMiddleware {
	return &RequiredAuthMiddleware{signer: signer}
}

func NewOptionalAuthMiddleware(signer *tokensigner.Signer) *OptionalAuthMiddleware {
	return &OptionalAuthMiddleware{signer: signer}
}

func (m *RequiredAuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := resolveBearer(r, m.signer)
		if !ok {
			writeUnauthorized(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// Handle on the optional variant only rejects a request that presents a
// malformed or invalid bearer token; a request with no Authorization header
// at all proceeds unauthenticated.
func (m *OptionalAuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(authorizationHeaderKey)
		if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
			next(w, r)
			return
		}
		userID, ok := resolveBearer(r, m.signer)
		if !ok {
			writeUnauthorized(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// resolveBearer resolves the current token shape first (jwt/v5, subject in
// "sub"); anything that fails gets one more chance through the legacy v4
// fallback before being rejected.
func resolveBearer(r *http.Request, signer *tokensigner.Signer) (uuid.UUID, bool) {
	authHeader := r.Header.Get(authorizationHeaderKey)
	if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
		return uuid.Nil, false
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)
	claims, err := signer.Verify(token, "")
	if err != nil {
		return resolveLegacyV4Bearer(token, signer)
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return resolveLegacyV4Bearer(token, signer)
	}
	return userID, true
}

func writeUnauthorized(w http.ResponseWriter, _ *http.Request) {
	status, envelope := apperr.NewEnvelope(apperr.New(apperr.InvalidToken, "missing or invalid bearer token"))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope)
}

// UserIDFromContext retrieves the identity attached by either auth
// middleware; handlers call this instead of touching the context key
// directly.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	return v, ok
}
