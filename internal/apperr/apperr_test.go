package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		InvalidRequest:     http.StatusBadRequest,
		InvalidCredentials: http.StatusUnauthorized,
		RateLimited:        http.StatusTooManyRequests,
		NotFound:           http.StatusNotFound,
		Conflict:           http.StatusConflict,
		Forbidden:          http.StatusForbidden,
		Suspended:          http.StatusForbidden,
		InvalidGrant:       http.StatusBadRequest,
		InvalidClient:      http.StatusUnauthorized,
		Internal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, New(kind, "x").HTTPStatus(), string(kind))
	}
}

func TestNewEnvelope(t *testing.T) {
	status, env := NewEnvelope(New(Conflict, "an account with this email already exists"))
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)
	assert.Equal(t, Conflict, env.Error.Code)
	assert.Equal(t, "an account with this email already exists", env.Error.Message)
}

// Unexpected errors collapse to Internal with a generic message; the original
// text never reaches the client.
func TestNewEnvelope_UnexpectedError(t *testing.T) {
	status, env := NewEnvelope(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, Internal, env.Error.Code)
	assert.NotContains(t, env.Error.Message, "pq:")
}

func TestNewOAuthEnvelope(t *testing.T) {
	status, env := NewOAuthEnvelope(New(InvalidGrant, "authorization code is invalid or already used"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, InvalidGrant, env.Error)

	status, env = NewOAuthEnvelope(New(InvalidClient, "invalid client secret"))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, InvalidClient, env.Error)

	// Statuses outside the documented envelope collapse to 400.
	status, _ = NewOAuthEnvelope(New(NotFound, "no such thing"))
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = NewOAuthEnvelope(errors.New("boom"))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRateLimitedCarriesRetryAfter(t *testing.T) {
	err := NewRateLimited(42)
	assert.Equal(t, RateLimited, err.K)
	assert.Equal(t, 42, err.RetryAfterSec)
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatus())

	status, env := NewEnvelope(err)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, 42, env.Error.RetryAfter)
}

func TestAs(t *testing.T) {
	e, ok := As(New(Forbidden, "nope"))
	assert.True(t, ok)
	assert.Equal(t, Forbidden, e.K)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
	_, ok = As(nil)
	assert.False(t, ok)
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(Internal, "wrapped", cause)
	assert.ErrorIs(t, err, cause)
}
