// Package apperr implements the application error taxonomy and wires it into
// go-zero's httpx error encoding, so handlers return typed kinds instead of
// bare errors.
package apperr

import "net/http"

// Kind enumerates the application-level error categories named
type Kind string

const (
	InvalidRequest       Kind = "invalid_request"
	InvalidCredentials   Kind = "invalid_credentials"
	InvalidToken         Kind = "invalid_token"
	TokenExpired         Kind = "token_expired"
	RateLimited          Kind = "rate_limited"
	DailyLimitExceeded   Kind = "daily_limit_exceeded"
	NotFound             Kind = "not_found"
	Conflict             Kind = "conflict"
	Forbidden            Kind = "forbidden"
	Suspended            Kind = "suspended"
	UnsupportedGrant     Kind = "unsupported_grant_type"
	InvalidScope         Kind = "invalid_scope"
	InvalidGrant         Kind = "invalid_grant"
	InvalidClient        Kind = "invalid_client"
	RedirectURIMismatch  Kind = "redirect_uri_mismatch"
	Internal             Kind = "internal"
)

var statusByKind = map[Kind]int{
	InvalidRequest:      http.StatusBadRequest,
	InvalidCredentials:  http.StatusUnauthorized,
	InvalidToken:        http.StatusUnauthorized,
	TokenExpired:        http.StatusUnauthorized,
	RateLimited:         http.StatusTooManyRequests,
	DailyLimitExceeded:  http.StatusTooManyRequests,
	NotFound:            http.StatusNotFound,
	Conflict:            http.StatusConflict,
	Forbidden:           http.StatusForbidden,
	Suspended:           http.StatusForbidden,
	UnsupportedGrant:    http.StatusBadRequest,
	InvalidScope:        http.StatusBadRequest,
	InvalidGrant:        http.StatusBadRequest,
	InvalidClient:       http.StatusUnauthorized,
	RedirectURIMismatch: http.StatusBadRequest,
	Internal:            http.StatusInternalServerError,
}

// Error is the concrete type every UniAuth component returns for expected failures.
// Unexpected errors are wrapped as Internal at the boundary.
type Error struct {
	K             Kind
	Message       string
	RetryAfterSec int // only meaningful for RateLimited / DailyLimitExceeded
	cause         error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.cause }
func (e *Error) Kind() Kind    { return e.K }

// HTTPStatus returns the status code this error should be rendered with.
func (e *Error) HTTPStatus() int {
	if s, ok := statusByKind[e.K]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(k Kind, message string) *Error {
	return &Error{K: k, Message: message}
}

func Wrap(k Kind, message string, cause error) *Error {
	return &Error{K: k, Message: message, cause: cause}
}

// NewRateLimited builds a RateLimited error carrying the retry-after hint the
// 429 envelope surfaces as retry_after.
func NewRateLimited(retryAfterSec int) *Error {
	return &Error{K: RateLimited, Message: "rate limited", RetryAfterSec: retryAfterSec}
}

func NewDailyLimitExceeded() *Error {
	return &Error{K: DailyLimitExceeded, Message: "daily limit exceeded"}
}

// As extracts an *Error from err, returning (nil, false) if err is not one of ours.
func As(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	if e, ok := err.(*Error); ok {
		return e, true
	}
	return nil, false
}

// ToInternal converts any non-apperr error into a generic Internal error so
// unexpected failures never leak detail to the client. Callers log the
// original error themselves (via logx) before calling this — this function
// only shapes the response.
func ToInternal(err error) *Error {
	if e, ok := As(err); ok {
		return e
	}
	return New(Internal, "an unexpected error occurred")
}
