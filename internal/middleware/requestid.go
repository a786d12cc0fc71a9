package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
)

const requestIDHeader = "X-Request-Id"

// RequestID propagates a per-request identifier: the inbound header is reused
// when present, otherwise a fresh UUID is minted. The ID is echoed on the
// response and attached to the request-scoped logger, so every log line a
// handler emits carries the request ID without further plumbing.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logx.ContextWithFields(r.Context(), logx.Field("requestId", id))
		next(w, r.WithContext(ctx))
	}
}
