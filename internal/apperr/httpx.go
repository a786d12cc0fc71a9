package apperr

import (
	"context"

	"github.com/zeromicro/go-zero/rest/httpx"
)

// RegisterErrorHandler installs apperr as go-zero's error encoder so every
// handler's plain `error` return renders the application envelope
// ({success:false, error:{code, message}}) without each handler repeating the
// mapping. OAuth-surface handlers build the OAuth envelope explicitly instead;
// they opt out of this global default by writing the response themselves.
func RegisterErrorHandler() {
	httpx.SetErrorHandlerCtx(func(_ context.Context, err error) (int, any) {
		status, envelope := NewEnvelope(err)
		return status, envelope
	})
}
