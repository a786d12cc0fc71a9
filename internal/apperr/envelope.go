package apperr

// Envelope is the application error envelope:
// {success:false, error:{code, message}}.
type Envelope struct {
	Success bool          `json:"success"`
	Error   EnvelopeError `json:"error"`
}

type EnvelopeError struct {
	Code    Kind   `json:"code"`
	Message string `json:"message"`
	// RetryAfter carries the remaining cooldown in seconds on RateLimited /
	// DailyLimitExceeded responses.
	RetryAfter int `json:"retry_after,omitempty"`
}

func NewEnvelope(err error) (int, Envelope) {
	e := ToInternal(err)
	return e.HTTPStatus(), Envelope{
		Success: false,
		Error:   EnvelopeError{Code: e.K, Message: e.Message, RetryAfter: e.RetryAfterSec},
	}
}

// OAuthEnvelope is the OAuth error envelope:
// {error, error_description} with HTTP 400 or 401.
type OAuthEnvelope struct {
	Error            Kind   `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func NewOAuthEnvelope(err error) (int, OAuthEnvelope) {
	e := ToInternal(err)
	status := e.HTTPStatus()
	// The OAuth surface only ever emits 400 or 401; any other status is sent
	// as 400, while the error code keeps the error's own kind.
	if status != 400 && status != 401 {
		status = 400
	}
	return status, OAuthEnvelope{Error: e.K, ErrorDescription: e.Message}
}
