package oauthengine

import (
	"context"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/vault"
)

// UserInfo backs GET /oauth2/userinfo: it resolves the bearer access token
// and returns sub plus whichever of email, email_verified, phone_number,
// phone_verified, name and picture the token itself carries. No further
// filtering by the token's scope is applied.
func (e *Engine) UserInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	claims, err := e.signer.Verify(accessToken, "")
	if err != nil {
		return nil, apperr.New(apperr.InvalidToken, "invalid or expired access token")
	}
	sub, _ := claims["sub"].(string)
	out := map[string]any{"sub": sub}
	for _, k := range []string{"email", "email_verified", "phone_number", "phone_verified", "name", "picture"} {
		if v, ok := claims[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Validate backs GET /oauth2/validate: a lightweight signature/expiry check
// for callers that only need a boolean plus subject, distinct from the full
// RFC 7662 document Introspect returns.
func (e *Engine) Validate(ctx context.Context, token string) (valid bool, subject string) {
	claims, err := e.signer.Verify(token, "")
	if err != nil {
		return false, ""
	}
	sub, _ := claims["sub"].(string)
	return true, sub
}

// Revoke backs POST /oauth2/revoke for refresh tokens; access tokens are
// short-lived and not separately revocable.
func (e *Engine) Revoke(ctx context.Context, refreshToken string) error {
	return e.store.RevokeRefreshToken(ctx, vault.HashOpaque(refreshToken))
}
