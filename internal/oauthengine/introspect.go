package oauthengine

import (
	"context"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/vault"
)

// IntrospectRequest carries the resource-server's own credentials (HTTP Basic
// or body, unified by the handler layer) plus the token being inspected.
type IntrospectRequest struct {
	ClientID     string
	ClientSecret string
	Token        string
}

// IntrospectResponse matches RFC 7662. Active is always
// present; the rest are omitted when Active is false.
type IntrospectResponse struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Sub       string `json:"sub,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
	Iss       string `json:"iss,omitempty"`
	Aud       string `json:"aud,omitempty"`
	TokenType string `json:"token_type,omitempty"`
}

// AuthenticateResourceServer validates the caller's own client credentials,
// returning an error the handler maps to 401 {active:false}.
func (e *Engine) AuthenticateResourceServer(ctx context.Context, clientID, clientSecret string) error {
	app, err := e.store.GetApplication(ctx, clientID)
	if err != nil {
		return err
	}
	if app == nil || !app.Active || app.ClientSecretHash == nil || !vault.VerifyClientSecret(clientSecret, *app.ClientSecretHash) {
		return apperr.New(apperr.InvalidClient, "invalid resource server credentials")
	}
	return nil
}

// Introspect implements the RFC 7662 endpoint body, given
// that AuthenticateResourceServer already succeeded.
func (e *Engine) Introspect(ctx context.Context, token string) IntrospectResponse {
	claims, err := e.signer.Verify(token, "")
	if err != nil {
		return IntrospectResponse{Active: false}
	}

	sub, _ := claims["sub"].(string)
	scope, _ := claims["scope"].(string)
	azp, _ := claims["azp"].(string)
	iss, _ := claims["iss"].(string)
	aud, _ := claims["aud"].(string)
	exp, _ := claims["exp"].(float64)
	iat, _ := claims["iat"].(float64)

	// A revoked refresh token family does not retroactively invalidate
	// already-issued access tokens; introspection therefore only checks signature
	// and expiry, matching "if valid and unrevoked" where "unrevoked" for an
	// access token means "not expired" — there is no separate access-token
	// revocation list in the data model.
	return IntrospectResponse{
		Active:    true,
		Scope:     scope,
		ClientID:  azp,
		Sub:       sub,
		Exp:       int64(exp),
		Iat:       int64(iat),
		Iss:       iss,
		Aud:       aud,
		TokenType: "Bearer",
	}
}
