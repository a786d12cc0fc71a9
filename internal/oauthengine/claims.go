package oauthengine

import (
	"context"
	"fmt"
	"time"

	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/tokensigner"
)

// profileClaims assembles the access-token claim set: scope, azp, and the
// OIDC profile claims. The profile claims only matter when scope contains
// openid but are harmless to include regardless; tokensigner omits them when
// empty/false.
func (e *Engine) profileClaims(user *model.User, scope, clientID string) tokensigner.Claims {
	c := tokensigner.Claims{Scope: scope, Azp: clientID}
	if user.Email != nil {
		c.Email = *user.Email
		v := user.EmailVerified
		c.EmailVerified = &v
	}
	if user.Phone != nil {
		c.PhoneNumber = *user.Phone
		v := user.PhoneVerified
		c.PhoneVerified = &v
	}
	if user.Nickname != nil {
		c.Name = *user.Nickname
	}
	if user.AvatarURL != nil {
		c.Picture = *user.AvatarURL
	}
	c.AuthTime = time.Now().Unix()
	return c
}

// buildIDToken assembles the ID-token claims: the same profile claims as the
// access token, plus nonce (if present) and any custom claims configured for
// the application. Custom claims merge last, so they can never overwrite a
// registered or standard profile claim.
func (e *Engine) buildIDToken(ctx context.Context, user *model.User, app *model.Application, scope string, nonce *string) (string, error) {
	c := e.profileClaims(user, scope, appClientID(app))
	if nonce != nil {
		c.Nonce = *nonce
	}
	if app != nil && e.developer != nil {
		custom, err := e.developer.GetCustomClaims(ctx, app.ClientID)
		if err != nil {
			return "", fmt.Errorf("oauthengine: load custom claims: %w", err)
		}
		if fields := custom.GetFields(); len(fields) > 0 {
			m := make(map[string]any, len(fields))
			for k, v := range fields {
				m[k] = v.AsInterface()
			}
			c.Custom = m
		}
	}
	idToken, err := e.signer.Sign(c, user.ID.String(), appClientID(app), e.accessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("oauthengine: sign id token: %w", err)
	}
	return idToken, nil
}
