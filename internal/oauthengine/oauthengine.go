// Package oauthengine implements the OAuth 2.0 / OIDC provider surface: the
// authorization endpoint, the token endpoint's grant dispatch, RFC 7662
// introspection, and the discovery/JWKS documents.
package oauthengine

import (
	"time"

	"github.com/uniauth/uniauth/internal/developer"
	"github.com/uniauth/uniauth/internal/sso"
	"github.com/uniauth/uniauth/internal/store/postgres"
	"github.com/uniauth/uniauth/internal/tokensigner"
	"github.com/uniauth/uniauth/internal/webhook"
)

// Engine bundles every collaborator the OAuth surface needs, narrowed to
// this package's concerns.
type Engine struct {
	store     *postgres.Store
	signer    *tokensigner.Signer
	sso       *sso.Store
	developer *developer.Service
	webhooks  *webhook.Producer

	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

type Config struct {
	Store           *postgres.Store
	Signer          *tokensigner.Signer
	SSO             *sso.Store
	Developer       *developer.Service
	Webhooks        *webhook.Producer
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func New(c Config) *Engine {
	return &Engine{
		store: c.Store, signer: c.Signer, sso: c.SSO, developer: c.Developer, webhooks: c.Webhooks,
		accessTokenTTL: c.AccessTokenTTL, refreshTokenTTL: c.RefreshTokenTTL,
	}
}

// supportedScopes matches the discovery document's scopes_supported
//.
var supportedScopes = []string{"openid", "profile", "email", "phone"}
