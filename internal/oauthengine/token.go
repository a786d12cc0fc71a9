package oauthengine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/tokensigner"
	"github.com/uniauth/uniauth/internal/vault"
)

// GrantType enumerates the four dispatch branches's
// token endpoint.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
	GrantClientCredentials = "client_credentials"
)

// TokenRequest is the unified internal shape both form-encoded and JSON
// bodies parse into before dispatch.
type TokenRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	ClientID     string
	ClientSecret string
	CodeVerifier string
	RefreshToken string
	Scope        string
}

// TokenResponse is the OAuth token response shape; IDToken is omitted unless
// the granted scope includes "openid".
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

func (e *Engine) Token(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	switch req.GrantType {
	case GrantAuthorizationCode:
		return e.tokenAuthorizationCode(ctx, req)
	case GrantRefreshToken:
		return e.tokenRefreshToken(ctx, req)
	case GrantClientCredentials:
		return e.tokenClientCredentials(ctx, req)
	default:
		return nil, apperr.New(apperr.UnsupportedGrant, "unsupported grant_type")
	}
}

func (e *Engine) tokenAuthorizationCode(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	app, err := e.store.GetApplication(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if app == nil || !app.Active {
		return nil, apperr.New(apperr.InvalidClient, "unknown or inactive client")
	}

	if app.IsPublic() {
		if req.CodeVerifier == "" {
			return nil, apperr.New(apperr.InvalidGrant, "code_verifier is required for public clients")
		}
	} else {
		if app.ClientSecretHash == nil || !vault.VerifyClientSecret(req.ClientSecret, *app.ClientSecretHash) {
			return nil, apperr.New(apperr.InvalidClient, "invalid client secret")
		}
	}

	codeHash := vault.HashOpaque(req.Code)
	ac, err := e.store.RedeemAuthorizationCode(ctx, codeHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.New(apperr.InvalidGrant, "authorization code is invalid or already used")
		}
		return nil, err
	}
	if ac.ClientID != req.ClientID || ac.RedirectURI != req.RedirectURI {
		return nil, apperr.New(apperr.InvalidGrant, "client_id/redirect_uri mismatch")
	}
	if time.Now().After(ac.ExpiresAt) {
		return nil, apperr.New(apperr.InvalidGrant, "authorization code expired")
	}
	if ac.CodeChallenge != nil {
		method := vault.PKCES256
		if ac.CodeChallengeMethod != nil {
			method = vault.PKCEMethod(*ac.CodeChallengeMethod)
		}
		if !vault.VerifyPKCE(method, req.CodeVerifier, *ac.CodeChallenge) {
			return nil, apperr.New(apperr.InvalidGrant, "code_verifier does not match code_challenge")
		}
	}

	user, err := e.store.GetUserByID(ctx, ac.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsSuspended() {
		return nil, apperr.New(apperr.InvalidGrant, "user account is unavailable")
	}

	return e.mintTokenPair(ctx, user, app, ac.Scope, ac.Nonce)
}

func (e *Engine) tokenRefreshToken(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	hash := vault.HashOpaque(req.RefreshToken)

	rawNext, nextHash, err := vault.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("oauthengine: generate refresh token: %w", err)
	}

	existing, err := e.store.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.New(apperr.InvalidGrant, "refresh token is invalid")
	}
	user, err := e.store.GetUserByID(ctx, existing.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsSuspended() {
		return nil, apperr.New(apperr.InvalidGrant, "user account is unavailable")
	}

	next := &model.RefreshToken{
		TokenHash: nextHash,
		UserID:    existing.UserID,
		ClientID:  existing.ClientID,
		Scope:     existing.Scope,
		ExpiresAt: time.Now().Add(e.refreshTokenTTL),
	}
	replayed, err := e.store.RotateRefreshToken(ctx, hash, next)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.New(apperr.InvalidGrant, "refresh token is invalid")
		}
		return nil, err
	}
	if replayed {
		logx.WithContext(ctx).Errorf("oauthengine: refresh token replay detected for user %s, family revoked", existing.UserID)
		return nil, apperr.New(apperr.InvalidGrant, "refresh token has already been used")
	}

	var app *model.Application
	if existing.ClientID != nil {
		app, err = e.store.GetApplication(ctx, *existing.ClientID)
		if err != nil {
			return nil, err
		}
	}

	accessToken, err := e.signer.Sign(e.profileClaims(user, existing.Scope, appClientID(app)), user.ID.String(), e.signer.Issuer(), e.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("oauthengine: sign access token: %w", err)
	}

	resp := &TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(e.accessTokenTTL.Seconds()),
		RefreshToken: rawNext,
		Scope:        existing.Scope,
	}
	if scopeContains(existing.Scope, "openid") {
		idToken, err := e.buildIDToken(ctx, user, app, existing.Scope, nil)
		if err != nil {
			return nil, err
		}
		resp.IDToken = idToken
	}
	return resp, nil
}

func (e *Engine) tokenClientCredentials(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	app, err := e.store.GetApplication(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if app == nil || !app.Active {
		return nil, apperr.New(apperr.InvalidClient, "unknown or inactive client")
	}
	if app.Type != model.ClientTypeM2M {
		return nil, apperr.New(apperr.InvalidClient, "client_credentials requires an m2m client")
	}
	if app.ClientSecretHash == nil || !vault.VerifyClientSecret(req.ClientSecret, *app.ClientSecretHash) {
		return nil, apperr.New(apperr.InvalidClient, "invalid client secret")
	}
	if err := requireScopeSubset(app, req.Scope); err != nil {
		return nil, err
	}

	claims := tokensigner.Claims{Scope: req.Scope, Azp: app.ClientID}
	accessToken, err := e.signer.Sign(claims, app.ClientID, e.signer.Issuer(), e.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("oauthengine: sign client credentials token: %w", err)
	}
	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(e.accessTokenTTL.Seconds()),
		Scope:       req.Scope,
	}, nil
}

// mintTokenPair implements the shared tail of the authorization_code grant:
// access token (scope copied), refresh token (scope and client bound), and
// ID token when the granted scope includes openid.
func (e *Engine) mintTokenPair(ctx context.Context, user *model.User, app *model.Application, scope string, nonce *string) (*TokenResponse, error) {
	accessToken, err := e.signer.Sign(e.profileClaims(user, scope, app.ClientID), user.ID.String(), e.signer.Issuer(), e.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("oauthengine: sign access token: %w", err)
	}

	rawRefresh, hash, err := vault.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("oauthengine: generate refresh token: %w", err)
	}
	rt := &model.RefreshToken{
		TokenHash: hash,
		UserID:    user.ID,
		ClientID:  &app.ClientID,
		Scope:     scope,
		ExpiresAt: time.Now().Add(e.refreshTokenTTL),
	}
	if err := e.store.CreateRefreshToken(ctx, rt); err != nil {
		return nil, fmt.Errorf("oauthengine: persist refresh token: %w", err)
	}

	if e.webhooks != nil {
		if err := e.webhooks.Enqueue(ctx, "token.issued", map[string]any{"user_id": user.ID.String(), "client_id": app.ClientID}); err != nil {
			logx.WithContext(ctx).Errorf("oauthengine: enqueue token.issued webhook: %v", err)
		}
	}

	resp := &TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(e.accessTokenTTL.Seconds()),
		RefreshToken: rawRefresh,
		Scope:        scope,
	}
	if scopeContains(scope, "openid") {
		idToken, err := e.buildIDToken(ctx, user, app, scope, nonce)
		if err != nil {
			return nil, err
		}
		resp.IDToken = idToken
	}
	return resp, nil
}

func appClientID(app *model.Application) string {
	if app == nil {
		return ""
	}
	return app.ClientID
}

func requireScopeSubset(app *model.Application, scope string) error {
	for _, s := range strings.Fields(scope) {
		if !app.ScopeAllowed(s) {
			return apperr.New(apperr.InvalidScope, fmt.Sprintf("scope %q is not permitted for this client", s))
		}
	}
	return nil
}

func scopeContains(scope, want string) bool {
	for _, s := range strings.Fields(scope) {
		if s == want {
			return true
		}
	}
	return false
}
