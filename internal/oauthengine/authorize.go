package oauthengine

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/vault"
)

// AuthorizeRequest is the unified query-parameter set's
// GET /oauth2/authorize.
type AuthorizeRequest struct {
	ClientID            string
	RedirectURI         string
	ResponseType        string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
	Nonce               string
}

// AuthorizeOutcome is always a redirect — either to the client's redirect_uri
// (success or error-on-client-side) or to the login page.
type AuthorizeOutcome struct {
	RedirectURL string
}

// ValidateClient implements step 1 of the authorization endpoint: the client
// must exist, be active, and the redirect_uri must exact-match one of its
// registered URIs.
func (e *Engine) ValidateClient(ctx context.Context, clientID, redirectURI string) (*model.Application, error) {
	app, err := e.store.GetApplication(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if app == nil || !app.Active {
		return nil, apperr.New(apperr.InvalidClient, "unknown or inactive client")
	}
	if !app.HasRedirectURI(redirectURI) {
		return nil, apperr.New(apperr.RedirectURIMismatch, "redirect_uri not registered for client")
	}
	return app, nil
}

// RedirectURIIsRegisteredSomewhere checks whether redirectURI is syntactically
// usable and registered to *some* client, used by the handler layer to decide
// between "redirect back with error=invalid_client" and "render an error
// page".
func (e *Engine) RedirectURIIsRegisteredSomewhere(ctx context.Context, redirectURI string) bool {
	if _, err := url.ParseRequestURI(redirectURI); err != nil {
		return false
	}
	ok, err := e.store.RedirectURIRegistered(ctx, redirectURI)
	return err == nil && ok
}

// Authorize runs the post-validation half of the authorization endpoint,
// given a client already validated by ValidateClient and the raw SSO session
// cookie value (empty if absent). sessionToken resolution failures are
// treated the same as no session: the user is sent to the login page.
func (e *Engine) Authorize(ctx context.Context, app *model.Application, req AuthorizeRequest, sessionToken string) (*AuthorizeOutcome, error) {
	if app.IsPublic() && req.CodeChallenge == "" {
		return nil, apperr.New(apperr.InvalidRequest, "code_challenge is required for public clients")
	}

	var sess *model.SSOSession
	if sessionToken != "" {
		s, err := e.sso.Resolve(ctx, sessionToken)
		if err == nil {
			sess = s
		}
	}

	if sess != nil {
		rawCode, hash, err := vault.GenerateAuthorizationCode()
		if err != nil {
			return nil, fmt.Errorf("oauthengine: generate authorization code: %w", err)
		}
		ac := &model.AuthorizationCode{
			CodeHash:    hash,
			UserID:      sess.UserID,
			ClientID:    app.ClientID,
			RedirectURI: req.RedirectURI,
			Scope:       req.Scope,
		}
		if req.CodeChallenge != "" {
			ac.CodeChallenge = &req.CodeChallenge
			ac.CodeChallengeMethod = &req.CodeChallengeMethod
		}
		if req.Nonce != "" {
			ac.Nonce = &req.Nonce
		}
		if err := e.store.CreateAuthorizationCode(ctx, ac); err != nil {
			return nil, fmt.Errorf("oauthengine: create authorization code: %w", err)
		}
		if err := e.sso.Join(ctx, sess.ID, app.ClientID); err != nil {
			return nil, fmt.Errorf("oauthengine: join sso session: %w", err)
		}

		q := url.Values{"code": {rawCode}}
		if req.State != "" {
			q.Set("state", req.State)
		}
		return &AuthorizeOutcome{RedirectURL: appendQuery(req.RedirectURI, q)}, nil
	}

	return &AuthorizeOutcome{RedirectURL: loginRedirect(req)}, nil
}

// ConsentAuthorize backs POST /oauth2/authorize: an already-authenticated
// user (resolved by the bearer-auth middleware) explicitly consenting for an
// untrusted app.
func (e *Engine) ConsentAuthorize(ctx context.Context, app *model.Application, req AuthorizeRequest, userID uuid.UUID) (*AuthorizeOutcome, error) {
	if app.IsPublic() && req.CodeChallenge == "" {
		return nil, apperr.New(apperr.InvalidRequest, "code_challenge is required for public clients")
	}
	rawCode, hash, err := vault.GenerateAuthorizationCode()
	if err != nil {
		return nil, fmt.Errorf("oauthengine: generate authorization code: %w", err)
	}
	ac := &model.AuthorizationCode{
		CodeHash:    hash,
		UserID:      userID,
		ClientID:    app.ClientID,
		RedirectURI: req.RedirectURI,
		Scope:       req.Scope,
	}
	if req.CodeChallenge != "" {
		ac.CodeChallenge = &req.CodeChallenge
		ac.CodeChallengeMethod = &req.CodeChallengeMethod
	}
	if req.Nonce != "" {
		ac.Nonce = &req.Nonce
	}
	if err := e.store.CreateAuthorizationCode(ctx, ac); err != nil {
		return nil, fmt.Errorf("oauthengine: create authorization code: %w", err)
	}

	q := url.Values{"code": {rawCode}}
	if req.State != "" {
		q.Set("state", req.State)
	}
	return &AuthorizeOutcome{RedirectURL: appendQuery(req.RedirectURI, q)}, nil
}

func appendQuery(base string, extra url.Values) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// loginRedirect propagates every OAuth parameter as a query string so the
// login UI can re-invoke the OAuth flow after authentication, and returns that
// query string appended to the fixed path /login.
func loginRedirect(req AuthorizeRequest) string {
	q := url.Values{}
	q.Set("client_id", req.ClientID)
	q.Set("redirect_uri", req.RedirectURI)
	q.Set("response_type", req.ResponseType)
	if req.Scope != "" {
		q.Set("scope", req.Scope)
	}
	if req.State != "" {
		q.Set("state", req.State)
	}
	if req.CodeChallenge != "" {
		q.Set("code_challenge", req.CodeChallenge)
		q.Set("code_challenge_method", req.CodeChallengeMethod)
	}
	if req.Nonce != "" {
		q.Set("nonce", req.Nonce)
	}
	return "/login?" + q.Encode()
}
