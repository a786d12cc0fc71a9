// Package oauth2 implements the logic behind the "OAuth
// provider" route group: the authorization and token endpoints, RFC 7662
// introspection, userinfo, validate, and revoke.
package oauth2

import (
	"context"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/oauthengine"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

type AuthorizeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAuthorizeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AuthorizeLogic {
	return &AuthorizeLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func toEngineReq(req *types.AuthorizeReq) oauthengine.AuthorizeRequest {
	return oauthengine.AuthorizeRequest{
		ClientID: req.ClientID, RedirectURI: req.RedirectURI, ResponseType: req.ResponseType,
		Scope: req.Scope, State: req.State, CodeChallenge: req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod, Nonce: req.Nonce,
	}
}

// Authorize implements the authorization endpoint end to end: client
// validation, then either a silent-auth redirect (valid SSO cookie) or a
// redirect to the login page.
func (l *AuthorizeLogic) Authorize(req *types.AuthorizeReq, sessionToken string) (*oauthengine.AuthorizeOutcome, error) {
	app, err := l.svcCtx.OAuth.ValidateClient(l.ctx, req.ClientID, req.RedirectURI)
	if err != nil {
		// Redirect back with error=invalid_client only if redirect_uri is
		// syntactically usable and registered to *some* client; otherwise the
		// handler must answer with a generic error instead of trusting an
		// unregistered redirect target.
		if l.svcCtx.OAuth.RedirectURIIsRegisteredSomewhere(l.ctx, req.RedirectURI) {
			return &oauthengine.AuthorizeOutcome{RedirectURL: appendOAuthError(req.RedirectURI, req.State, apperr.InvalidClient)}, nil
		}
		return nil, err
	}
	return l.svcCtx.OAuth.Authorize(l.ctx, app, toEngineReq(req), sessionToken)
}

func appendOAuthError(redirectURI, state string, kind apperr.Kind) string {
	u := redirectURI
	sep := "?"
	if containsQuery(u) {
		sep = "&"
	}
	u += sep + "error=" + string(kind)
	if state != "" {
		u += "&state=" + state
	}
	return u
}

func containsQuery(u string) bool {
	for _, c := range u {
		if c == '?' {
			return true
		}
	}
	return false
}

type ConsentAuthorizeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewConsentAuthorizeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ConsentAuthorizeLogic {
	return &ConsentAuthorizeLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// ConsentAuthorize backs POST /oauth2/authorize: explicit consent by an
// already-authenticated user, resolved by the bearer-auth middleware upstream
// of this logic.
func (l *ConsentAuthorizeLogic) ConsentAuthorize(req *types.ConsentAuthorizeReq, userID uuid.UUID) (*types.ConsentAuthorizeResp, error) {
	app, err := l.svcCtx.OAuth.ValidateClient(l.ctx, req.ClientID, req.RedirectURI)
	if err != nil {
		return nil, err
	}
	engineReq := oauthengine.AuthorizeRequest{
		ClientID: req.ClientID, RedirectURI: req.RedirectURI, ResponseType: req.ResponseType,
		Scope: req.Scope, State: req.State, CodeChallenge: req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod, Nonce: req.Nonce,
	}
	outcome, err := l.svcCtx.OAuth.ConsentAuthorize(l.ctx, app, engineReq, userID)
	if err != nil {
		return nil, err
	}
	return &types.ConsentAuthorizeResp{RedirectURL: outcome.RedirectURL}, nil
}
