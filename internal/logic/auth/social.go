package auth

import (
	"context"
	"net/url"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/orchestrator"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

type SocialAuthorizeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSocialAuthorizeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SocialAuthorizeLogic {
	return &SocialAuthorizeLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// SocialAuthorizeURL builds the host-relative redirect
// /oauth/{provider}/authorize carrying redirect_uri and, when present, state.
// It does not produce the provider's own authorization endpoint URL; the
// concrete provider HTTP client is an external collaborator.
func (l *SocialAuthorizeLogic) SocialAuthorizeURL(req *types.SocialAuthorizeReq) string {
	q := url.Values{}
	q.Set("redirect_uri", req.RedirectURI)
	if req.State != "" {
		q.Set("state", req.State)
	}
	return "/oauth/" + req.Provider + "/authorize?" + q.Encode()
}

type SocialCallbackLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSocialCallbackLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SocialCallbackLogic {
	return &SocialCallbackLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// SocialCallback exchanges the provider's authorization code via the
// orchestrator's SocialVerifier seam and completes the find-or-create/link
// state machine.
func (l *SocialCallbackLogic) SocialCallback(req *types.SocialCallbackReq, lc orchestrator.LoginContext) (*types.LoginResp, error) {
	result, err := l.svcCtx.Orchestrator.CompleteSocialLogin(l.ctx, req.Provider, req.Code, req.RedirectURI, lc)
	if err != nil {
		return nil, err
	}
	return loginResultToResp(result, false), nil
}
