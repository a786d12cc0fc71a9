package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/oauthengine"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

type RefreshLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRefreshLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RefreshLogic {
	return &RefreshLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// Refresh delegates to the OAuth engine's refresh_token grant; first-party
// refresh tokens carry no bound client, which the grant treats as optional.
func (l *RefreshLogic) Refresh(req *types.RefreshReq) (*types.RefreshResp, error) {
	resp, err := l.svcCtx.OAuth.Token(l.ctx, oauthengine.TokenRequest{
		GrantType:    oauthengine.GrantRefreshToken,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		return nil, err
	}
	return &types.RefreshResp{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		IDToken:      resp.IDToken,
	}, nil
}

type LogoutLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewLogoutLogic(ctx context.Context, svcCtx *svc.ServiceContext) *LogoutLogic {
	return &LogoutLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// Logout revokes the presented refresh token; the SSO session cookie itself
// is cleared by the handler, which owns the HTTP response.
func (l *LogoutLogic) Logout(req *types.LogoutReq) error {
	return l.svcCtx.OAuth.Revoke(l.ctx, req.RefreshToken)
}

type LogoutAllLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewLogoutAllLogic(ctx context.Context, svcCtx *svc.ServiceContext) *LogoutAllLogic {
	return &LogoutAllLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// LogoutAll revokes every refresh token and deletes every SSO session owned
// by userID.
func (l *LogoutAllLogic) LogoutAll(userID uuid.UUID) (*types.LogoutAllResp, error) {
	count, err := l.svcCtx.User.LogoutAll(l.ctx, userID)
	if err != nil {
		return nil, err
	}
	return &types.LogoutAllResp{Count: count}, nil
}
