package oauth2

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/oauthengine"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/tokensigner"
)

type DiscoveryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDiscoveryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DiscoveryLogic {
	return &DiscoveryLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// Discovery serves GET /.well-known/openid-configuration.
func (l *DiscoveryLogic) Discovery() oauthengine.Discovery {
	return l.svcCtx.OAuth.Discovery(l.svcCtx.Config.BaseURL)
}

type JWKSLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewJWKSLogic(ctx context.Context, svcCtx *svc.ServiceContext) *JWKSLogic {
	return &JWKSLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// JWKS implements GET /.well-known/jwks.json, publishing the full signing key
// ring so resource servers can verify tokens through a rotation window.
func (l *JWKSLogic) JWKS() tokensigner.JWKS {
	return l.svcCtx.OAuth.JWKS()
}
