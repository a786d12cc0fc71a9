package oauth2

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

type IntrospectLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewIntrospectLogic(ctx context.Context, svcCtx *svc.ServiceContext) *IntrospectLogic {
	return &IntrospectLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// Introspect implements RFC 7662. The caller (a resource server) must
// authenticate itself — basicClientID/Secret are the credentials extracted
// from HTTP Basic auth if present, falling back to the body fields the
// handler parsed.
func (l *IntrospectLogic) Introspect(req *types.IntrospectReq, basicClientID, basicClientSecret string) (*types.IntrospectResp, error) {
	clientID, clientSecret := req.ClientID, req.ClientSecret
	if basicClientID != "" {
		clientID, clientSecret = basicClientID, basicClientSecret
	}
	if err := l.svcCtx.OAuth.AuthenticateResourceServer(l.ctx, clientID, clientSecret); err != nil {
		return &types.IntrospectResp{Active: false}, err
	}
	result := l.svcCtx.OAuth.Introspect(l.ctx, req.Token)
	return &types.IntrospectResp{
		Active: result.Active, Scope: result.Scope, ClientID: result.ClientID, Sub: result.Sub,
		Exp: result.Exp, Iat: result.Iat, Iss: result.Iss, Aud: result.Aud, TokenType: result.TokenType,
	}, nil
}
