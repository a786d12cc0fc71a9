package oauth2

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/oauthengine"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

type TokenLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewTokenLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TokenLogic {
	return &TokenLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// Token dispatches on grant_type for POST /oauth2/token.
func (l *TokenLogic) Token(req *types.TokenReq) (*types.TokenResp, error) {
	resp, err := l.svcCtx.OAuth.Token(l.ctx, oauthengine.TokenRequest{
		GrantType: req.GrantType, Code: req.Code, RedirectURI: req.RedirectURI,
		ClientID: req.ClientID, ClientSecret: req.ClientSecret, CodeVerifier: req.CodeVerifier,
		RefreshToken: req.RefreshToken, Scope: req.Scope,
	})
	if err != nil {
		return nil, err
	}
	return &types.TokenResp{
		AccessToken: resp.AccessToken, TokenType: resp.TokenType, ExpiresIn: resp.ExpiresIn,
		RefreshToken: resp.RefreshToken, IDToken: resp.IDToken, Scope: resp.Scope,
	}, nil
}
