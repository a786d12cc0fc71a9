package oauth2

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

type UserInfoLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewUserInfoLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UserInfoLogic {
	return &UserInfoLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *UserInfoLogic) UserInfo(bearerToken string) (map[string]any, error) {
	return l.svcCtx.OAuth.UserInfo(l.ctx, bearerToken)
}

type ValidateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewValidateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ValidateLogic {
	return &ValidateLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *ValidateLogic) Validate(req *types.ValidateReq) *types.ValidateResp {
	valid, subject := l.svcCtx.OAuth.Validate(l.ctx, req.Token)
	return &types.ValidateResp{Valid: valid, Subject: subject}
}

type RevokeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRevokeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RevokeLogic {
	return &RevokeLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *RevokeLogic) Revoke(req *types.RevokeReq) error {
	return l.svcCtx.OAuth.Revoke(l.ctx, req.Token)
}
