package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

type ListAuthorizedAppsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListAuthorizedAppsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListAuthorizedAppsLogic {
	return &ListAuthorizedAppsLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *ListAuthorizedAppsLogic) ListAuthorizedApps(userID uuid.UUID) (*types.AuthorizedAppsResp, error) {
	clientIDs, err := l.svcCtx.User.ListAuthorizedApps(l.ctx, userID)
	if err != nil {
		return nil, err
	}
	return &types.AuthorizedAppsResp{ClientIDs: clientIDs}, nil
}

type RevokeAppLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRevokeAppLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RevokeAppLogic {
	return &RevokeAppLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *RevokeAppLogic) RevokeApp(userID uuid.UUID, req *types.RevokeAppReq) error {
	return l.svcCtx.User.RevokeApp(l.ctx, userID, req.ClientID)
}
