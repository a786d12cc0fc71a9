package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

func sessionToView(s *model.SSOSession) types.SessionView {
	return types.SessionView{
		ID: s.ID.String(), Apps: s.Apps,
		CreatedAt: s.CreatedAt.Format(time.RFC3339), ExpiresAt: s.ExpiresAt.Format(time.RFC3339),
		LastActivity: s.LastActivity.Format(time.RFC3339),
	}
}

type ListSessionsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListSessionsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListSessionsLogic {
	return &ListSessionsLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *ListSessionsLogic) ListSessions(userID uuid.UUID) (*types.ListSessionsResp, error) {
	sessions, err := l.svcCtx.User.ListSessions(l.ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]types.SessionView, len(sessions))
	for i, s := range sessions {
		out[i] = sessionToView(s)
	}
	return &types.ListSessionsResp{Sessions: out}, nil
}

type RevokeSessionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRevokeSessionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RevokeSessionLogic {
	return &RevokeSessionLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *RevokeSessionLogic) RevokeSession(userID uuid.UUID, req *types.SessionPathReq) error {
	sessionID, err := uuid.Parse(req.ID)
	if err != nil {
		return apperr.New(apperr.InvalidRequest, "invalid session id")
	}
	return l.svcCtx.User.RevokeSession(l.ctx, userID, sessionID)
}
