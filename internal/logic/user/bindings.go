package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

type ListBindingsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListBindingsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListBindingsLogic {
	return &ListBindingsLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *ListBindingsLogic) ListBindings(userID uuid.UUID) (*types.ListBindingsResp, error) {
	bindings, err := l.svcCtx.User.ListBindings(l.ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]types.BindingView, len(bindings))
	for i, b := range bindings {
		view := types.BindingView{Provider: b.Provider, ProviderUserID: b.ProviderUserID}
		if b.Email != nil {
			view.Email = *b.Email
		}
		out[i] = view
	}
	return &types.ListBindingsResp{Bindings: out}, nil
}

type UnbindLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewUnbindLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UnbindLogic {
	return &UnbindLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *UnbindLogic) Unbind(userID uuid.UUID, req *types.UnbindReq) error {
	return l.svcCtx.User.Unbind(l.ctx, userID, req.Provider)
}

type BindPhoneLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewBindPhoneLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BindPhoneLogic {
	return &BindPhoneLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *BindPhoneLogic) BindPhone(userID uuid.UUID, req *types.BindPhoneReq) error {
	return l.svcCtx.User.BindPhone(l.ctx, userID, req.Phone, req.Code)
}

type BindEmailLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewBindEmailLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BindEmailLogic {
	return &BindEmailLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *BindEmailLogic) BindEmail(userID uuid.UUID, req *types.BindEmailReq) error {
	return l.svcCtx.User.BindEmail(l.ctx, userID, req.Email, req.Code)
}
