// Package user implements the logic behind the user self-service route
// group: profile, sessions, bindings, authorized apps, and account deletion.
package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
	"github.com/uniauth/uniauth/internal/userservice"
)

func userToView(u *model.User) types.UserView {
	return types.UserView{
		ID: u.ID.String(), Phone: u.Phone, PhoneVerified: u.PhoneVerified,
		Email: u.Email, EmailVerified: u.EmailVerified, Nickname: u.Nickname,
		AvatarURL: u.AvatarURL, Status: string(u.Status),
	}
}

type GetProfileLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetProfileLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetProfileLogic {
	return &GetProfileLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *GetProfileLogic) GetProfile(userID uuid.UUID) (*types.UserView, error) {
	u, err := l.svcCtx.User.Profile(l.ctx, userID)
	if err != nil {
		return nil, err
	}
	view := userToView(u)
	return &view, nil
}

type PatchProfileLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPatchProfileLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PatchProfileLogic {
	return &PatchProfileLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *PatchProfileLogic) PatchProfile(userID uuid.UUID, req *types.PatchMeReq) (*types.UserView, error) {
	if err := l.svcCtx.User.PatchProfile(l.ctx, userID, userservice.ProfilePatch{
		Nickname: req.Nickname, AvatarURL: req.AvatarURL,
	}); err != nil {
		return nil, err
	}
	return NewGetProfileLogic(l.ctx, l.svcCtx).GetProfile(userID)
}

type DeleteAccountLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDeleteAccountLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteAccountLogic {
	return &DeleteAccountLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *DeleteAccountLogic) DeleteAccount(userID uuid.UUID) error {
	return l.svcCtx.User.DeleteAccount(l.ctx, userID)
}
