// Package developer implements the logic behind the developer route group:
// application, webhook, custom-claims and branding management for registered
// OAuth/OIDC clients.
package developer

import (
	"context"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/developer"
	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

func appToResp(app *model.Application, plainSecret string) types.AppResp {
	return types.AppResp{
		ClientID: app.ClientID, ClientSecret: plainSecret, Name: app.Name,
		Type: string(app.Type), IsPublic: app.IsPublic(), IsTrusted: app.IsTrusted,
		RedirectURIs: app.RedirectURIs, AllowedGrantTypes: app.AllowedGrantTypes,
		AllowedScopes: app.AllowedScopes, Active: app.Active,
	}
}

type CreateAppLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCreateAppLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateAppLogic {
	return &CreateAppLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *CreateAppLogic) CreateApp(req *types.CreateAppReq, ownerID uuid.UUID) (*types.AppResp, error) {
	app, plainSecret, err := l.svcCtx.Developer.Register(l.ctx, developer.RegisterInput{
		Name: req.Name, Type: model.ClientType(req.Type), OwnerUserID: ownerID,
		RedirectURIs: req.RedirectURIs, AllowedGrantTypes: req.AllowedGrantTypes, AllowedScopes: req.AllowedScopes,
	})
	if err != nil {
		return nil, err
	}
	resp := appToResp(app, plainSecret)
	return &resp, nil
}

type GetAppLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetAppLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetAppLogic {
	return &GetAppLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *GetAppLogic) GetApp(req *types.AppPathReq) (*types.AppResp, error) {
	app, err := l.svcCtx.Developer.Get(l.ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	resp := appToResp(app, "")
	return &resp, nil
}

type ListAppsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListAppsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListAppsLogic {
	return &ListAppsLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *ListAppsLogic) ListApps(ownerID uuid.UUID) (*types.ListAppsResp, error) {
	apps, err := l.svcCtx.Developer.ListByOwner(l.ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]types.AppResp, len(apps))
	for i, app := range apps {
		out[i] = appToResp(app, "")
	}
	return &types.ListAppsResp{Apps: out}, nil
}

type UpdateAppLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewUpdateAppLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UpdateAppLogic {
	return &UpdateAppLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// UpdateApp applies the mutable subset of an application's configuration;
// client_id and type are immutable once issued
func (l *UpdateAppLogic) UpdateApp(req *types.UpdateAppReq) (*types.AppResp, error) {
	app, err := l.svcCtx.Developer.Get(l.ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		app.Name = req.Name
	}
	if req.RedirectURIs != nil {
		app.RedirectURIs = req.RedirectURIs
	}
	if req.AllowedGrantTypes != nil {
		app.AllowedGrantTypes = req.AllowedGrantTypes
	}
	if req.AllowedScopes != nil {
		app.AllowedScopes = req.AllowedScopes
	}
	if err := l.svcCtx.Developer.Update(l.ctx, app); err != nil {
		return nil, err
	}
	resp := appToResp(app, "")
	return &resp, nil
}

type RotateSecretLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRotateSecretLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RotateSecretLogic {
	return &RotateSecretLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *RotateSecretLogic) RotateSecret(req *types.AppPathReq) (*types.RotateSecretResp, error) {
	plain, err := l.svcCtx.Developer.RotateSecret(l.ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	return &types.RotateSecretResp{ClientSecret: plain}, nil
}

type DeleteAppLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDeleteAppLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteAppLogic {
	return &DeleteAppLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *DeleteAppLogic) DeleteApp(req *types.AppPathReq) error {
	return l.svcCtx.Developer.Delete(l.ctx, req.ClientID)
}
