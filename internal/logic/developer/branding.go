package developer

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/developer"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

type GetBrandingLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetBrandingLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetBrandingLogic {
	return &GetBrandingLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *GetBrandingLogic) GetBranding(req *types.AppPathReq) (*types.BrandingResp, error) {
	b, err := l.svcCtx.Developer.GetBranding(l.ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	return &types.BrandingResp{LogoURL: b.LogoURL, PrimaryColor: b.PrimaryColor, ApplicationName: b.ApplicationName}, nil
}

type SetBrandingLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSetBrandingLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SetBrandingLogic {
	return &SetBrandingLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *SetBrandingLogic) SetBranding(req *types.SetBrandingReq) error {
	return l.svcCtx.Developer.SetBranding(l.ctx, req.ClientID, developer.Branding{
		LogoURL: req.LogoURL, PrimaryColor: req.PrimaryColor, ApplicationName: req.ApplicationName,
	})
}
