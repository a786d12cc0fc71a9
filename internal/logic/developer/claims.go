package developer

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

type GetClaimsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetClaimsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetClaimsLogic {
	return &GetClaimsLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *GetClaimsLogic) GetClaims(req *types.AppPathReq) (*types.ClaimsResp, error) {
	claims, err := l.svcCtx.Developer.GetCustomClaims(l.ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	return &types.ClaimsResp{Claims: claims.AsMap()}, nil
}

type SetClaimsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSetClaimsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SetClaimsLogic {
	return &SetClaimsLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// SetClaims merges req.Claims into the application's existing custom-claims
// document.
func (l *SetClaimsLogic) SetClaims(req *types.SetClaimsReq) (*types.ClaimsResp, error) {
	patch, err := structpb.NewStruct(req.Claims)
	if err != nil {
		return nil, fmt.Errorf("developer: build claims patch: %w", err)
	}
	merged, err := l.svcCtx.Developer.SetCustomClaims(l.ctx, req.ClientID, patch)
	if err != nil {
		return nil, err
	}
	return &types.ClaimsResp{Claims: merged.AsMap()}, nil
}
