package developer

import (
	"context"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

func webhookToResp(wh *model.Webhook) types.WebhookResp {
	return types.WebhookResp{ID: wh.ID.String(), TargetURL: wh.TargetURL, Events: wh.Events, Active: wh.Active}
}

type CreateWebhookLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCreateWebhookLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateWebhookLogic {
	return &CreateWebhookLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *CreateWebhookLogic) CreateWebhook(req *types.CreateWebhookReq) (*types.WebhookResp, error) {
	wh, err := l.svcCtx.Developer.CreateWebhook(l.ctx, req.ClientID, req.TargetURL, req.Secret, req.Events)
	if err != nil {
		return nil, err
	}
	resp := webhookToResp(wh)
	return &resp, nil
}

type ListWebhooksLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListWebhooksLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListWebhooksLogic {
	return &ListWebhooksLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *ListWebhooksLogic) ListWebhooks(req *types.AppPathReq) (*types.ListWebhooksResp, error) {
	webhooks, err := l.svcCtx.Developer.ListWebhooks(l.ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	out := make([]types.WebhookResp, len(webhooks))
	for i, wh := range webhooks {
		out[i] = webhookToResp(wh)
	}
	return &types.ListWebhooksResp{Webhooks: out}, nil
}

type DeleteWebhookLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDeleteWebhookLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteWebhookLogic {
	return &DeleteWebhookLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *DeleteWebhookLogic) DeleteWebhook(req *types.WebhookPathReq) error {
	id, err := uuid.Parse(req.WebhookID)
	if err != nil {
		return apperr.New(apperr.InvalidRequest, "invalid webhook id")
	}
	return l.svcCtx.Developer.DeleteWebhook(l.ctx, id)
}
