package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/orchestrator"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

type VerifyMFALoginLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewVerifyMFALoginLogic(ctx context.Context, svcCtx *svc.ServiceContext) *VerifyMFALoginLogic {
	return &VerifyMFALoginLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// VerifyMFALogin exchanges the 5-minute MFA envelope issued by the
// orchestrator for a full token pair.
func (l *VerifyMFALoginLogic) VerifyMFALogin(req *types.MFAVerifyLoginReq, lc orchestrator.LoginContext) (*types.LoginResp, error) {
	result, err := l.svcCtx.Orchestrator.VerifyMFA(l.ctx, req.MFAToken, req.Code, lc)
	if err != nil {
		return nil, err
	}
	return loginResultToResp(result, false), nil
}
