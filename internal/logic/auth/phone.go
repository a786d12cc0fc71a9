// Package auth implements the logic behind the authentication route group:
// phone/email code and password login, social login, MFA step-up, refresh,
// and logout.
package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/orchestrator"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

type SendPhoneCodeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSendPhoneCodeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SendPhoneCodeLogic {
	return &SendPhoneCodeLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *SendPhoneCodeLogic) SendPhoneCode(req *types.SendPhoneCodeReq, sourceIP string) (*types.SendCodeResp, error) {
	result, err := l.svcCtx.Verification.Issue(l.ctx, sourceIP, req.Phone, model.CodeTypeLogin)
	if err != nil {
		return nil, err
	}
	return &types.SendCodeResp{ExpiresIn: result.ExpiresIn}, nil
}

type VerifyPhoneLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewVerifyPhoneLogic(ctx context.Context, svcCtx *svc.ServiceContext) *VerifyPhoneLogic {
	return &VerifyPhoneLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// VerifyPhone implements scenario 1: phone code
// verification followed by find-or-create login.
func (l *VerifyPhoneLogic) VerifyPhone(req *types.VerifyPhoneReq, lc orchestrator.LoginContext) (*types.LoginResp, error) {
	if err := l.svcCtx.Verification.Verify(l.ctx, req.Phone, model.CodeTypeLogin, req.Code); err != nil {
		return nil, err
	}
	existed, err := l.svcCtx.Store.GetUserByPhone(l.ctx, req.Phone)
	if err != nil {
		return nil, err
	}
	lc.RememberMe = req.RememberMe
	lc.App = req.App
	result, err := l.svcCtx.Orchestrator.CompletePhoneLogin(l.ctx, req.Phone, lc)
	if err != nil {
		return nil, err
	}
	return loginResultToResp(result, existed == nil), nil
}

// loginResultToResp renders an orchestrator.Result as the wire LoginResp,
// shared across every credential channel in this package.
func loginResultToResp(result *orchestrator.Result, isNew bool) *types.LoginResp {
	if result.MFARequired {
		return &types.LoginResp{MFARequired: true, MFAToken: result.MFAToken}
	}
	return &types.LoginResp{
		User:            userView(result.User),
		AccessToken:     result.AccessToken,
		RefreshToken:    result.RefreshToken,
		ExpiresIn:       result.ExpiresIn,
		IsNewUser:       isNew,
		SSOSessionToken: result.SSOSessionToken,
		SSOSessionTTL:   result.SSOSessionTTL,
	}
}

func userView(u *model.User) *types.UserView {
	if u == nil {
		return nil
	}
	return &types.UserView{
		ID:            u.ID.String(),
		Phone:         u.Phone,
		PhoneVerified: u.PhoneVerified,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Nickname:      u.Nickname,
		AvatarURL:     u.AvatarURL,
		Status:        string(u.Status),
	}
}
