package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/orchestrator"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
	"github.com/uniauth/uniauth/internal/vault"
)

type EmailRegisterLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewEmailRegisterLogic(ctx context.Context, svcCtx *svc.ServiceContext) *EmailRegisterLogic {
	return &EmailRegisterLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// EmailRegister creates a new email+password account. Unlike the code
// channels, registration is explicit: an existing email is a conflict, not a
// silent login, since the caller is asserting a new password.
func (l *EmailRegisterLogic) EmailRegister(req *types.EmailRegisterReq, lc orchestrator.LoginContext) (*types.LoginResp, error) {
	existing, err := l.svcCtx.Store.GetUserByEmail(l.ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.Conflict, "an account with this email already exists")
	}
	user, err := l.svcCtx.Store.CreateUserWithEmail(l.ctx, req.Email)
	if err != nil {
		return nil, err
	}
	hash, err := vault.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	if err := l.svcCtx.Store.SetPasswordHash(l.ctx, user.ID, hash); err != nil {
		return nil, err
	}
	lc.App = req.App
	result, err := l.svcCtx.Orchestrator.CompleteEmailPasswordLogin(l.ctx, req.Email, req.Password, lc)
	if err != nil {
		return nil, err
	}
	return loginResultToResp(result, true), nil
}

type EmailLoginLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewEmailLoginLogic(ctx context.Context, svcCtx *svc.ServiceContext) *EmailLoginLogic {
	return &EmailLoginLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *EmailLoginLogic) EmailLogin(req *types.EmailLoginReq, lc orchestrator.LoginContext) (*types.LoginResp, error) {
	lc.App = req.App
	result, err := l.svcCtx.Orchestrator.CompleteEmailPasswordLogin(l.ctx, req.Email, req.Password, lc)
	if err != nil {
		return nil, err
	}
	return loginResultToResp(result, false), nil
}

type SendEmailCodeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSendEmailCodeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SendEmailCodeLogic {
	return &SendEmailCodeLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *SendEmailCodeLogic) SendEmailCode(req *types.SendEmailCodeReq, sourceIP string) (*types.SendCodeResp, error) {
	typ := model.CodeTypeLogin
	if req.Type != "" {
		typ = model.VerificationCodeType(req.Type)
	}
	result, err := l.svcCtx.Verification.Issue(l.ctx, sourceIP, req.Email, typ)
	if err != nil {
		return nil, err
	}
	return &types.SendCodeResp{ExpiresIn: result.ExpiresIn}, nil
}

type VerifyEmailLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewVerifyEmailLogic(ctx context.Context, svcCtx *svc.ServiceContext) *VerifyEmailLogic {
	return &VerifyEmailLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// VerifyEmail is the email-code login branch.
func (l *VerifyEmailLogic) VerifyEmail(req *types.VerifyEmailReq, lc orchestrator.LoginContext) (*types.LoginResp, error) {
	if err := l.svcCtx.Verification.Verify(l.ctx, req.Email, model.CodeTypeLogin, req.Code); err != nil {
		return nil, err
	}
	existed, err := l.svcCtx.Store.GetUserByEmail(l.ctx, req.Email)
	if err != nil {
		return nil, err
	}
	lc.RememberMe = req.RememberMe
	lc.App = req.App
	result, err := l.svcCtx.Orchestrator.CompleteEmailCodeLogin(l.ctx, req.Email, lc)
	if err != nil {
		return nil, err
	}
	return loginResultToResp(result, existed == nil), nil
}

type VerifyEmailCodeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewVerifyEmailCodeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *VerifyEmailCodeLogic {
	return &VerifyEmailCodeLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// VerifyEmailCode implements the email_verify channel: confirming ownership
// of an already-bound email address without establishing a session, distinct
// from /auth/email/verify's login branch.
func (l *VerifyEmailCodeLogic) VerifyEmailCode(req *types.VerifyEmailCodeReq) (*types.VerifyEmailCodeResp, error) {
	if err := l.svcCtx.Verification.Verify(l.ctx, req.Email, model.CodeTypeEmailVerify, req.Code); err != nil {
		return nil, err
	}
	user, err := l.svcCtx.Store.GetUserByEmail(l.ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "no account bound to this email")
	}
	if err := l.svcCtx.Store.MarkEmailVerified(l.ctx, user.ID); err != nil {
		return nil, err
	}
	return &types.VerifyEmailCodeResp{Verified: true}, nil
}
