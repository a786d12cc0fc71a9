package main

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/model"
)

// logDeliverer is the development stand-in for the SMS/email dispatchers,
// which are external collaborators. Deployment builds replace it with real
// gateway adapters at this same composition-root seam.
type logDeliverer struct{}

func (logDeliverer) Deliver(ctx context.Context, target string, typ model.VerificationCodeType, code string) error {
	logx.WithContext(ctx).Infof("verification code for %s (%s): %s", target, typ, code)
	return nil
}
