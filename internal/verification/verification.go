// Package verification issues and checks 6-digit codes for phone/email with
// attempt limits, single-use semantics, and retry cooldowns.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/ratelimit"
	"github.com/uniauth/uniauth/internal/vault"
	"github.com/uniauth/uniauth/internal/store/postgres"
)

const codeTTL = 5 * time.Minute

// Deliverer is the external collaborator that actually sends the code to the
// user (SMS gateway, email dispatcher); this package only asks it to deliver
// a code to an address.
type Deliverer interface {
	Deliver(ctx context.Context, target string, typ model.VerificationCodeType, code string) error
}

type Engine struct {
	store   *postgres.Store
	limiter *ratelimit.Limiter
	deliver Deliverer
}

func New(store *postgres.Store, limiter *ratelimit.Limiter, deliver Deliverer) *Engine {
	return &Engine{store: store, limiter: limiter, deliver: deliver}
}

// IssueResult carries the TTL of the freshly issued code; the retry-after
// hint on rejection rides the RateLimited error instead.
type IssueResult struct {
	ExpiresIn int
}

// Issue generates and delivers a new code for (target, type). It does not
// invalidate the prior unused code — Verify always selects the newest
// unused+unexpired row.
func (e *Engine) Issue(ctx context.Context, ip, target string, typ model.VerificationCodeType) (*IssueResult, error) {
	if err := e.limiter.Reserve(ctx, target, ip); err != nil {
		return nil, err
	}

	code, err := generateSixDigitCode()
	if err != nil {
		return nil, fmt.Errorf("verification: generate code: %w", err)
	}
	if _, err := e.store.InsertVerificationCode(ctx, target, typ, hashCode(target, typ, code), codeTTL); err != nil {
		return nil, fmt.Errorf("verification: persist code: %w", err)
	}
	if err := e.deliver.Deliver(ctx, target, typ, code); err != nil {
		return nil, fmt.Errorf("verification: deliver code: %w", err)
	}
	return &IssueResult{ExpiresIn: int(codeTTL.Seconds())}, nil
}

// Verify consumes the newest outstanding code for target, translating the
// storage-layer VerifyResult into the apperr taxonomy.
func (e *Engine) Verify(ctx context.Context, target string, typ model.VerificationCodeType, code string) error {
	result, err := e.store.ConsumeVerificationCode(ctx, target, typ, hashCode(target, typ, code))
	if err != nil {
		return fmt.Errorf("verification: consume code: %w", err)
	}
	switch result {
	case postgres.VerifyOK:
		return nil
	case postgres.VerifyExpired:
		return apperr.New(apperr.TokenExpired, "verification code expired")
	case postgres.VerifyTooManyAttempts:
		// The row is burned without consulting the code value; rendered as
		// InvalidCredentials to keep the error message uniform with a simple
		// mismatch.
		return apperr.New(apperr.InvalidCredentials, "invalid code")
	case postgres.VerifyNotFound, postgres.VerifyInvalid:
		return apperr.New(apperr.InvalidCredentials, "invalid code")
	default:
		return apperr.New(apperr.Internal, "unexpected verification result")
	}
}

// hashCode binds the code to (target, type) so a guessed/leaked code for one
// purpose can't be replayed against another; codes themselves are short-lived
// and rate-limited so this is a defense-in-depth measure, not the primary
// control.
func hashCode(target string, typ model.VerificationCodeType, code string) string {
	return vault.HashOpaque(fmt.Sprintf("%s:%s:%s", target, typ, code))
}

func generateSixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
