package orchestrator

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/tokensigner"
)

func testOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := tokensigner.New(tokensigner.Config{Issuer: "uniauth"},
		[]tokensigner.KeyPair{{KID: "test", Private: priv, Public: &priv.PublicKey}})
	require.NoError(t, err)
	return New(Deps{Signer: signer, AccessTokenTTL: 15 * time.Minute, RefreshTokenTTL: 30 * 24 * time.Hour})
}

func TestAfterIdentityResolved_Suspended(t *testing.T) {
	o := testOrchestrator(t)
	user := &model.User{ID: uuid.New(), Status: model.UserStatusSuspended}

	_, err := o.afterIdentityResolved(context.Background(), user, false, LoginContext{})
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Suspended, e.K)
}

// An MFA-enrolled user gets the short-lived envelope, not tokens; its claims
// are exactly {sub, type:"mfa", exp} plus the registered set.
func TestAfterIdentityResolved_MFAChallenge(t *testing.T) {
	o := testOrchestrator(t)
	user := &model.User{ID: uuid.New(), Status: model.UserStatusActive, MFAEnrolled: true}

	result, err := o.afterIdentityResolved(context.Background(), user, false, LoginContext{})
	require.NoError(t, err)
	assert.True(t, result.MFARequired)
	assert.Empty(t, result.AccessToken)
	assert.Empty(t, result.RefreshToken)

	claims, err := o.signer.Verify(result.MFAToken, "uniauth")
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, "mfa", claims["type"])

	exp, _ := claims["exp"].(float64)
	assert.InDelta(t, time.Now().Add(MFATokenTTL).Unix(), int64(exp), 5)
}

func TestVerifyMFA_RejectsNonMFAToken(t *testing.T) {
	o := testOrchestrator(t)

	// A perfectly valid access-style token without type=mfa must be rejected
	// before any credential check happens.
	token, err := o.signer.Sign(tokensigner.Claims{}, uuid.NewString(), "uniauth", time.Hour)
	require.NoError(t, err)

	_, err = o.VerifyMFA(context.Background(), token, "123456", LoginContext{})
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.InvalidToken, e.K)
}

func TestVerifyMFA_RejectsGarbageAndExpired(t *testing.T) {
	o := testOrchestrator(t)

	_, err := o.VerifyMFA(context.Background(), "not-a-token", "123456", LoginContext{})
	require.Error(t, err)

	expired, err := o.signer.Sign(tokensigner.Claims{Custom: map[string]any{"type": "mfa"}},
		uuid.NewString(), "uniauth", -time.Minute)
	require.NoError(t, err)
	_, err = o.VerifyMFA(context.Background(), expired, "123456", LoginContext{})
	require.Error(t, err)
}
