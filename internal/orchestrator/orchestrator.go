// Package orchestrator implements the login state machine shared by every
// credential channel (phone code, email code, email+password, social,
// passkey).
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/audit"
	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/sso"
	"github.com/uniauth/uniauth/internal/store/postgres"
	"github.com/uniauth/uniauth/internal/tokensigner"
	"github.com/uniauth/uniauth/internal/vault"
	"github.com/uniauth/uniauth/internal/webhook"
)

// MFATokenTTL bounds the short-lived {sub, type:"mfa", exp} envelope issued
// when an enrolled user still owes a second factor.
const MFATokenTTL = 5 * time.Minute

// SocialVerifier exchanges a provider authorization code for a verified
// (provider, providerUserID, email) triple. Concrete adapters live outside
// this repo's scope; this is the seam they plug into.
type SocialVerifier interface {
	Verify(ctx context.Context, provider, code, redirectURI string) (providerUserID, email string, err error)
}

// TOTPVerifier checks a time-based or recovery code against a user's enrolled
// MFA secret. The cryptographic primitive itself lives outside this module;
// this is the seam a concrete TOTP library plugs into.
type TOTPVerifier interface {
	Verify(secretHash, code string) bool
}

// PasskeyVerifier validates a WebAuthn assertion and resolves the owning
// user. Seam only; the WebAuthn library plugs in at the composition root.
type PasskeyVerifier interface {
	Verify(ctx context.Context, credentialID string, assertion []byte) (userID uuid.UUID, err error)
}

type Orchestrator struct {
	store    *postgres.Store
	signer   *tokensigner.Signer
	sso      *sso.Store
	audit    *audit.Writer
	webhooks *webhook.Producer

	social  SocialVerifier
	totp    TOTPVerifier
	passkey PasskeyVerifier

	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

type Deps struct {
	Store           *postgres.Store
	Signer          *tokensigner.Signer
	SSO             *sso.Store
	Audit           *audit.Writer
	Webhooks        *webhook.Producer
	Social          SocialVerifier
	TOTP            TOTPVerifier
	Passkey         PasskeyVerifier
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func New(d Deps) *Orchestrator {
	return &Orchestrator{
		store: d.Store, signer: d.Signer, sso: d.SSO, audit: d.Audit, webhooks: d.Webhooks,
		social: d.Social, totp: d.TOTP, passkey: d.Passkey,
		accessTokenTTL: d.AccessTokenTTL, refreshTokenTTL: d.RefreshTokenTTL,
	}
}

// Result is either a full token pair or an MFA challenge.
type Result struct {
	MFARequired bool
	MFAToken    string

	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         *model.User

	// SSOSessionToken is the raw (unhashed) SSO session cookie value, set only
	// when LoginContext.App was provided; the handler writes it to the
	// uniauth_sso_session cookie.
	SSOSessionToken string
	SSOSessionTTL   time.Duration
}

// LoginContext carries request-scoped data the orchestrator needs but that
// isn't part of the credential itself.
type LoginContext struct {
	IP        string
	UserAgent string
	App       string // application/client identifier for the SSO session
	RememberMe bool
}

// CompletePhoneLogin runs the phone-code branch of the state machine: the
// verification code has already been checked by the caller
// (internal/verification.Engine.Verify); this resolves or creates the user
// and proceeds through the shared suspended/MFA/token logic.
func (o *Orchestrator) CompletePhoneLogin(ctx context.Context, phone string, lc LoginContext) (*Result, error) {
	user, err := o.store.GetUserByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	isNew := user == nil
	if user == nil {
		user, err = o.store.CreateUserWithPhone(ctx, phone)
		if err != nil {
			return nil, err
		}
	} else if !user.PhoneVerified {
		if err := o.store.MarkPhoneVerified(ctx, user.ID); err != nil {
			return nil, err
		}
		user.PhoneVerified = true
	}
	return o.afterIdentityResolved(ctx, user, isNew, lc)
}

// CompleteEmailCodeLogin is the symmetric email-code branch.
func (o *Orchestrator) CompleteEmailCodeLogin(ctx context.Context, email string, lc LoginContext) (*Result, error) {
	user, err := o.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	isNew := user == nil
	if user == nil {
		user, err = o.store.CreateUserWithEmail(ctx, email)
		if err != nil {
			return nil, err
		}
	} else if !user.EmailVerified {
		if err := o.store.MarkEmailVerified(ctx, user.ID); err != nil {
			return nil, err
		}
		user.EmailVerified = true
	}
	return o.afterIdentityResolved(ctx, user, isNew, lc)
}

// CompleteEmailPasswordLogin never auto-creates, and mismatched password or
// unknown email return the same generic error, never revealing which failed.
func (o *Orchestrator) CompleteEmailPasswordLogin(ctx context.Context, email, password string, lc LoginContext) (*Result, error) {
	user, err := o.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil || !vault.CheckPasswordHash(password, *user.PasswordHash) {
		return nil, apperr.New(apperr.InvalidCredentials, "invalid email or password")
	}
	return o.afterIdentityResolved(ctx, user, false, lc)
}

// CompleteSocialLogin implements the social branch: exchange the provider
// code, then find-or-create the user and link the provider identity.
func (o *Orchestrator) CompleteSocialLogin(ctx context.Context, provider, code, redirectURI string, lc LoginContext) (*Result, error) {
	if o.social == nil {
		return nil, apperr.New(apperr.InvalidRequest, "social login not configured")
	}
	providerUserID, email, err := o.social.Verify(ctx, provider, code, redirectURI)
	if err != nil {
		return nil, apperr.New(apperr.InvalidCredentials, "social verification failed")
	}
	user, isNew, err := o.store.FindOrCreateOAuthAccount(ctx, provider, providerUserID, email)
	if err != nil {
		return nil, err
	}
	return o.afterIdentityResolved(ctx, user, isNew, lc)
}

// CompletePasskeyLogin implements the passkey branch.
func (o *Orchestrator) CompletePasskeyLogin(ctx context.Context, credentialID string, assertion []byte, lc LoginContext) (*Result, error) {
	if o.passkey == nil {
		return nil, apperr.New(apperr.InvalidRequest, "passkey login not configured")
	}
	userID, err := o.passkey.Verify(ctx, credentialID, assertion)
	if err != nil {
		return nil, apperr.New(apperr.InvalidCredentials, "passkey verification failed")
	}
	user, err := o.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.InvalidCredentials, "passkey verification failed")
	}
	return o.afterIdentityResolved(ctx, user, false, lc)
}

// afterIdentityResolved is the shared tail of the login state machine:
// suspended check, then MFA branch or full tokens.
func (o *Orchestrator) afterIdentityResolved(ctx context.Context, user *model.User, isNew bool, lc LoginContext) (*Result, error) {
	if user.IsSuspended() {
		return nil, apperr.New(apperr.Suspended, "account is suspended")
	}

	if user.MFAEnrolled && !isNew {
		mfaToken, err := o.signer.Sign(tokensigner.Claims{Custom: map[string]any{"type": "mfa"}}, user.ID.String(), "uniauth", MFATokenTTL)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: sign mfa token: %w", err)
		}
		return &Result{MFARequired: true, MFAToken: mfaToken}, nil
	}

	return o.issueFullTokens(ctx, user, lc)
}

// VerifyMFA exchanges an MFA token plus a TOTP/recovery code for a full
// token pair.
func (o *Orchestrator) VerifyMFA(ctx context.Context, mfaToken, code string, lc LoginContext) (*Result, error) {
	claims, err := o.signer.Verify(mfaToken, "uniauth")
	if err != nil {
		return nil, apperr.New(apperr.InvalidToken, "invalid or expired mfa token")
	}
	if claims["type"] != "mfa" {
		return nil, apperr.New(apperr.InvalidToken, "not an mfa token")
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperr.New(apperr.InvalidToken, "invalid mfa token subject")
	}
	user, err := o.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.InvalidToken, "invalid mfa token subject")
	}
	if user.MFASecretHash == nil || o.totp == nil || !o.totp.Verify(*user.MFASecretHash, code) {
		return nil, apperr.New(apperr.InvalidCredentials, "invalid mfa code")
	}
	return o.issueFullTokens(ctx, user, lc)
}

// issueFullTokens applies the four post-resolution side effects: persist
// refresh token, write audit entry, enqueue webhook event, establish SSO
// session. The OAuth-flow handoff itself is the caller's responsibility; see
// internal/oauthengine.
func (o *Orchestrator) issueFullTokens(ctx context.Context, user *model.User, lc LoginContext) (*Result, error) {
	accessToken, err := o.signer.Sign(o.profileClaims(user), user.ID.String(), "uniauth", o.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: sign access token: %w", err)
	}

	rawRefresh, hash, err := vault.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: generate refresh token: %w", err)
	}
	rt := &model.RefreshToken{
		TokenHash: hash,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(o.refreshTokenTTL),
	}
	if lc.IP != "" {
		rt.IP = &lc.IP
	}
	if lc.UserAgent != "" {
		rt.DeviceFingerprint = &lc.UserAgent
	}
	if err := o.store.CreateRefreshToken(ctx, rt); err != nil {
		return nil, fmt.Errorf("orchestrator: persist refresh token: %w", err)
	}

	o.audit.Write(ctx, user.ID, "user.login", map[string]any{"ip": lc.IP}, lc.IP)

	if o.webhooks != nil {
		if err := o.webhooks.Enqueue(ctx, "user.login", map[string]any{"user_id": user.ID.String()}); err != nil {
			// Webhook enqueue failures never fail the login itself.
			logx.WithContext(ctx).Errorf("orchestrator: enqueue user.login webhook: %v", err)
		}
	}

	var ssoToken string
	var ssoTTL time.Duration
	if lc.App != "" {
		raw, sess, err := o.sso.Create(ctx, user.ID, lc.App, sso.CreateOpts{RememberMe: lc.RememberMe, IP: lc.IP, UserAgent: lc.UserAgent})
		if err != nil {
			return nil, fmt.Errorf("orchestrator: create sso session: %w", err)
		}
		ssoToken = raw
		ssoTTL = time.Until(sess.ExpiresAt)
	}

	return &Result{
		AccessToken:     accessToken,
		RefreshToken:    rawRefresh,
		ExpiresIn:       int(o.accessTokenTTL.Seconds()),
		User:            user,
		SSOSessionToken: ssoToken,
		SSOSessionTTL:   ssoTTL,
	}, nil
}

// profileClaims assembles the OIDC profile claims that apply to every issued
// access/ID token, regardless of flow.
func (o *Orchestrator) profileClaims(user *model.User) tokensigner.Claims {
	c := tokensigner.Claims{}
	if user.Email != nil {
		c.Email = *user.Email
		v := user.EmailVerified
		c.EmailVerified = &v
	}
	if user.Phone != nil {
		c.PhoneNumber = *user.Phone
		v := user.PhoneVerified
		c.PhoneVerified = &v
	}
	if user.Nickname != nil {
		c.Name = *user.Nickname
	}
	if user.AvatarURL != nil {
		c.Picture = *user.AvatarURL
	}
	c.AuthTime = time.Now().Unix()
	return c
}
