// Package model defines the persisted entities shared across every UniAuth
// component, one struct per logical table.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus enumerates the lifecycle states a User can occupy.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the stable identity record. Phone and email are each unique when set.
type User struct {
	ID             uuid.UUID  `db:"id"`
	Phone          *string    `db:"phone"`
	PhoneVerified  bool       `db:"phone_verified"`
	Email          *string    `db:"email"`
	EmailVerified  bool       `db:"email_verified"`
	PasswordHash   *string    `db:"password_hash"`
	Nickname       *string    `db:"nickname"`
	AvatarURL      *string    `db:"avatar_url"`
	Status         UserStatus `db:"status"`
	MFAEnrolled    bool       `db:"mfa_enrolled"`
	MFASecretHash  *string    `db:"mfa_secret_hash"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (u *User) IsSuspended() bool { return u.Status == UserStatusSuspended }

// ClientType enumerates the OAuth client archetypes named
type ClientType string

const (
	ClientTypeWeb    ClientType = "web"
	ClientTypeSPA    ClientType = "spa"
	ClientTypeNative ClientType = "native"
	ClientTypeM2M    ClientType = "m2m"
)

// Application is a registered OAuth/OIDC client ("developer app").
type Application struct {
	ClientID          string     `db:"client_id"`
	ClientSecretHash  *string    `db:"client_secret_hash"`
	Name              string     `db:"name"`
	Type              ClientType `db:"type"`
	IsTrusted         bool       `db:"is_trusted"`
	OwnerUserID       uuid.UUID  `db:"owner_user_id"`
	RedirectURIs      []string   `db:"-"`
	AllowedGrantTypes []string   `db:"-"`
	AllowedScopes     []string   `db:"-"`
	Active            bool       `db:"active"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// IsPublic reports whether the client is spa/native; public clients must use PKCE.
func (a *Application) IsPublic() bool {
	return a.Type == ClientTypeSPA || a.Type == ClientTypeNative
}

func (a *Application) HasRedirectURI(uri string) bool {
	for _, u := range a.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

func (a *Application) AllowsGrant(grant string) bool {
	for _, g := range a.AllowedGrantTypes {
		if g == grant {
			return true
		}
	}
	return false
}

func (a *Application) ScopeAllowed(scope string) bool {
	for _, s := range a.AllowedScopes {
		if s == scope {
			return true
		}
	}
	return false
}

// VerificationCodeType enumerates the purposes a 6-digit code can serve.
type VerificationCodeType string

const (
	CodeTypeLogin       VerificationCodeType = "login"
	CodeTypeRegister    VerificationCodeType = "register"
	CodeTypeReset       VerificationCodeType = "reset"
	CodeTypeEmailVerify VerificationCodeType = "email_verify"
)

// VerificationCode is a single-use, TTL-bound code bound to one (target, type) pair.
type VerificationCode struct {
	ID        uuid.UUID            `db:"id"`
	Target    string               `db:"target"`
	CodeHash  string               `db:"code_hash"`
	Type      VerificationCodeType `db:"type"`
	ExpiresAt time.Time            `db:"expires_at"`
	Attempts  int                  `db:"attempts"`
	Used      bool                 `db:"used"`
	CreatedAt time.Time            `db:"created_at"`
}

const MaxVerificationAttempts = 5

// RefreshToken is stored hashed; the raw value is handed to the caller once.
type RefreshToken struct {
	ID                uuid.UUID  `db:"id"`
	TokenHash         string     `db:"token_hash"`
	UserID            uuid.UUID  `db:"user_id"`
	ClientID          *string    `db:"client_id"`
	Scope             string     `db:"scope"`
	DeviceFingerprint *string    `db:"device_fingerprint"`
	IP                *string    `db:"ip"`
	ExpiresAt         time.Time  `db:"expires_at"`
	Revoked           bool       `db:"revoked"`
	RotatedFromID     *uuid.UUID `db:"rotated_from_id"`
	FamilyID          uuid.UUID  `db:"family_id"`
	CreatedAt         time.Time  `db:"created_at"`
}

// AuthorizationCode is hashed at rest and redeemable exactly once.
type AuthorizationCode struct {
	ID                  uuid.UUID `db:"id"`
	CodeHash            string    `db:"code_hash"`
	UserID              uuid.UUID `db:"user_id"`
	ClientID            string    `db:"client_id"`
	RedirectURI         string    `db:"redirect_uri"`
	Scope               string    `db:"scope"`
	CodeChallenge       *string   `db:"code_challenge"`
	CodeChallengeMethod *string   `db:"code_challenge_method"`
	Nonce               *string   `db:"nonce"`
	Used                bool      `db:"used"`
	ExpiresAt           time.Time `db:"expires_at"`
	CreatedAt           time.Time `db:"created_at"`
}

const AuthorizationCodeTTL = 10 * time.Minute

// SSOSession is the centralized browser session shared across applications.
type SSOSession struct {
	ID           uuid.UUID `db:"id"`
	TokenHash    string    `db:"token_hash"`
	UserID       uuid.UUID `db:"user_id"`
	Apps         []string  `db:"-"`
	CreatedAt    time.Time `db:"created_at"`
	ExpiresAt    time.Time `db:"expires_at"`
	LastActivity time.Time `db:"last_activity"`
	IP           *string   `db:"ip"`
	UserAgent    *string   `db:"user_agent"`
}

const (
	SSOSessionTTLDefault    = 24 * time.Hour
	SSOSessionTTLRememberMe = 30 * 24 * time.Hour
)

func (s *SSOSession) Valid(now time.Time) bool { return s.ExpiresAt.After(now) }

// OAuthAccount binds a social-provider identity to a User.
type OAuthAccount struct {
	ID             uuid.UUID `db:"id"`
	UserID         uuid.UUID `db:"user_id"`
	Provider       string    `db:"provider"`
	ProviderUserID string    `db:"provider_user_id"`
	Email          *string   `db:"email"`
	CreatedAt      time.Time `db:"created_at"`
}

// Webhook is an application's subscription to lifecycle events.
type Webhook struct {
	ID            uuid.UUID `db:"id"`
	ApplicationID string    `db:"application_id"`
	TargetURL     string    `db:"target_url"`
	Secret        string    `db:"secret"`
	Events        []string  `db:"-"`
	Active        bool      `db:"active"`
	CreatedAt     time.Time `db:"created_at"`
}

func (w *Webhook) Subscribes(event string) bool {
	for _, e := range w.Events {
		if e == event {
			return true
		}
	}
	return false
}

// WebhookDeliveryStatus enumerates the delivery lifecycle.
type WebhookDeliveryStatus string

const (
	DeliveryPending  WebhookDeliveryStatus = "pending"
	DeliveryRetrying WebhookDeliveryStatus = "retrying"
	DeliverySuccess  WebhookDeliveryStatus = "success"
	DeliveryFailed   WebhookDeliveryStatus = "failed"
)

const MaxWebhookAttempts = 5

// WebhookDelivery is one attempt-tracked delivery of one event to one webhook.
type WebhookDelivery struct {
	ID             uuid.UUID             `db:"id"`
	WebhookID      uuid.UUID             `db:"webhook_id"`
	Event          string                `db:"event"`
	Payload        []byte                `db:"payload"`
	Status         WebhookDeliveryStatus `db:"status"`
	AttemptCount   int                   `db:"attempt_count"`
	NextRetryAt    time.Time             `db:"next_retry_at"`
	LastResponseCode *int                `db:"last_response_code"`
	LastResponseBody *string             `db:"last_response_body"`
	CreatedAt      time.Time             `db:"created_at"`
	UpdatedAt      time.Time             `db:"updated_at"`
}

// BackoffMinutes returns the exponential retry delay for the given attempt count,
// matching the 1/2/4/8/16-minute schedule.
func BackoffMinutes(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	minutes := 1 << (attempt - 1)
	return time.Duration(minutes) * time.Minute
}

// AuditLogEntry is an append-only record keyed by user, action, and timestamp.
type AuditLogEntry struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Action    string    `db:"action"`
	Metadata  []byte    `db:"metadata"`
	IP        *string   `db:"ip"`
	CreatedAt time.Time `db:"created_at"`
}

// Scope is a named, describable OAuth scope available for applications to request.
type Scope struct {
	Name        string `db:"name"`
	Description string `db:"description"`
}
