// Package types defines the wire-level request and response shapes for every
// route the API server exposes.
package types

import "time"

// UserView is the public projection of model.User returned from every
// endpoint that surfaces the authenticated identity.
type UserView struct {
	ID            string  `json:"id"`
	Phone         *string `json:"phone,omitempty"`
	PhoneVerified bool    `json:"phone_verified"`
	Email         *string `json:"email,omitempty"`
	EmailVerified bool    `json:"email_verified"`
	Nickname      *string `json:"nickname,omitempty"`
	AvatarURL     *string `json:"avatar_url,omitempty"`
	Status        string  `json:"status"`
}

// --- Authentication ---

type SendPhoneCodeReq struct {
	Phone string `json:"phone"`
}

type SendCodeResp struct {
	ExpiresIn int `json:"expires_in"`
}

type VerifyPhoneReq struct {
	Phone      string `json:"phone"`
	Code       string `json:"code"`
	RememberMe bool   `json:"remember_me,optional"`
	// App is the initiating application's client_id, present when login is
	// triggered from an OAuth authorize redirect; when set an SSO session is
	// established immediately on success.
	App string `json:"app,optional"`
}

// LoginResp covers every credential-channel outcome: either a full token
// pair or an MFA challenge envelope.
type LoginResp struct {
	User         *UserView `json:"user,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	IsNewUser    bool      `json:"is_new_user,omitempty"`
	MFARequired  bool      `json:"mfa_required,omitempty"`
	MFAToken     string    `json:"mfa_token,omitempty"`

	// SSOSessionToken/SSOSessionTTL are set only when login established an SSO
	// session; excluded from the JSON body, consumed by the handler to write
	// the uniauth_sso_session cookie.
	SSOSessionToken string        `json:"-"`
	SSOSessionTTL   time.Duration `json:"-"`
}

type EmailRegisterReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	App      string `json:"app,optional"`
}

type EmailLoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	App      string `json:"app,optional"`
}

type SendEmailCodeReq struct {
	Email string `json:"email"`
	Type  string `json:"type,optional"`
}

type VerifyEmailReq struct {
	Email      string `json:"email"`
	Code       string `json:"code"`
	RememberMe bool   `json:"remember_me,optional"`
	App        string `json:"app,optional"`
}

type VerifyEmailCodeReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerifyEmailCodeResp struct {
	Verified bool `json:"verified"`
}

type MFAVerifyLoginReq struct {
	MFAToken string `json:"mfa_token"`
	Code     string `json:"code"`
	App      string `json:"app,optional"`
}

type SocialAuthorizeReq struct {
	Provider    string `path:"provider"`
	RedirectURI string `form:"redirect_uri"`
	State       string `form:"state,optional"`
}

type SocialCallbackReq struct {
	Provider    string `path:"provider"`
	Code        string `form:"code"`
	State       string `form:"state,optional"`
	RedirectURI string `form:"redirect_uri"`
	App         string `form:"app,optional"`
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	IDToken      string `json:"id_token,omitempty"`
}

type LogoutReq struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutAllResp struct {
	Count int64 `json:"count"`
}

// --- OAuth 2.0 / OIDC provider ---

type AuthorizeReq struct {
	ClientID            string `form:"client_id"`
	RedirectURI         string `form:"redirect_uri"`
	ResponseType        string `form:"response_type"`
	Scope               string `form:"scope,optional"`
	State               string `form:"state,optional"`
	CodeChallenge       string `form:"code_challenge,optional"`
	CodeChallengeMethod string `form:"code_challenge_method,optional"`
	Nonce               string `form:"nonce,optional"`
}

type ConsentAuthorizeReq struct {
	ClientID            string `json:"client_id"`
	RedirectURI         string `json:"redirect_uri"`
	ResponseType        string `json:"response_type"`
	Scope               string `json:"scope,optional"`
	State               string `json:"state,optional"`
	CodeChallenge       string `json:"code_challenge,optional"`
	CodeChallengeMethod string `json:"code_challenge_method,optional"`
	Nonce               string `json:"nonce,optional"`
}

type ConsentAuthorizeResp struct {
	RedirectURL string `json:"redirect_url"`
}

// TokenReq is the unified shape httpx.Parse fills from either an
// application/x-www-form-urlencoded or an application/json body, so the token
// endpoint dispatches on one struct regardless of content type.
type TokenReq struct {
	GrantType    string `json:"grant_type,optional" form:"grant_type,optional"`
	Code         string `json:"code,optional" form:"code,optional"`
	RedirectURI  string `json:"redirect_uri,optional" form:"redirect_uri,optional"`
	ClientID     string `json:"client_id,optional" form:"client_id,optional"`
	ClientSecret string `json:"client_secret,optional" form:"client_secret,optional"`
	CodeVerifier string `json:"code_verifier,optional" form:"code_verifier,optional"`
	RefreshToken string `json:"refresh_token,optional" form:"refresh_token,optional"`
	Scope        string `json:"scope,optional" form:"scope,optional"`
}

type TokenResp struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

type IntrospectReq struct {
	Token        string `json:"token,optional" form:"token,optional"`
	ClientID     string `json:"client_id,optional" form:"client_id,optional"`
	ClientSecret string `json:"client_secret,optional" form:"client_secret,optional"`
}

type IntrospectResp struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Sub       string `json:"sub,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
	Iss       string `json:"iss,omitempty"`
	Aud       string `json:"aud,omitempty"`
	TokenType string `json:"token_type,omitempty"`
}

type ValidateReq struct {
	Token string `form:"token"`
}

type ValidateResp struct {
	Valid   bool   `json:"valid"`
	Subject string `json:"subject,omitempty"`
}

type RevokeReq struct {
	Token string `json:"token" form:"token"`
}

type UserInfoResp struct {
	Claims map[string]any `json:"-"`
}

// --- OIDC well-known documents ---

// Discovery and JWKS responses are returned verbatim from
// internal/oauthengine.Discovery/JWKS; no separate types wrapper needed.

// --- Developer application management ---

type CreateAppReq struct {
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	RedirectURIs      []string `json:"redirect_uris"`
	AllowedGrantTypes []string `json:"allowed_grant_types"`
	AllowedScopes     []string `json:"allowed_scopes,optional"`
}

type AppResp struct {
	ClientID          string   `json:"client_id"`
	ClientSecret      string   `json:"client_secret,omitempty"`
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	IsPublic          bool     `json:"is_public"`
	IsTrusted         bool     `json:"is_trusted"`
	RedirectURIs      []string `json:"redirect_uris"`
	AllowedGrantTypes []string `json:"allowed_grant_types"`
	AllowedScopes     []string `json:"allowed_scopes"`
	Active            bool     `json:"active"`
}

type ListAppsResp struct {
	Apps []AppResp `json:"apps"`
}

type AppPathReq struct {
	ClientID string `path:"clientId"`
}

type UpdateAppReq struct {
	ClientID          string   `path:"clientId"`
	Name              string   `json:"name,optional"`
	RedirectURIs      []string `json:"redirect_uris,optional"`
	AllowedGrantTypes []string `json:"allowed_grant_types,optional"`
	AllowedScopes     []string `json:"allowed_scopes,optional"`
}

type RotateSecretResp struct {
	ClientSecret string `json:"client_secret"`
}

type CreateWebhookReq struct {
	ClientID  string   `path:"clientId"`
	TargetURL string   `json:"target_url"`
	Secret    string   `json:"secret"`
	Events    []string `json:"events"`
}

type WebhookResp struct {
	ID        string   `json:"id"`
	TargetURL string   `json:"target_url"`
	Events    []string `json:"events"`
	Active    bool     `json:"active"`
}

type ListWebhooksResp struct {
	Webhooks []WebhookResp `json:"webhooks"`
}

type WebhookPathReq struct {
	ClientID  string `path:"clientId"`
	WebhookID string `path:"webhookId"`
}

type ClaimsResp struct {
	Claims map[string]any `json:"claims"`
}

type SetClaimsReq struct {
	ClientID string         `path:"clientId"`
	Claims   map[string]any `json:"claims"`
}

type BrandingResp struct {
	LogoURL         string `json:"logo_url"`
	PrimaryColor    string `json:"primary_color"`
	ApplicationName string `json:"application_name"`
}

type SetBrandingReq struct {
	ClientID        string `path:"clientId"`
	LogoURL         string `json:"logo_url,optional"`
	PrimaryColor    string `json:"primary_color,optional"`
	ApplicationName string `json:"application_name,optional"`
}

// --- User self-service ---

type PatchMeReq struct {
	Nickname  *string `json:"nickname,optional"`
	AvatarURL *string `json:"avatar_url,optional"`
}

type SessionView struct {
	ID           string   `json:"id"`
	Apps         []string `json:"apps"`
	CreatedAt    string   `json:"created_at"`
	ExpiresAt    string   `json:"expires_at"`
	LastActivity string   `json:"last_activity"`
}

type ListSessionsResp struct {
	Sessions []SessionView `json:"sessions"`
}

type SessionPathReq struct {
	ID string `path:"id"`
}

type BindingView struct {
	Provider       string `json:"provider"`
	ProviderUserID string `json:"provider_user_id"`
	Email          string `json:"email,omitempty"`
}

type ListBindingsResp struct {
	Bindings []BindingView `json:"bindings"`
}

type BindPhoneReq struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type BindEmailReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type UnbindReq struct {
	Provider string `path:"provider"`
}

type AuthorizedAppsResp struct {
	ClientIDs []string `json:"client_ids"`
}

type RevokeAppReq struct {
	ClientID string `path:"clientId"`
}
