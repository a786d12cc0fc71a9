package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"github.com/uniauth/uniauth/internal/svc"
)

// RegisterHandlers wires the full route table onto the go-zero server,
// grouped by surface: authentication, OAuth provider, OIDC well-known,
// developer, and user self-service.
func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	// Authentication.
	server.AddRoutes(
		[]rest.Route{
			{Method: http.MethodPost, Path: "/phone/send-code", Handler: SendPhoneCodeHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/phone/verify", Handler: VerifyPhoneHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/email/register", Handler: EmailRegisterHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/email/login", Handler: EmailLoginHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/email/send-code", Handler: SendEmailCodeHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/email/verify", Handler: VerifyEmailHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/email/verify-code", Handler: VerifyEmailCodeHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/mfa/verify-login", Handler: VerifyMFALoginHandler(svcCtx)},
			{Method: http.MethodGet, Path: "/oauth/:provider/authorize", Handler: SocialAuthorizeHandler(svcCtx)},
			{Method: http.MethodGet, Path: "/oauth/:provider/callback", Handler: SocialCallbackHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/refresh", Handler: RefreshHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/logout", Handler: LogoutHandler(svcCtx)},
		},
		rest.WithPrefix("/api/v1/auth"),
	)
	server.AddRoutes(
		rest.WithMiddlewares(
			[]rest.Middleware{svcCtx.RequiredAuth.Handle},
			rest.Route{Method: http.MethodPost, Path: "/logout-all", Handler: LogoutAllHandler(svcCtx)},
		),
		rest.WithPrefix("/api/v1/auth"),
	)

	// OAuth provider.
	server.AddRoutes(
		[]rest.Route{
			{Method: http.MethodGet, Path: "/authorize", Handler: AuthorizeHandler(svcCtx)},
			{Method: http.MethodGet, Path: "/validate", Handler: ValidateHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/token", Handler: TokenHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/introspect", Handler: IntrospectHandler(svcCtx)},
			{Method: http.MethodGet, Path: "/userinfo", Handler: UserInfoHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/revoke", Handler: RevokeHandler(svcCtx)},
		},
		rest.WithPrefix("/api/v1/oauth2"),
	)
	// POST /oauth2/authorize requires an authenticated user (explicit consent).
	server.AddRoutes(
		rest.WithMiddlewares(
			[]rest.Middleware{svcCtx.RequiredAuth.Handle},
			rest.Route{Method: http.MethodPost, Path: "/authorize", Handler: ConsentAuthorizeHandler(svcCtx)},
		),
		rest.WithPrefix("/api/v1/oauth2"),
	)

	// OIDC well-known documents.
	server.AddRoutes(
		[]rest.Route{
			{Method: http.MethodGet, Path: "/.well-known/openid-configuration", Handler: DiscoveryHandler(svcCtx)},
			{Method: http.MethodGet, Path: "/.well-known/jwks.json", Handler: JWKSHandler(svcCtx)},
		},
		rest.WithPrefix("/api/v1"),
	)

	// Developer application management.
	server.AddRoutes(
		rest.WithMiddlewares(
			[]rest.Middleware{svcCtx.RequiredAuth.Handle},
			rest.Route{Method: http.MethodGet, Path: "/apps", Handler: ListAppsHandler(svcCtx)},
			rest.Route{Method: http.MethodPost, Path: "/apps", Handler: CreateAppHandler(svcCtx)},
			rest.Route{Method: http.MethodGet, Path: "/apps/:clientId", Handler: GetAppHandler(svcCtx)},
			rest.Route{Method: http.MethodPatch, Path: "/apps/:clientId", Handler: UpdateAppHandler(svcCtx)},
			rest.Route{Method: http.MethodDelete, Path: "/apps/:clientId", Handler: DeleteAppHandler(svcCtx)},
			rest.Route{Method: http.MethodPost, Path: "/apps/:clientId/secret", Handler: RotateSecretHandler(svcCtx)},
			rest.Route{Method: http.MethodGet, Path: "/apps/:clientId/webhooks", Handler: ListWebhooksHandler(svcCtx)},
			rest.Route{Method: http.MethodPost, Path: "/apps/:clientId/webhooks", Handler: CreateWebhookHandler(svcCtx)},
			rest.Route{Method: http.MethodDelete, Path: "/apps/:clientId/webhooks/:webhookId", Handler: DeleteWebhookHandler(svcCtx)},
			rest.Route{Method: http.MethodGet, Path: "/apps/:clientId/claims", Handler: GetClaimsHandler(svcCtx)},
			rest.Route{Method: http.MethodPut, Path: "/apps/:clientId/claims", Handler: SetClaimsHandler(svcCtx)},
			rest.Route{Method: http.MethodGet, Path: "/apps/:clientId/branding", Handler: GetBrandingHandler(svcCtx)},
			rest.Route{Method: http.MethodPut, Path: "/apps/:clientId/branding", Handler: SetBrandingHandler(svcCtx)},
		),
		rest.WithPrefix("/api/v1/developer"),
	)

	// User self-service.
	server.AddRoutes(
		rest.WithMiddlewares(
			[]rest.Middleware{svcCtx.RequiredAuth.Handle},
			rest.Route{Method: http.MethodGet, Path: "/me", Handler: GetProfileHandler(svcCtx)},
			rest.Route{Method: http.MethodPatch, Path: "/me", Handler: PatchProfileHandler(svcCtx)},
			rest.Route{Method: http.MethodGet, Path: "/sessions", Handler: ListSessionsHandler(svcCtx)},
			rest.Route{Method: http.MethodDelete, Path: "/sessions/:id", Handler: RevokeSessionHandler(svcCtx)},
			rest.Route{Method: http.MethodGet, Path: "/bindings", Handler: ListBindingsHandler(svcCtx)},
			rest.Route{Method: http.MethodPost, Path: "/bind/phone", Handler: BindPhoneHandler(svcCtx)},
			rest.Route{Method: http.MethodPost, Path: "/bind/email", Handler: BindEmailHandler(svcCtx)},
			rest.Route{Method: http.MethodDelete, Path: "/unbind/:provider", Handler: UnbindHandler(svcCtx)},
			rest.Route{Method: http.MethodGet, Path: "/authorized-apps", Handler: ListAuthorizedAppsHandler(svcCtx)},
			rest.Route{Method: http.MethodDelete, Path: "/authorized-apps/:clientId", Handler: RevokeAppHandler(svcCtx)},
			rest.Route{Method: http.MethodDelete, Path: "/account", Handler: DeleteAccountHandler(svcCtx)},
		),
		rest.WithPrefix("/api/v1/user"),
	)
}
