package handler

import (
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/logic/oauth2"
	"github.com/uniauth/uniauth/internal/middleware"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

var errMissingIdentity = apperr.New(apperr.InvalidToken, "missing or invalid bearer token")

// writeOAuthError renders the OAuth error envelope ({error, error_description}
// with HTTP 400 or 401) instead of the application envelope the global error
// handler would produce — the OAuth surface opts out of that default.
func writeOAuthError(w http.ResponseWriter, r *http.Request, err error) {
	status, envelope := apperr.NewOAuthEnvelope(err)
	httpx.WriteJsonCtx(r.Context(), w, status, envelope)
}

// AuthorizeHandler implements GET /oauth2/authorize. The outcome is always a
// 302 — to the client's redirect_uri (silent auth) or to the login page —
// except when the redirect target itself cannot be trusted, in which case the
// OAuth error envelope stands in for the error page this service does not
// render (UI rendering is out of scope).
func AuthorizeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.AuthorizeReq
		if err := httpx.Parse(r, &req); err != nil {
			writeOAuthError(w, r, err)
			return
		}

		l := oauth2.NewAuthorizeLogic(r.Context(), svcCtx)
		outcome, err := l.Authorize(&req, ssoSessionCookie(r))
		if err != nil {
			writeOAuthError(w, r, err)
			return
		}
		http.Redirect(w, r, outcome.RedirectURL, http.StatusFound)
	}
}

func ConsentAuthorizeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeOAuthError(w, r, errMissingIdentity)
			return
		}

		var req types.ConsentAuthorizeReq
		if err := httpx.Parse(r, &req); err != nil {
			writeOAuthError(w, r, err)
			return
		}

		l := oauth2.NewConsentAuthorizeLogic(r.Context(), svcCtx)
		resp, err := l.ConsentAuthorize(&req, userID)
		if err != nil {
			writeOAuthError(w, r, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

// TokenHandler implements POST /oauth2/token, accepting both
// application/x-www-form-urlencoded and application/json bodies; httpx.Parse
// fills the same TokenReq from either.
func TokenHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TokenReq
		if err := httpx.Parse(r, &req); err != nil {
			writeOAuthError(w, r, err)
			return
		}

		// Confidential clients may authenticate with HTTP Basic instead of
		// body credentials (RFC 6749 section 2.3.1).
		if id, secret, ok := r.BasicAuth(); ok {
			req.ClientID, req.ClientSecret = id, secret
		}

		l := oauth2.NewTokenLogic(r.Context(), svcCtx)
		resp, err := l.Token(&req)
		if err != nil {
			writeOAuthError(w, r, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

// IntrospectHandler implements RFC 7662: a failed resource-server
// authentication yields 401 {active:false}; an invalid token yields
// 200 {active:false}.
func IntrospectHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.IntrospectReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusUnauthorized, &types.IntrospectResp{Active: false})
			return
		}

		basicID, basicSecret, _ := r.BasicAuth()
		l := oauth2.NewIntrospectLogic(r.Context(), svcCtx)
		resp, err := l.Introspect(&req, basicID, basicSecret)
		if err != nil {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusUnauthorized, &types.IntrospectResp{Active: false})
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func UserInfoHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		l := oauth2.NewUserInfoLogic(r.Context(), svcCtx)
		claims, err := l.UserInfo(bearer)
		if err != nil {
			writeOAuthError(w, r, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, claims)
		}
	}
}

func ValidateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ValidateReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := oauth2.NewValidateLogic(r.Context(), svcCtx)
		httpx.OkJsonCtx(r.Context(), w, l.Validate(&req))
	}
}

func RevokeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RevokeReq
		if err := httpx.Parse(r, &req); err != nil {
			writeOAuthError(w, r, err)
			return
		}

		l := oauth2.NewRevokeLogic(r.Context(), svcCtx)
		if err := l.Revoke(&req); err != nil {
			writeOAuthError(w, r, err)
			return
		}
		httpx.Ok(w)
	}
}

func DiscoveryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := oauth2.NewDiscoveryLogic(r.Context(), svcCtx)
		httpx.OkJsonCtx(r.Context(), w, l.Discovery())
	}
}

func JWKSHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := oauth2.NewJWKSLogic(r.Context(), svcCtx)
		httpx.OkJsonCtx(r.Context(), w, l.JWKS())
	}
}
