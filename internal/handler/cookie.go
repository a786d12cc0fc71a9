// Package handler wires the HTTP façade: thin handlers that parse requests,
// delegate to the logic layer, and shape responses.
package handler

import (
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/service"

	"github.com/uniauth/uniauth/internal/svc"
)

const ssoSessionCookieName = "uniauth_sso_session"

// setSSOSessionCookie writes the SSO session cookie:
// HTTP-only, SameSite=Lax, Secure in production, path "/".
func setSSOSessionCookie(w http.ResponseWriter, svcCtx *svc.ServiceContext, raw string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     ssoSessionCookieName,
		Value:    raw,
		Path:     "/",
		HttpOnly: true,
		Secure:   svcCtx.Config.Mode == service.ProMode,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func clearSSOSessionCookie(w http.ResponseWriter, svcCtx *svc.ServiceContext) {
	http.SetCookie(w, &http.Cookie{
		Name:     ssoSessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   svcCtx.Config.Mode == service.ProMode,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func ssoSessionCookie(r *http.Request) string {
	c, err := r.Cookie(ssoSessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
