package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/rest"

	"github.com/uniauth/uniauth/internal/config"
	"github.com/uniauth/uniauth/internal/svc"
)

func svcWithMode(mode string) *svc.ServiceContext {
	c := config.Config{RestConf: rest.RestConf{ServiceConf: service.ServiceConf{Mode: mode}}}
	return &svc.ServiceContext{Config: c}
}

func TestSetSSOSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	setSSOSessionCookie(rec, svcWithMode(service.DevMode), "raw-token", 24*time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "uniauth_sso_session", c.Name)
	assert.Equal(t, "raw-token", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, int((24 * time.Hour).Seconds()), c.MaxAge)
	assert.False(t, c.Secure)
}

func TestSetSSOSessionCookie_SecureInProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	setSSOSessionCookie(rec, svcWithMode(service.ProMode), "raw-token", time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}

func TestClearSSOSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	clearSSOSessionCookie(rec, svcWithMode(service.DevMode))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "uniauth_sso_session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestSSOSessionCookieRead(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth2/authorize", nil)
	assert.Empty(t, ssoSessionCookie(req))

	req.AddCookie(&http.Cookie{Name: "uniauth_sso_session", Value: "cookie-value"})
	assert.Equal(t, "cookie-value", ssoSessionCookie(req))
}
