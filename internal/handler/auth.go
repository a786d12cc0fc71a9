package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/uniauth/uniauth/internal/logic/auth"
	"github.com/uniauth/uniauth/internal/middleware"
	"github.com/uniauth/uniauth/internal/orchestrator"
	"github.com/uniauth/uniauth/internal/svc"
	"github.com/uniauth/uniauth/internal/types"
)

// loginContext assembles the request-scoped data every credential channel
// passes to the orchestrator.
func loginContext(r *http.Request) orchestrator.LoginContext {
	return orchestrator.LoginContext{
		IP:        httpx.GetRemoteAddr(r),
		UserAgent: r.UserAgent(),
	}
}

// writeLoginResp shapes the shared tail of every login handler: set the SSO
// cookie when the orchestrator established a session, then emit the JSON body.
func writeLoginResp(w http.ResponseWriter, r *http.Request, svcCtx *svc.ServiceContext, resp *types.LoginResp) {
	if resp.SSOSessionToken != "" {
		setSSOSessionCookie(w, svcCtx, resp.SSOSessionToken, resp.SSOSessionTTL)
	}
	httpx.OkJsonCtx(r.Context(), w, resp)
}

func SendPhoneCodeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SendPhoneCodeReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewSendPhoneCodeLogic(r.Context(), svcCtx)
		resp, err := l.SendPhoneCode(&req, httpx.GetRemoteAddr(r))
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

func VerifyPhoneHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.VerifyPhoneReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewVerifyPhoneLogic(r.Context(), svcCtx)
		resp, err := l.VerifyPhone(&req, loginContext(r))
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			writeLoginResp(w, r, svcCtx, resp)
		}
	}
}

func EmailRegisterHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.EmailRegisterReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewEmailRegisterLogic(r.Context(), svcCtx)
		resp, err := l.EmailRegister(&req, loginContext(r))
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			writeLoginResp(w, r, svcCtx, resp)
		}
	}
}

func EmailLoginHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.EmailLoginReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewEmailLoginLogic(r.Context(), svcCtx)
		resp, err := l.EmailLogin(&req, loginContext(r))
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			writeLoginResp(w, r, svcCtx, resp)
		}
	}
}

func SendEmailCodeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SendEmailCodeReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewSendEmailCodeLogic(r.Context(), svcCtx)
		resp, err := l.SendEmailCode(&req, httpx.GetRemoteAddr(r))
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

func VerifyEmailHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.VerifyEmailReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewVerifyEmailLogic(r.Context(), svcCtx)
		resp, err := l.VerifyEmail(&req, loginContext(r))
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			writeLoginResp(w, r, svcCtx, resp)
		}
	}
}

func VerifyEmailCodeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.VerifyEmailCodeReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewVerifyEmailCodeLogic(r.Context(), svcCtx)
		resp, err := l.VerifyEmailCode(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

func VerifyMFALoginHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.MFAVerifyLoginReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewVerifyMFALoginLogic(r.Context(), svcCtx)
		lc := loginContext(r)
		lc.App = req.App
		resp, err := l.VerifyMFALogin(&req, lc)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			writeLoginResp(w, r, svcCtx, resp)
		}
	}
}

func SocialAuthorizeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SocialAuthorizeReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewSocialAuthorizeLogic(r.Context(), svcCtx)
		http.Redirect(w, r, l.SocialAuthorizeURL(&req), http.StatusFound)
	}
}

func SocialCallbackHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SocialCallbackReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewSocialCallbackLogic(r.Context(), svcCtx)
		lc := loginContext(r)
		lc.App = req.App
		resp, err := l.SocialCallback(&req, lc)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			writeLoginResp(w, r, svcCtx, resp)
		}
	}
}

func RefreshHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RefreshReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewRefreshLogic(r.Context(), svcCtx)
		resp, err := l.Refresh(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

// LogoutHandler revokes the presented refresh token and clears the SSO cookie;
// the cookie belongs to the HTTP surface, so the handler owns both writes.
func LogoutHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.LogoutReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewLogoutLogic(r.Context(), svcCtx)
		if err := l.Logout(&req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		clearSSOSessionCookie(w, svcCtx)
		httpx.Ok(w)
	}
}

func LogoutAllHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			httpx.ErrorCtx(r.Context(), w, errMissingIdentity)
			return
		}

		l := auth.NewLogoutAllLogic(r.Context(), svcCtx)
		resp, err := l.LogoutAll(userID)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		clearSSOSessionCookie(w, svcCtx)
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
