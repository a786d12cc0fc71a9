package oauthengine

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/tokensigner"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := tokensigner.New(tokensigner.Config{Issuer: "https://auth.test/api/v1"},
		[]tokensigner.KeyPair{{KID: "test", Private: priv, Public: &priv.PublicKey}})
	require.NoError(t, err)
	return New(Config{Signer: signer, AccessTokenTTL: 15 * time.Minute})
}

func TestLoginRedirect_PropagatesEveryParameter(t *testing.T) {
	redirect := loginRedirect(AuthorizeRequest{
		ClientID:            "client-b",
		RedirectURI:         "https://b.example.com/cb",
		ResponseType:        "code",
		Scope:               "openid profile",
		State:               "xyz",
		CodeChallenge:       "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		CodeChallengeMethod: "S256",
		Nonce:               "n-0S6_WzA2Mj",
	})

	u, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "/login", u.Path)
	q := u.Query()
	assert.Equal(t, "client-b", q.Get("client_id"))
	assert.Equal(t, "https://b.example.com/cb", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid profile", q.Get("scope"))
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "n-0S6_WzA2Mj", q.Get("nonce"))
}

func TestLoginRedirect_OmitsEmptyOptionals(t *testing.T) {
	redirect := loginRedirect(AuthorizeRequest{
		ClientID: "c", RedirectURI: "https://a.example.com/cb", ResponseType: "code",
	})
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	q := u.Query()
	assert.False(t, q.Has("scope"))
	assert.False(t, q.Has("state"))
	assert.False(t, q.Has("code_challenge"))
	assert.False(t, q.Has("nonce"))
}

func TestAppendQuery(t *testing.T) {
	out := appendQuery("https://app.example.com/cb", url.Values{"code": {"abc"}, "state": {"xyz"}})
	u, err := url.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "abc", u.Query().Get("code"))
	assert.Equal(t, "xyz", u.Query().Get("state"))

	// Pre-existing query parameters survive.
	out = appendQuery("https://app.example.com/cb?keep=1", url.Values{"code": {"abc"}})
	u, err = url.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "1", u.Query().Get("keep"))
	assert.Equal(t, "abc", u.Query().Get("code"))
}

func TestScopeContains(t *testing.T) {
	assert.True(t, scopeContains("openid profile email", "openid"))
	assert.True(t, scopeContains("openid", "openid"))
	assert.False(t, scopeContains("profile email", "openid"))
	assert.False(t, scopeContains("", "openid"))
	// Substrings never match whole scopes.
	assert.False(t, scopeContains("openid-extra", "openid"))
}

func TestRequireScopeSubset(t *testing.T) {
	app := &model.Application{AllowedScopes: []string{"read:users", "write:users"}}
	assert.NoError(t, requireScopeSubset(app, "read:users"))
	assert.NoError(t, requireScopeSubset(app, "read:users write:users"))
	assert.NoError(t, requireScopeSubset(app, ""))
	assert.Error(t, requireScopeSubset(app, "read:users delete:users"))
}

func TestDiscoveryDocument(t *testing.T) {
	e := testEngine(t)
	d := e.Discovery("https://auth.test/api/v1")

	assert.Equal(t, "https://auth.test/api/v1", d.Issuer)
	assert.Equal(t, "https://auth.test/api/v1/oauth2/authorize", d.AuthorizationEndpoint)
	assert.Equal(t, "https://auth.test/api/v1/oauth2/token", d.TokenEndpoint)
	assert.Equal(t, "https://auth.test/api/v1/oauth2/userinfo", d.UserinfoEndpoint)
	assert.Equal(t, "https://auth.test/api/v1/.well-known/jwks.json", d.JWKSURI)
	assert.Equal(t, []string{"code"}, d.ResponseTypesSupported)
	assert.Equal(t, []string{"authorization_code", "refresh_token", "client_credentials"}, d.GrantTypesSupported)
	assert.Equal(t, []string{"public"}, d.SubjectTypesSupported)
	assert.Equal(t, []string{"RS256"}, d.IDTokenSigningAlgValuesSupported)
	assert.Equal(t, []string{"openid", "profile", "email", "phone"}, d.ScopesSupported)
	assert.Equal(t, []string{"S256", "plain"}, d.CodeChallengeMethodsSupported)
	assert.Contains(t, d.ClaimsSupported, "email_verified")
	assert.Contains(t, d.ClaimsSupported, "auth_time")
}

func TestIntrospect_ValidToken(t *testing.T) {
	e := testEngine(t)
	token, err := e.signer.Sign(tokensigner.Claims{Scope: "read:users", Azp: "m2m-client"},
		"m2m-client", e.signer.Issuer(), 15*time.Minute)
	require.NoError(t, err)

	resp := e.Introspect(context.Background(), token)
	assert.True(t, resp.Active)
	assert.Equal(t, "read:users", resp.Scope)
	assert.Equal(t, "m2m-client", resp.ClientID)
	assert.Equal(t, "m2m-client", resp.Sub)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "https://auth.test/api/v1", resp.Iss)
	assert.Greater(t, resp.Exp, resp.Iat)
}

func TestIntrospect_InvalidToken(t *testing.T) {
	e := testEngine(t)

	resp := e.Introspect(context.Background(), "not-a-jws")
	assert.False(t, resp.Active)
	assert.Empty(t, resp.Sub)

	expired, err := e.signer.Sign(tokensigner.Claims{}, "user-1", "", -time.Minute)
	require.NoError(t, err)
	resp = e.Introspect(context.Background(), expired)
	assert.False(t, resp.Active)
}

func TestValidate(t *testing.T) {
	e := testEngine(t)
	token, err := e.signer.Sign(tokensigner.Claims{}, "user-42", "", time.Hour)
	require.NoError(t, err)

	valid, sub := e.Validate(context.Background(), token)
	assert.True(t, valid)
	assert.Equal(t, "user-42", sub)

	valid, sub = e.Validate(context.Background(), "garbage")
	assert.False(t, valid)
	assert.Empty(t, sub)
}

func TestUserInfo(t *testing.T) {
	e := testEngine(t)
	verified := true
	token, err := e.signer.Sign(tokensigner.Claims{
		Email: "u@example.com", EmailVerified: &verified, Name: "U",
	}, "user-7", "", time.Hour)
	require.NoError(t, err)

	claims, err := e.UserInfo(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims["sub"])
	assert.Equal(t, "u@example.com", claims["email"])
	assert.Equal(t, true, claims["email_verified"])
	assert.Equal(t, "U", claims["name"])
	// Claims the token does not carry are absent, not empty.
	assert.NotContains(t, claims, "phone_number")

	_, err = e.UserInfo(context.Background(), "bad-token")
	assert.Error(t, err)
}
