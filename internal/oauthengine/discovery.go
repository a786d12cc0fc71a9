package oauthengine

import "github.com/uniauth/uniauth/internal/tokensigner"

// Discovery is the OIDC discovery document.
type Discovery struct {
	Issuer                           string   `json:"issuer"`
	AuthorizationEndpoint            string   `json:"authorization_endpoint"`
	TokenEndpoint                    string   `json:"token_endpoint"`
	UserinfoEndpoint                 string   `json:"userinfo_endpoint"`
	JWKSURI                          string   `json:"jwks_uri"`
	ResponseTypesSupported           []string `json:"response_types_supported"`
	GrantTypesSupported              []string `json:"grant_types_supported"`
	SubjectTypesSupported            []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported []string `json:"id_token_signing_alg_values_supported"`
	ScopesSupported                  []string `json:"scopes_supported"`
	ClaimsSupported                  []string `json:"claims_supported"`
	CodeChallengeMethodsSupported    []string `json:"code_challenge_methods_supported"`
}

var claimsSupported = []string{
	"sub", "email", "email_verified", "phone_number", "phone_verified",
	"name", "picture", "nonce", "auth_time",
}

// Discovery builds the document advertised at
// /.well-known/openid-configuration, rooted at baseURL (e.g.
// "https://auth.example.com/api/v1").
func (e *Engine) Discovery(baseURL string) Discovery {
	return Discovery{
		Issuer:                           e.signer.Issuer(),
		AuthorizationEndpoint:            baseURL + "/oauth2/authorize",
		TokenEndpoint:                    baseURL + "/oauth2/token",
		UserinfoEndpoint:                 baseURL + "/oauth2/userinfo",
		JWKSURI:                          baseURL + "/.well-known/jwks.json",
		ResponseTypesSupported:           []string{"code"},
		GrantTypesSupported:              []string{GrantAuthorizationCode, GrantRefreshToken, GrantClientCredentials},
		SubjectTypesSupported:            []string{"public"},
		IDTokenSigningAlgValuesSupported: []string{"RS256"},
		ScopesSupported:                  supportedScopes,
		ClaimsSupported:                  claimsSupported,
		CodeChallengeMethodsSupported:    []string{"S256", "plain"},
	}
}

// JWKS passes through the Token Signer's published key set.
func (e *Engine) JWKS() tokensigner.JWKS {
	return e.signer.PublicJWKS()
}
