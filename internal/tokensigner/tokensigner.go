// Package tokensigner implements RS256 sign/verify of access and ID tokens
// against a rotating key set, plus a JWKS view of the public half of that
// set.
package tokensigner

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeyPair is one entry in the signer's key ring. Retired keys keep Private
// nil but remain present so Verify can still validate tokens signed before
// rotation, for the remaining natural lifetime of those tokens.
type KeyPair struct {
	KID     string
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// Config configures the signer.
type Config struct {
	Issuer   string
	Audience []string
}

// Signer holds an ordered list of signing key pairs (current + recent) and signs
// with the newest one while verifying against the whole ring.
type Signer struct {
	cfg  Config
	keys []KeyPair // keys[0] is current
}

func New(cfg Config, keys []KeyPair) (*Signer, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("tokensigner: at least one key pair is required")
	}
	if keys[0].Private == nil {
		return nil, fmt.Errorf("tokensigner: current key (keys[0]) must carry a private key")
	}
	return &Signer{cfg: cfg, keys: keys}, nil
}

// Claims is the registered claim set, plus the OIDC profile claims and an
// open-ended custom-claims map for ID tokens.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
	Azp   string `json:"azp,omitempty"`

	// OIDC profile claims (present only when scope contains "openid").
	Email         string `json:"email,omitempty"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	PhoneVerified *bool  `json:"phone_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Nonce         string `json:"nonce,omitempty"`
	AuthTime      int64  `json:"auth_time,omitempty"`

	Custom map[string]any `json:"-"`
}

// currentKey returns the signing key, which is always keys[0].
func (s *Signer) currentKey() KeyPair { return s.keys[0] }

func (s *Signer) findKey(kid string) (KeyPair, bool) {
	for _, k := range s.keys {
		if k.KID == kid {
			return k, true
		}
	}
	return KeyPair{}, false
}

// Sign produces a compact RS256 JWS for the given claims, subject, single
// audience, and TTL. Custom claims are merged last and can never displace a
// registered or profile claim.
func (s *Signer) Sign(c Claims, subject, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	c.RegisteredClaims.Issuer = s.cfg.Issuer
	c.RegisteredClaims.Subject = subject
	if audience != "" {
		c.RegisteredClaims.Audience = jwt.ClaimStrings{audience}
	}
	c.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	c.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, toMapClaims(c))
	key := s.currentKey()
	token.Header["kid"] = key.KID
	return token.SignedString(key.Private)
}

// toMapClaims flattens Claims (including the Custom map) into jwt.MapClaims
// so custom claims ride alongside the registered/profile ones in the same
// object. Registered and profile claims win every key conflict.
func toMapClaims(c Claims) jwt.MapClaims {
	m := jwt.MapClaims{
		"iss": c.Issuer,
		"sub": c.Subject,
		"iat": c.IssuedAt.Unix(),
		"exp": c.ExpiresAt.Unix(),
	}
	if len(c.Audience) > 0 {
		m["aud"] = c.Audience[0]
	}
	if c.Scope != "" {
		m["scope"] = c.Scope
	}
	if c.Azp != "" {
		m["azp"] = c.Azp
	}
	if c.Email != "" {
		m["email"] = c.Email
	}
	if c.EmailVerified != nil {
		m["email_verified"] = *c.EmailVerified
	}
	if c.PhoneNumber != "" {
		m["phone_number"] = c.PhoneNumber
	}
	if c.PhoneVerified != nil {
		m["phone_verified"] = *c.PhoneVerified
	}
	if c.Name != "" {
		m["name"] = c.Name
	}
	if c.Picture != "" {
		m["picture"] = c.Picture
	}
	if c.Nonce != "" {
		m["nonce"] = c.Nonce
	}
	if c.AuthTime != 0 {
		m["auth_time"] = c.AuthTime
	}
	for k, v := range c.Custom {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
	return m
}

// Verify parses and validates token, optionally checking it carries
// expectedAudience, and returns the decoded claims. Any key in the ring,
// current or retired, may have produced the token.
func (s *Signer) Verify(token string, expectedAudience string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != "RS256" {
			return nil, fmt.Errorf("tokensigner: unexpected signing algorithm %q", t.Method.Alg())
		}
		kid, _ := t.Header["kid"].(string)
		key, ok := s.findKey(kid)
		if !ok {
			return nil, fmt.Errorf("tokensigner: unknown key id %q", kid)
		}
		return key.Public, nil
	})
	if err != nil {
		return nil, fmt.Errorf("tokensigner: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("tokensigner: invalid token")
	}
	if expectedAudience != "" {
		aud, _ := claims["aud"].(string)
		if aud != expectedAudience {
			return nil, fmt.Errorf("tokensigner: audience mismatch")
		}
	}
	return claims, nil
}

// Issuer exposes the configured issuer for discovery-document construction.
func (s *Signer) Issuer() string { return s.cfg.Issuer }

// PublicKey returns the ring key with the given kid, for callers that verify
// outside this package (e.g. the legacy-token fallback in internal/middleware).
func (s *Signer) PublicKey(kid string) (*rsa.PublicKey, bool) {
	k, ok := s.findKey(kid)
	if !ok || k.Public == nil {
		return nil, false
	}
	return k.Public, true
}
