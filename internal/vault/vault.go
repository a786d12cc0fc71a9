// Package vault handles generation, hashing, and verification of refresh
// tokens, authorization codes, client secrets, PKCE challenges, and
// passwords.
//
// Opaque values come from crypto/rand, URL-safe base64 encoded, with only a
// SHA-256 hash persisted at rest. Password and client-secret hashing is
// bcrypt (golang.org/x/crypto).
package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GenerateRefreshToken returns the raw 256-bit token handed to the caller and
// the SHA-256 hash persisted at rest
func GenerateRefreshToken() (raw string, hash string, err error) {
	return generateOpaque(32)
}

// GenerateAuthorizationCode returns a random 128-bit opaque code and its hash.
func GenerateAuthorizationCode() (raw string, hash string, err error) {
	return generateOpaque(16)
}

// GenerateSSOSessionToken returns a random 64-byte session token and its
// hash.
func GenerateSSOSessionToken() (raw string, hash string, err error) {
	return generateOpaque(64)
}

func generateOpaque(nBytes int) (raw string, hash string, err error) {
	buf := make([]byte, nBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("vault: generate random bytes: %w", err)
	}
	raw = base64.RawURLEncoding.EncodeToString(buf)
	hash = HashOpaque(raw)
	return raw, hash, nil
}

// HashOpaque returns the hex-encoded SHA-256 hash of a raw opaque token, used
// to look up refresh tokens, authorization codes, and SSO session tokens by
// their stored hash without ever persisting the raw value.
func HashOpaque(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// GenerateClientSecret returns a raw client secret and its bcrypt hash, issued
// at application-creation time.
func GenerateClientSecret() (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("vault: generate client secret: %w", err)
	}
	raw = base64.RawURLEncoding.EncodeToString(buf)
	hash, err = HashPassword(raw)
	if err != nil {
		return "", "", err
	}
	return raw, hash, nil
}

// HashPassword and CheckPasswordHash wrap a bcrypt-backed,
// per-password-salted hash.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("vault: hash password: %w", err)
	}
	return string(b), nil
}

func CheckPasswordHash(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// VerifyClientSecret checks a presented secret against its stored hash;
// bcrypt's own comparison is constant-time over the hash.
func VerifyClientSecret(plain, hash string) bool {
	return CheckPasswordHash(plain, hash)
}

// ConstantTimeEqual is used for credential comparisons that are not
// bcrypt-backed (e.g. the plain PKCE challenge comparison).
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
