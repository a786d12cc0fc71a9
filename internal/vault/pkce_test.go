package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Verifier/challenge pair from RFC 7636 appendix B.
const (
	rfcVerifier  = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	rfcChallenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
)

func TestVerifyPKCE_S256(t *testing.T) {
	assert.True(t, VerifyPKCE(PKCES256, rfcVerifier, rfcChallenge))
	assert.False(t, VerifyPKCE(PKCES256, rfcVerifier+"x", rfcChallenge))
	assert.False(t, VerifyPKCE(PKCES256, "", rfcChallenge))
}

func TestVerifyPKCE_Plain(t *testing.T) {
	assert.True(t, VerifyPKCE(PKCEPlain, "some-verifier", "some-verifier"))
	assert.False(t, VerifyPKCE(PKCEPlain, "some-verifier", "other"))

	// plain never applies the S256 transform.
	assert.False(t, VerifyPKCE(PKCEPlain, rfcVerifier, rfcChallenge))
}

func TestVerifyPKCE_UnknownMethod(t *testing.T) {
	assert.False(t, VerifyPKCE(PKCEMethod("S512"), rfcVerifier, rfcChallenge))
	assert.False(t, VerifyPKCE(PKCEMethod(""), "v", "v"))
}
