package middleware

import (
	"fmt"

	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/uniauth/uniauth/internal/tokensigner"
)

// resolveLegacyV4Bearer accepts tokens minted before the current release,
// which shipped with the older jwt/v4 claim shape: the subject rides a "uid"
// claim instead of the registered "sub". Signatures are still RS256 against
// the same key ring, so the keyfunc resolves kid through the signer. Called
// by resolveBearer only after the current-shape path failed; once the last
// pre-rotation token expires this path goes dead and can be removed.
func resolveLegacyV4Bearer(token string, signer *tokensigner.Signer) (uuid.UUID, bool) {
	parsed, err := jwtv4.Parse(token, func(t *jwtv4.Token) (interface{}, error) {
		if t.Method.Alg() != "RS256" {
			return nil, fmt.Errorf("middleware: unexpected signing algorithm %q", t.Method.Alg())
		}
		kid, _ := t.Header["kid"].(string)
		key, ok := signer.PublicKey(kid)
		if !ok {
			return nil, fmt.Errorf("middleware: unknown key id %q", kid)
		}
		return key, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, false
	}
	claims, ok := parsed.Claims.(jwtv4.MapClaims)
	if !ok {
		return uuid.Nil, false
	}
	uid, _ := claims["uid"].(string)
	userID, err := uuid.Parse(uid)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
