package tokensigner

import (
	"encoding/base64"
	"math/big"
)

// JWK is one entry of the public JWKS document (RFC 7517, RSA key type).
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKS is the document served from /.well-known/jwks.json.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// PublicJWKS publishes every key in the ring (current and retired) so resource
// servers can verify tokens signed before the most recent rotation.
func (s *Signer) PublicJWKS() JWKS {
	out := JWKS{Keys: make([]JWK, 0, len(s.keys))}
	for _, k := range s.keys {
		if k.Public == nil {
			continue
		}
		out.Keys = append(out.Keys, JWK{
			Kty: "RSA",
			Use: "sig",
			Alg: "RS256",
			Kid: k.KID,
			N:   base64.RawURLEncoding.EncodeToString(k.Public.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(bigIntToBytes(k.Public.E)),
		})
	}
	return out
}

func bigIntToBytes(e int) []byte {
	return new(big.Int).SetInt64(int64(e)).Bytes()
}
