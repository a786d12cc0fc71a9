package tokensigner

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadKeyRing reads an ordered list of PEM files (current key first) into a
// key ring for New. Keys may be PKCS1 or PKCS8 encoded.
func LoadKeyRing(paths []string) ([]KeyPair, error) {
	keys := make([]KeyPair, 0, len(paths))
	for _, p := range paths {
		priv, err := loadRSAPrivateKeyFile(p)
		if err != nil {
			return nil, fmt.Errorf("tokensigner: load key %s: %w", p, err)
		}
		keys = append(keys, KeyPair{
			KID:     kidFromPath(p),
			Private: priv,
			Public:  &priv.PublicKey,
		})
	}
	return keys, nil
}

func loadRSAPrivateKeyFile(path string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseRSAPrivateKey(raw)
}

func parseRSAPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("failed to parse PEM block containing the RSA private key")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("expected RSA private key, got %T", key)
	}
	return rsaKey, nil
}

// kidFromPath derives a stable key ID from the PEM file's base name (e.g.
// "2026-01.pem" -> "2026-01"), so rotating the file also rotates the
// advertised kid.
func kidFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
