package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	body := []byte(`{"event":"user.created","data":{"user_id":"u1"}}`)
	secret := "s"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, sign(secret, body))
}

// Any single-byte mutation of the body must change the signature, so
// receivers comparing HMACs reject tampered payloads.
func TestSign_BodyMutationChangesSignature(t *testing.T) {
	secret := "webhook-secret"
	body := []byte(`{"event":"user.login","delivery_id":"d1","data":{},"timestamp":1754000000}`)
	original := sign(secret, body)

	for i := range body {
		mutated := make([]byte, len(body))
		copy(mutated, body)
		mutated[i] ^= 0x01
		assert.NotEqual(t, original, sign(secret, mutated), "byte %d", i)
	}
}

func TestSign_SecretBound(t *testing.T) {
	body := []byte(`{"event":"user.login"}`)
	assert.NotEqual(t, sign("secret-a", body), sign("secret-b", body))
}

func TestPayloadShape(t *testing.T) {
	p := Payload{
		Event:      "user.login",
		DeliveryID: "11111111-1111-1111-1111-111111111111",
		Data:       map[string]any{"user_id": "u1"},
		Timestamp:  1754000000,
	}
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "user.login", decoded["event"])
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", decoded["delivery_id"])
	assert.Equal(t, float64(1754000000), decoded["timestamp"])
	assert.Contains(t, decoded, "data")
}
