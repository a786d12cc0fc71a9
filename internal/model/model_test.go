package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplicationIsPublic(t *testing.T) {
	assert.False(t, (&Application{Type: ClientTypeWeb}).IsPublic())
	assert.False(t, (&Application{Type: ClientTypeM2M}).IsPublic())
	assert.True(t, (&Application{Type: ClientTypeSPA}).IsPublic())
	assert.True(t, (&Application{Type: ClientTypeNative}).IsPublic())
}

func TestApplicationRedirectURIExactMatch(t *testing.T) {
	app := &Application{RedirectURIs: []string{"https://app.example.com/callback"}}
	assert.True(t, app.HasRedirectURI("https://app.example.com/callback"))
	assert.False(t, app.HasRedirectURI("https://app.example.com/callback/"))
	assert.False(t, app.HasRedirectURI("https://app.example.com"))
}

func TestSSOSessionValid(t *testing.T) {
	now := time.Now()
	assert.True(t, (&SSOSession{ExpiresAt: now.Add(time.Minute)}).Valid(now))
	assert.False(t, (&SSOSession{ExpiresAt: now}).Valid(now))
	assert.False(t, (&SSOSession{ExpiresAt: now.Add(-time.Minute)}).Valid(now))
}

// The retry schedule is 1, 2, 4, 8, 16 minutes and monotonically non-decreasing.
func TestBackoffMinutes(t *testing.T) {
	want := []time.Duration{
		1 * time.Minute, 2 * time.Minute, 4 * time.Minute, 8 * time.Minute, 16 * time.Minute,
	}
	var prev time.Duration
	for attempt := 1; attempt <= MaxWebhookAttempts; attempt++ {
		got := BackoffMinutes(attempt)
		assert.Equal(t, want[attempt-1], got, "attempt %d", attempt)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
	// Out-of-range input clamps rather than panicking.
	assert.Equal(t, time.Minute, BackoffMinutes(0))
}

func TestWebhookSubscribes(t *testing.T) {
	wh := &Webhook{Events: []string{"user.login", "user.created"}}
	assert.True(t, wh.Subscribes("user.login"))
	assert.False(t, wh.Subscribes("token.issued"))
}
