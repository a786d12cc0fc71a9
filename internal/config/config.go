// Package config defines UniAuth's process configuration: an embedded
// rest.RestConf plus one named sub-struct per concern.
package config

import (
	"time"

	"github.com/zeromicro/go-zero/rest"
)

type Config struct {
	rest.RestConf

	Postgres PostgresConfig
	Redis    RedisConfig

	Token     TokenConfig
	SSO       SSOConfig
	Webhook   WebhookConfig
	RateLimit RateLimitConfig

	// BaseURL roots the discovery document's endpoint URLs, e.g. "https://auth.example.com/api/v1".
	BaseURL string
	// AllowedOrigins is passed to rest.WithCors in cmd/uniauth.
	AllowedOrigins []string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TokenConfig configures the Token Signer's key ring and TTLs. KeyPEMPaths is
// ordered current-first, matching tokensigner.Signer's keys[0]-is-current
// convention.
type TokenConfig struct {
	Issuer          string
	KeyPEMPaths     []string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type SSOConfig struct {
	SweepInterval time.Duration
}

type WebhookConfig struct {
	PollInterval time.Duration
	WorkerCount  int
}

type RateLimitConfig struct {
	CooldownSeconds int
	DailyQuota      int
}
