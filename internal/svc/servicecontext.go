// Package svc is the composition root: build every leaf collaborator here
// and hand handlers a single struct of dependencies.
package svc

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/uniauth/uniauth/internal/audit"
	"github.com/uniauth/uniauth/internal/config"
	"github.com/uniauth/uniauth/internal/developer"
	"github.com/uniauth/uniauth/internal/middleware"
	"github.com/uniauth/uniauth/internal/oauthengine"
	"github.com/uniauth/uniauth/internal/orchestrator"
	"github.com/uniauth/uniauth/internal/ratelimit"
	"github.com/uniauth/uniauth/internal/sso"
	"github.com/uniauth/uniauth/internal/store/postgres"
	"github.com/uniauth/uniauth/internal/tokensigner"
	"github.com/uniauth/uniauth/internal/userservice"
	"github.com/uniauth/uniauth/internal/verification"
	"github.com/uniauth/uniauth/internal/webhook"
)

type ServiceContext struct {
	Config config.Config

	Store  *postgres.Store
	Redis  *redis.Client
	Signer *tokensigner.Signer

	RateLimiter   *ratelimit.Limiter
	Verification  *verification.Engine
	SSO           *sso.Store
	Audit         *audit.Writer
	Webhooks      *webhook.Producer
	WebhookWorker *webhook.Worker

	Orchestrator *orchestrator.Orchestrator
	OAuth        *oauthengine.Engine
	Developer    *developer.Service
	User         *userservice.Service

	RequiredAuth *middleware.RequiredAuthMiddleware
	OptionalAuth *middleware.OptionalAuthMiddleware
}

// Deliverer and Verifiers are supplied by the caller (cmd/uniauth) because
// their concrete implementations (SMS/email gateways, social-provider HTTP
// clients, passkey/TOTP cryptography) live outside this module.
type Collaborators struct {
	Deliverer verification.Deliverer
	Social    orchestrator.SocialVerifier
	TOTP      orchestrator.TOTPVerifier
	Passkey   orchestrator.PasskeyVerifier
}

func NewServiceContext(c config.Config, collab Collaborators) (*ServiceContext, error) {
	store, err := postgres.Connect(postgres.Config{
		Host: c.Postgres.Host, Port: c.Postgres.Port, User: c.Postgres.User,
		Password: c.Postgres.Password, DBName: c.Postgres.DBName, SSLMode: c.Postgres.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("svc: connect postgres: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})

	keys, err := tokensigner.LoadKeyRing(c.Token.KeyPEMPaths)
	if err != nil {
		return nil, fmt.Errorf("svc: load signing keys: %w", err)
	}
	signer, err := tokensigner.New(tokensigner.Config{Issuer: c.Token.Issuer}, keys)
	if err != nil {
		return nil, fmt.Errorf("svc: build signer: %w", err)
	}

	limiter := ratelimit.New(rdb, ratelimit.Config{
		Cooldown:   time.Duration(c.RateLimit.CooldownSeconds) * time.Second,
		DailyQuota: c.RateLimit.DailyQuota,
	})

	ssoStore := sso.New(store)
	auditWriter := audit.New(store)
	webhookProducer := webhook.NewProducer(store)
	webhookWorker := webhook.NewWorker(store)
	devService := developer.New(store)

	if collab.Deliverer == nil {
		return nil, fmt.Errorf("svc: a verification.Deliverer is required")
	}
	verificationEngine := verification.New(store, limiter, collab.Deliverer)
	userService := userservice.New(store, ssoStore, verificationEngine)

	orch := orchestrator.New(orchestrator.Deps{
		Store: store, Signer: signer, SSO: ssoStore, Audit: auditWriter, Webhooks: webhookProducer,
		Social: collab.Social, TOTP: collab.TOTP, Passkey: collab.Passkey,
		AccessTokenTTL: c.Token.AccessTokenTTL, RefreshTokenTTL: c.Token.RefreshTokenTTL,
	})

	oauth := oauthengine.New(oauthengine.Config{
		Store: store, Signer: signer, SSO: ssoStore, Developer: devService, Webhooks: webhookProducer,
		AccessTokenTTL: c.Token.AccessTokenTTL, RefreshTokenTTL: c.Token.RefreshTokenTTL,
	})

	return &ServiceContext{
		Config: c,

		Store:  store,
		Redis:  rdb,
		Signer: signer,

		RateLimiter:   limiter,
		Verification:  verificationEngine,
		SSO:           ssoStore,
		Audit:         auditWriter,
		Webhooks:      webhookProducer,
		WebhookWorker: webhookWorker,

		Orchestrator: orch,
		OAuth:        oauth,
		Developer:    devService,
		User:         userService,

		RequiredAuth: middleware.NewRequiredAuthMiddleware(signer),
		OptionalAuth: middleware.NewOptionalAuthMiddleware(signer),
	}, nil
}
