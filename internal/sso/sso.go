// Package sso manages centralized browser sessions shared across registered
// applications, enabling silent re-authorization.
package sso

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/store/postgres"
	"github.com/uniauth/uniauth/internal/vault"
)

type Store struct {
	db *postgres.Store
}

func New(db *postgres.Store) *Store {
	return &Store{db: db}
}

// CreateOpts carries the request-scoped options for Create.
type CreateOpts struct {
	RememberMe bool
	IP         string
	UserAgent  string
}

// Create issues a new session already joined to app, returning the raw token
// to hand back as the uniauth_sso_session cookie value.
func (s *Store) Create(ctx context.Context, userID uuid.UUID, app string, opts CreateOpts) (raw string, sess *model.SSOSession, err error) {
	raw, hash, err := vault.GenerateSSOSessionToken()
	if err != nil {
		return "", nil, fmt.Errorf("sso: generate token: %w", err)
	}
	ttl := model.SSOSessionTTLDefault
	if opts.RememberMe {
		ttl = model.SSOSessionTTLRememberMe
	}
	sess = &model.SSOSession{
		TokenHash: hash,
		UserID:    userID,
		Apps:      []string{app},
		ExpiresAt: time.Now().Add(ttl),
	}
	if opts.IP != "" {
		sess.IP = &opts.IP
	}
	if opts.UserAgent != "" {
		sess.UserAgent = &opts.UserAgent
	}
	if err := s.db.CreateSSOSession(ctx, sess); err != nil {
		return "", nil, err
	}
	return raw, sess, nil
}

// Resolve looks up a session by its raw cookie value. Constant-time lookup is
// achieved by hashing the presented token before querying — the comparison
// itself happens as an indexed equality match in Postgres, never branching on
// partial matches of the raw value.
func (s *Store) Resolve(ctx context.Context, raw string) (*model.SSOSession, error) {
	return s.db.GetSSOSessionByHash(ctx, vault.HashOpaque(raw))
}

// Join idempotently adds app to the session's set.
func (s *Store) Join(ctx context.Context, sessionID uuid.UUID, app string) error {
	return s.db.JoinSSOSession(ctx, sessionID, app)
}

// LogoutAll deletes every session for user, returning the informational count.
func (s *Store) LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.db.LogoutAllSSOSessions(ctx, userID)
}

func (s *Store) List(ctx context.Context, userID uuid.UUID) ([]*model.SSOSession, error) {
	return s.db.ListSSOSessions(ctx, userID)
}

func (s *Store) DeleteForUser(ctx context.Context, userID, sessionID uuid.UUID) error {
	return s.db.DeleteSSOSessionForUser(ctx, userID, sessionID)
}

// RunSweeper removes expired sessions on a periodic cadence until ctx is
// cancelled. Started as an
// explicit goroutine from cmd/uniauth's composition root rather than hidden
// behind package init().
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.db.SweepExpiredSSOSessions(ctx); err != nil {
				logx.WithContext(ctx).Errorf("sso: sweep failed: %v", err)
			} else if n > 0 {
				logx.WithContext(ctx).Infof("sso: swept %d expired sessions", n)
			}
		}
	}
}
