package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/uniauth/uniauth/internal/model"
)

type ssoSessionRow struct {
	ID           uuid.UUID      `db:"id"`
	TokenHash    string         `db:"token_hash"`
	UserID       uuid.UUID      `db:"user_id"`
	Apps         pq.StringArray `db:"apps"`
	CreatedAt    time.Time      `db:"created_at"`
	ExpiresAt    time.Time      `db:"expires_at"`
	LastActivity time.Time      `db:"last_activity"`
	IP           *string        `db:"ip"`
	UserAgent    *string        `db:"user_agent"`
}

func (r ssoSessionRow) toModel() *model.SSOSession {
	return &model.SSOSession{
		ID: r.ID, TokenHash: r.TokenHash, UserID: r.UserID, Apps: []string(r.Apps),
		CreatedAt: r.CreatedAt, ExpiresAt: r.ExpiresAt, LastActivity: r.LastActivity,
		IP: r.IP, UserAgent: r.UserAgent,
	}
}

const ssoSessionCols = `id, token_hash, user_id, apps, created_at, expires_at, last_activity, ip, user_agent`

func (s *Store) CreateSSOSession(ctx context.Context, sess *model.SSOSession) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	const q = `INSERT INTO sso_sessions (id, token_hash, user_id, apps, created_at, expires_at,
		last_activity, ip, user_agent)
		VALUES ($1,$2,$3,$4,now(),$5,now(),$6,$7)`
	_, err := s.db.ExecContext(ctx, q, sess.ID, sess.TokenHash, sess.UserID, pq.StringArray(sess.Apps),
		sess.ExpiresAt, sess.IP, sess.UserAgent)
	if err != nil {
		return fmt.Errorf("postgres: create sso session: %w", err)
	}
	return nil
}

// GetSSOSessionByHash returns the session and, if it is still valid, advances
// last_activity. An expired session is deleted and nil is returned.
func (s *Store) GetSSOSessionByHash(ctx context.Context, tokenHash string) (*model.SSOSession, error) {
	const q = `SELECT ` + ssoSessionCols + ` FROM sso_sessions WHERE token_hash = $1`
	var row ssoSessionRow
	if err := withReadRetry(ctx, func() error {
		return s.db.GetContext(ctx, &row, q, tokenHash)
	}); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: get sso session: %w", err)
	}
	sess := row.toModel()
	if !sess.Valid(time.Now()) {
		_ = s.DeleteSSOSession(ctx, sess.ID)
		return nil, nil
	}
	const touchQ = `UPDATE sso_sessions SET last_activity = now() WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, touchQ, sess.ID); err != nil {
		return nil, fmt.Errorf("postgres: touch sso session: %w", err)
	}
	return sess, nil
}

// JoinSSOSession performs an idempotent set-union addition: concurrent joins
// may produce one or two writes but the final
// apps set always contains the union, because array_append+DISTINCT is
// computed server-side under the row's implicit update lock.
func (s *Store) JoinSSOSession(ctx context.Context, sessionID uuid.UUID, app string) error {
	const q = `UPDATE sso_sessions
		SET apps = ARRAY(SELECT DISTINCT unnest(apps || ARRAY[$2::text]))
		WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, sessionID, app); err != nil {
		return fmt.Errorf("postgres: join sso session: %w", err)
	}
	return nil
}

func (s *Store) DeleteSSOSession(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM sso_sessions WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("postgres: delete sso session: %w", err)
	}
	return nil
}

// LogoutAllSSOSessions deletes every session owned by userID, returning the
// informational count.
func (s *Store) LogoutAllSSOSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	const q = `DELETE FROM sso_sessions WHERE user_id = $1`
	res, err := s.db.ExecContext(ctx, q, userID)
	if err != nil {
		return 0, fmt.Errorf("postgres: logout all sso sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) ListSSOSessions(ctx context.Context, userID uuid.UUID) ([]*model.SSOSession, error) {
	const q = `SELECT ` + ssoSessionCols + ` FROM sso_sessions WHERE user_id = $1 ORDER BY last_activity DESC`
	var rows []ssoSessionRow
	if err := s.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, fmt.Errorf("postgres: list sso sessions: %w", err)
	}
	out := make([]*model.SSOSession, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) DeleteSSOSessionForUser(ctx context.Context, userID, sessionID uuid.UUID) error {
	const q = `DELETE FROM sso_sessions WHERE id = $1 AND user_id = $2`
	if _, err := s.db.ExecContext(ctx, q, sessionID, userID); err != nil {
		return fmt.Errorf("postgres: delete user sso session: %w", err)
	}
	return nil
}

// SweepExpiredSSOSessions removes sessions whose expires_at<now, returning
// the count removed.
func (s *Store) SweepExpiredSSOSessions(ctx context.Context) (int64, error) {
	const q = `DELETE FROM sso_sessions WHERE expires_at < now()`
	res, err := s.db.ExecContext(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("postgres: sweep sso sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
