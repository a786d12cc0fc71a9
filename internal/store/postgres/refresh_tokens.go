package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/uniauth/uniauth/internal/model"
)

const refreshTokenCols = `id, token_hash, user_id, client_id, scope, device_fingerprint,
	ip, expires_at, revoked, rotated_from_id, family_id, created_at`

// CreateRefreshToken persists a brand-new token (not a rotation), starting a
// fresh family. Used by login flows and the authorization_code grant.
func (s *Store) CreateRefreshToken(ctx context.Context, rt *model.RefreshToken) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	if rt.FamilyID == uuid.Nil {
		rt.FamilyID = rt.ID
	}
	const q = `INSERT INTO refresh_tokens (id, token_hash, user_id, client_id, scope,
		device_fingerprint, ip, expires_at, revoked, family_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,false,$9,now())`
	_, err := s.db.ExecContext(ctx, q, rt.ID, rt.TokenHash, rt.UserID, rt.ClientID, rt.Scope,
		rt.DeviceFingerprint, rt.IP, rt.ExpiresAt, rt.FamilyID)
	if err != nil {
		return fmt.Errorf("postgres: create refresh token: %w", err)
	}
	return nil
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	const q = `SELECT ` + refreshTokenCols + ` FROM refresh_tokens WHERE token_hash = $1`
	var rt model.RefreshToken
	if err := withReadRetry(ctx, func() error {
		return s.db.GetContext(ctx, &rt, q, tokenHash)
	}); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: get refresh token: %w", err)
	}
	return &rt, nil
}

// RotateRefreshToken revokes the consumed token in the same transaction that
// issues its replacement. If oldTokenHash is already revoked, the whole
// family is revoked (suspected replay) and replayed=true is returned.
func (s *Store) RotateRefreshToken(ctx context.Context, oldTokenHash string, next *model.RefreshToken) (replayed bool, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	const selectQ = `SELECT ` + refreshTokenCols + ` FROM refresh_tokens WHERE token_hash = $1 FOR UPDATE`
	var old model.RefreshToken
	if err := tx.GetContext(ctx, &old, selectQ, oldTokenHash); err != nil {
		if err == sql.ErrNoRows {
			return false, sql.ErrNoRows
		}
		return false, fmt.Errorf("postgres: select refresh token: %w", err)
	}

	if old.Revoked {
		const revokeFamilyQ = `UPDATE refresh_tokens SET revoked = true WHERE family_id = $1 AND revoked = false`
		if _, err := tx.ExecContext(ctx, revokeFamilyQ, old.FamilyID); err != nil {
			return false, fmt.Errorf("postgres: revoke token family: %w", err)
		}
		return true, tx.Commit()
	}

	const revokeQ = `UPDATE refresh_tokens SET revoked = true WHERE id = $1 AND revoked = false`
	res, err := tx.ExecContext(ctx, revokeQ, old.ID)
	if err != nil {
		return false, fmt.Errorf("postgres: revoke old refresh token: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Lost the race with a concurrent rotation/revocation of this exact row.
		return false, sql.ErrNoRows
	}

	if next.ID == uuid.Nil {
		next.ID = uuid.New()
	}
	next.FamilyID = old.FamilyID
	next.RotatedFromID = &old.ID
	const insertQ = `INSERT INTO refresh_tokens (id, token_hash, user_id, client_id, scope,
		device_fingerprint, ip, expires_at, revoked, rotated_from_id, family_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,false,$9,$10,now())`
	_, err = tx.ExecContext(ctx, insertQ, next.ID, next.TokenHash, next.UserID, next.ClientID,
		next.Scope, next.DeviceFingerprint, next.IP, next.ExpiresAt, next.RotatedFromID, next.FamilyID)
	if err != nil {
		return false, fmt.Errorf("postgres: insert rotated refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("postgres: commit rotation: %w", err)
	}
	return false, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	const q = `UPDATE refresh_tokens SET revoked = true WHERE token_hash = $1`
	if _, err := s.db.ExecContext(ctx, q, tokenHash); err != nil {
		return fmt.Errorf("postgres: revoke refresh token: %w", err)
	}
	return nil
}

func (s *Store) RevokeAllRefreshTokensForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const q = `UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND revoked = false`
	res, err := s.db.ExecContext(ctx, q, userID)
	if err != nil {
		return 0, fmt.Errorf("postgres: revoke all refresh tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) ListAuthorizedApplications(ctx context.Context, userID uuid.UUID) ([]string, error) {
	const q = `SELECT DISTINCT client_id FROM refresh_tokens
		WHERE user_id = $1 AND revoked = false AND expires_at > now() AND client_id IS NOT NULL`
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, q, userID); err != nil {
		return nil, fmt.Errorf("postgres: list authorized applications: %w", err)
	}
	return ids, nil
}

func (s *Store) RevokeRefreshTokensForUserApp(ctx context.Context, userID uuid.UUID, clientID string) error {
	const q = `UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND client_id = $2 AND revoked = false`
	if _, err := s.db.ExecContext(ctx, q, userID, clientID); err != nil {
		return fmt.Errorf("postgres: revoke app refresh tokens: %w", err)
	}
	return nil
}
