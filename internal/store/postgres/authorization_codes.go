package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uniauth/uniauth/internal/model"
)

func (s *Store) CreateAuthorizationCode(ctx context.Context, ac *model.AuthorizationCode) error {
	if ac.ID == uuid.Nil {
		ac.ID = uuid.New()
	}
	const q = `INSERT INTO authorization_codes (id, code_hash, user_id, client_id, redirect_uri,
		scope, code_challenge, code_challenge_method, nonce, used, expires_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,false,$10,now())`
	_, err := s.db.ExecContext(ctx, q, ac.ID, ac.CodeHash, ac.UserID, ac.ClientID, ac.RedirectURI,
		ac.Scope, ac.CodeChallenge, ac.CodeChallengeMethod, ac.Nonce, time.Now().Add(model.AuthorizationCodeTTL))
	if err != nil {
		return fmt.Errorf("postgres: create authorization code: %w", err)
	}
	return nil
}

// RedeemAuthorizationCode performs single-use redemption:
// `UPDATE ... WHERE used=false RETURNING *` inside one transaction, so a
// second redemption of the same code always fails with invalid_grant,
// regardless of timing.
func (s *Store) RedeemAuthorizationCode(ctx context.Context, codeHash string) (*model.AuthorizationCode, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	const q = `UPDATE authorization_codes SET used = true
		WHERE code_hash = $1 AND used = false
		RETURNING id, code_hash, user_id, client_id, redirect_uri, scope, code_challenge,
		code_challenge_method, nonce, used, expires_at, created_at`
	var ac model.AuthorizationCode
	if err := tx.GetContext(ctx, &ac, q, codeHash); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("postgres: redeem authorization code: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("postgres: commit redemption: %w", err)
	}
	return &ac, nil
}
