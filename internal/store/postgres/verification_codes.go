package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uniauth/uniauth/internal/model"
)

// InsertVerificationCode persists a freshly issued code.
func (s *Store) InsertVerificationCode(ctx context.Context, target string, typ model.VerificationCodeType, codeHash string, ttl time.Duration) (*model.VerificationCode, error) {
	const q = `INSERT INTO verification_codes (id, target, code_hash, type, expires_at, attempts, used, created_at)
		VALUES ($1,$2,$3,$4,$5,0,false,now())
		RETURNING id, target, code_hash, type, expires_at, attempts, used, created_at`
	var vc model.VerificationCode
	id := uuid.New()
	if err := s.db.GetContext(ctx, &vc, q, id, target, codeHash, typ, time.Now().Add(ttl)); err != nil {
		return nil, fmt.Errorf("postgres: insert verification code: %w", err)
	}
	return &vc, nil
}

// VerifyResult reports the outcome of ConsumeVerificationCode.
type VerifyResult string

const (
	VerifyOK              VerifyResult = "ok"
	VerifyExpired         VerifyResult = "expired"
	VerifyInvalid         VerifyResult = "invalid"
	VerifyTooManyAttempts VerifyResult = "too_many_attempts"
	VerifyNotFound        VerifyResult = "not_found"
)

// ConsumeVerificationCode runs the whole verify step in one transaction:
// select the most recent unused, unexpired row for target, atomically
// increment attempts, burn the row on either a 5th failed attempt or a match,
// using `UPDATE ... WHERE id=? AND used=false RETURNING *` so two concurrent
// callers can never both succeed against the same row.
func (s *Store) ConsumeVerificationCode(ctx context.Context, target string, typ model.VerificationCodeType, codeHash string) (VerifyResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	const selectQ = `SELECT id, target, code_hash, type, expires_at, attempts, used, created_at
		FROM verification_codes
		WHERE target = $1 AND type = $2 AND used = false
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE`
	var vc model.VerificationCode
	if err := tx.GetContext(ctx, &vc, selectQ, target, typ); err != nil {
		if err == sql.ErrNoRows {
			return VerifyNotFound, nil
		}
		return "", fmt.Errorf("postgres: select verification code: %w", err)
	}

	if vc.ExpiresAt.Before(time.Now()) {
		return VerifyExpired, tx.Commit()
	}
	if vc.Attempts >= model.MaxVerificationAttempts {
		return VerifyTooManyAttempts, tx.Commit()
	}

	match := vc.CodeHash == codeHash
	newAttempts := vc.Attempts + 1
	burn := match || newAttempts >= model.MaxVerificationAttempts

	const updateQ = `UPDATE verification_codes SET attempts = $2, used = $3
		WHERE id = $1 AND used = false
		RETURNING id`
	var returnedID uuid.UUID
	if err := tx.GetContext(ctx, &returnedID, updateQ, vc.ID, newAttempts, burn); err != nil {
		if err == sql.ErrNoRows {
			// Another transaction already consumed/burned this row first.
			return VerifyInvalid, tx.Commit()
		}
		return "", fmt.Errorf("postgres: update verification code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("postgres: commit verification code: %w", err)
	}

	if !match {
		if newAttempts >= model.MaxVerificationAttempts {
			return VerifyTooManyAttempts, nil
		}
		return VerifyInvalid, nil
	}
	return VerifyOK, nil
}
