package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/model"
)

// GetUserByPhone supports the find-or-create login policy.
func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*model.User, error) {
	const q = `SELECT id, phone, phone_verified, email, email_verified, password_hash,
		nickname, avatar_url, status, mfa_enrolled, mfa_secret_hash, created_at, updated_at
		FROM users WHERE phone = $1`
	var u model.User
	var err error
	if readErr := withReadRetry(ctx, func() error {
		err = s.db.GetContext(ctx, &u, q, phone)
		return err
	}); readErr != nil {
		if readErr == sql.ErrNoRows {
			return nil, nil
		}
		logx.WithContext(ctx).Errorf("postgres: get user by phone: %v", readErr)
		return nil, fmt.Errorf("postgres: get user by phone: %w", readErr)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT id, phone, phone_verified, email, email_verified, password_hash,
		nickname, avatar_url, status, mfa_enrolled, mfa_secret_hash, created_at, updated_at
		FROM users WHERE email = $1`
	var u model.User
	if err := withReadRetry(ctx, func() error {
		return s.db.GetContext(ctx, &u, q, email)
	}); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logx.WithContext(ctx).Errorf("postgres: get user by email: %v", err)
		return nil, fmt.Errorf("postgres: get user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT id, phone, phone_verified, email, email_verified, password_hash,
		nickname, avatar_url, status, mfa_enrolled, mfa_secret_hash, created_at, updated_at
		FROM users WHERE id = $1`
	var u model.User
	if err := withReadRetry(ctx, func() error {
		return s.db.GetContext(ctx, &u, q, id)
	}); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logx.WithContext(ctx).Errorf("postgres: get user by id: %v", err)
		return nil, fmt.Errorf("postgres: get user by id: %w", err)
	}
	return &u, nil
}

// CreateUserWithPhone implements the phone branch of the find-or-create
// policy: a first login by code creates the user with phone_verified=true.
func (s *Store) CreateUserWithPhone(ctx context.Context, phone string) (*model.User, error) {
	const q = `INSERT INTO users (id, phone, phone_verified, status, created_at, updated_at)
		VALUES ($1, $2, true, $3, now(), now())
		RETURNING id, phone, phone_verified, email, email_verified, password_hash,
		nickname, avatar_url, status, mfa_enrolled, mfa_secret_hash, created_at, updated_at`
	var u model.User
	id := uuid.New()
	if err := s.db.GetContext(ctx, &u, q, id, phone, model.UserStatusActive); err != nil {
		logx.WithContext(ctx).Errorf("postgres: create user with phone: %v", err)
		return nil, fmt.Errorf("postgres: create user with phone: %w", err)
	}
	return &u, nil
}

func (s *Store) CreateUserWithEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `INSERT INTO users (id, email, email_verified, status, created_at, updated_at)
		VALUES ($1, $2, true, $3, now(), now())
		RETURNING id, phone, phone_verified, email, email_verified, password_hash,
		nickname, avatar_url, status, mfa_enrolled, mfa_secret_hash, created_at, updated_at`
	var u model.User
	id := uuid.New()
	if err := s.db.GetContext(ctx, &u, q, id, email, model.UserStatusActive); err != nil {
		logx.WithContext(ctx).Errorf("postgres: create user with email: %v", err)
		return nil, fmt.Errorf("postgres: create user with email: %w", err)
	}
	return &u, nil
}

// MarkPhoneVerified flips phone_verified for an existing, previously-unverified user.
func (s *Store) MarkPhoneVerified(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE users SET phone_verified = true, updated_at = now() WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("postgres: mark phone verified: %w", err)
	}
	return nil
}

func (s *Store) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE users SET email_verified = true, updated_at = now() WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("postgres: mark email verified: %w", err)
	}
	return nil
}

// SetPhone binds a verified phone number to an existing account.
func (s *Store) SetPhone(ctx context.Context, id uuid.UUID, phone string) error {
	const q = `UPDATE users SET phone = $2, phone_verified = true, updated_at = now() WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id, phone); err != nil {
		return fmt.Errorf("postgres: set phone: %w", err)
	}
	return nil
}

func (s *Store) SetEmail(ctx context.Context, id uuid.UUID, email string) error {
	const q = `UPDATE users SET email = $2, email_verified = true, updated_at = now() WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id, email); err != nil {
		return fmt.Errorf("postgres: set email: %w", err)
	}
	return nil
}

func (s *Store) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id, hash); err != nil {
		return fmt.Errorf("postgres: set password hash: %w", err)
	}
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, nickname, avatarURL *string) error {
	const q = `UPDATE users SET nickname = COALESCE($2, nickname),
		avatar_url = COALESCE($3, avatar_url), updated_at = now() WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id, nickname, avatarURL); err != nil {
		return fmt.Errorf("postgres: update profile: %w", err)
	}
	return nil
}

func (s *Store) SetMFAEnrolled(ctx context.Context, id uuid.UUID, secretHash string) error {
	const q = `UPDATE users SET mfa_enrolled = true, mfa_secret_hash = $2, updated_at = now() WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id, secretHash); err != nil {
		return fmt.Errorf("postgres: set mfa enrolled: %w", err)
	}
	return nil
}

// DeleteUser cascades to every owned row — the foreign keys in
// migrations/0001_init.sql carry ON DELETE CASCADE so a single DELETE here is
// sufficient.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM users WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("postgres: delete user: %w", err)
	}
	return nil
}

// FindOrCreateOAuthAccount implements the social-login resolution policy:
// lookup by (provider, provider_user_id); else lookup user by email and link;
// else create user and link.
func (s *Store) FindOrCreateOAuthAccount(ctx context.Context, provider, providerUserID, email string) (*model.User, bool, error) {
	const findQ = `SELECT user_id FROM oauth_accounts WHERE provider = $1 AND provider_user_id = $2`
	var userID uuid.UUID
	err := s.db.GetContext(ctx, &userID, findQ, provider, providerUserID)
	switch {
	case err == nil:
		u, getErr := s.GetUserByID(ctx, userID)
		return u, false, getErr
	case err != sql.ErrNoRows:
		return nil, false, fmt.Errorf("postgres: find oauth account: %w", err)
	}

	isNew := false
	var user *model.User
	if email != "" {
		user, err = s.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, false, err
		}
	}
	if user == nil {
		isNew = true
		var createErr error
		if email != "" {
			user, createErr = s.CreateUserWithEmail(ctx, email)
		} else {
			user, createErr = s.CreateUserWithEmail(ctx, fmt.Sprintf("%s:%s@oauth.local", provider, providerUserID))
		}
		if createErr != nil {
			return nil, false, createErr
		}
	}

	const linkQ = `INSERT INTO oauth_accounts (id, user_id, provider, provider_user_id, email, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`
	if _, err := s.db.ExecContext(ctx, linkQ, uuid.New(), user.ID, provider, providerUserID, nullIfEmpty(email)); err != nil {
		return nil, false, fmt.Errorf("postgres: link oauth account: %w", err)
	}
	return user, isNew, nil
}

func (s *Store) ListOAuthAccounts(ctx context.Context, userID uuid.UUID) ([]model.OAuthAccount, error) {
	const q = `SELECT id, user_id, provider, provider_user_id, email, created_at
		FROM oauth_accounts WHERE user_id = $1`
	var accounts []model.OAuthAccount
	if err := s.db.SelectContext(ctx, &accounts, q, userID); err != nil {
		return nil, fmt.Errorf("postgres: list oauth accounts: %w", err)
	}
	return accounts, nil
}

func (s *Store) UnlinkOAuthAccount(ctx context.Context, userID uuid.UUID, provider string) error {
	const q = `DELETE FROM oauth_accounts WHERE user_id = $1 AND provider = $2`
	if _, err := s.db.ExecContext(ctx, q, userID, provider); err != nil {
		return fmt.Errorf("postgres: unlink oauth account: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
