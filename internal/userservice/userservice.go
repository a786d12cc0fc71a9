// Package userservice implements the self-service surface: profile,
// sessions, OAuth bindings, authorized apps, and account deletion.
package userservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/sso"
	"github.com/uniauth/uniauth/internal/store/postgres"
	"github.com/uniauth/uniauth/internal/verification"
)

type Service struct {
	store        *postgres.Store
	sso          *sso.Store
	verification *verification.Engine
}

func New(store *postgres.Store, sso *sso.Store, verification *verification.Engine) *Service {
	return &Service{store: store, sso: sso, verification: verification}
}

// BindPhone attaches a verified phone number to an already-authenticated
// account; the code must have been issued via
// Verification.Issue against this same phone number.
func (s *Service) BindPhone(ctx context.Context, userID uuid.UUID, phone, code string) error {
	if err := s.verification.Verify(ctx, phone, model.CodeTypeLogin, code); err != nil {
		return err
	}
	return s.store.SetPhone(ctx, userID, phone)
}

func (s *Service) BindEmail(ctx context.Context, userID uuid.UUID, email, code string) error {
	if err := s.verification.Verify(ctx, email, model.CodeTypeEmailVerify, code); err != nil {
		return err
	}
	return s.store.SetEmail(ctx, userID, email)
}

func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return user, nil
}

// ProfilePatch carries the only mutable profile fields:
// nickname and avatar_url.
type ProfilePatch struct {
	Nickname  *string
	AvatarURL *string
}

func (s *Service) PatchProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) error {
	return s.store.UpdateProfile(ctx, userID, patch.Nickname, patch.AvatarURL)
}

func (s *Service) ListSessions(ctx context.Context, userID uuid.UUID) ([]*model.SSOSession, error) {
	return s.sso.List(ctx, userID)
}

func (s *Service) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	return s.sso.DeleteForUser(ctx, userID, sessionID)
}

func (s *Service) LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	revoked, err := s.store.RevokeAllRefreshTokensForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	sessions, err := s.sso.LogoutAll(ctx, userID)
	if err != nil {
		return revoked, fmt.Errorf("userservice: logout all sso sessions: %w", err)
	}
	return sessions, nil
}

func (s *Service) ListBindings(ctx context.Context, userID uuid.UUID) ([]model.OAuthAccount, error) {
	return s.store.ListOAuthAccounts(ctx, userID)
}

func (s *Service) Unbind(ctx context.Context, userID uuid.UUID, provider string) error {
	return s.store.UnlinkOAuthAccount(ctx, userID, provider)
}

// ListAuthorizedApps returns the client IDs the user has an active grant
// with: union of apps joined to any of the user's SSO
// sessions and clients holding a live, unrevoked refresh token.
func (s *Service) ListAuthorizedApps(ctx context.Context, userID uuid.UUID) ([]string, error) {
	viaTokens, err := s.store.ListAuthorizedApplications(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sso.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(viaTokens))
	out := make([]string, 0, len(viaTokens))
	for _, id := range viaTokens {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, sess := range sessions {
		for _, app := range sess.Apps {
			if _, ok := seen[app]; !ok {
				seen[app] = struct{}{}
				out = append(out, app)
			}
		}
	}
	return out, nil
}

// RevokeApp revokes the token-backed grant to a single application. The SSO
// apps set is an append-only union with no removal operation, so session
// membership stays.
func (s *Service) RevokeApp(ctx context.Context, userID uuid.UUID, clientID string) error {
	return s.store.RevokeRefreshTokensForUserApp(ctx, userID, clientID)
}

// DeleteAccount deletes the user; owned rows cascade via foreign keys.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.store.DeleteUser(ctx, userID)
}
