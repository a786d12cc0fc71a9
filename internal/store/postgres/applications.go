package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/model"
)

type applicationRow struct {
	ClientID          string         `db:"client_id"`
	ClientSecretHash  *string        `db:"client_secret_hash"`
	Name              string         `db:"name"`
	Type              model.ClientType `db:"type"`
	IsTrusted         bool           `db:"is_trusted"`
	OwnerUserID       uuid.UUID      `db:"owner_user_id"`
	RedirectURIs      pq.StringArray `db:"redirect_uris"`
	AllowedGrantTypes pq.StringArray `db:"allowed_grant_types"`
	AllowedScopes     pq.StringArray `db:"allowed_scopes"`
	Active            bool           `db:"active"`
	CreatedAt         sql.NullTime   `db:"created_at"`
	UpdatedAt         sql.NullTime   `db:"updated_at"`
}

func (r applicationRow) toModel() *model.Application {
	return &model.Application{
		ClientID:          r.ClientID,
		ClientSecretHash:  r.ClientSecretHash,
		Name:              r.Name,
		Type:              r.Type,
		IsTrusted:         r.IsTrusted,
		OwnerUserID:       r.OwnerUserID,
		RedirectURIs:      []string(r.RedirectURIs),
		AllowedGrantTypes: []string(r.AllowedGrantTypes),
		AllowedScopes:     []string(r.AllowedScopes),
		Active:            r.Active,
		CreatedAt:         r.CreatedAt.Time,
		UpdatedAt:         r.UpdatedAt.Time,
	}
}

const applicationCols = `client_id, client_secret_hash, name, type, is_trusted, owner_user_id,
	redirect_uris, allowed_grant_types, allowed_scopes, active, created_at, updated_at`

func (s *Store) GetApplication(ctx context.Context, clientID string) (*model.Application, error) {
	q := `SELECT ` + applicationCols + ` FROM applications WHERE client_id = $1`
	var row applicationRow
	if err := withReadRetry(ctx, func() error {
		return s.db.GetContext(ctx, &row, q, clientID)
	}); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logx.WithContext(ctx).Errorf("postgres: get application: %v", err)
		return nil, fmt.Errorf("postgres: get application: %w", err)
	}
	return row.toModel(), nil
}

// RedirectURIRegistered reports whether uri is registered to any active
// client, used by the authorization endpoint to decide whether an
// invalid_client failure can safely redirect back to the caller or must render a generic error page.
func (s *Store) RedirectURIRegistered(ctx context.Context, uri string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM applications WHERE $1 = ANY(redirect_uris) AND active = true)`
	var exists bool
	if err := s.db.GetContext(ctx, &exists, q, uri); err != nil {
		return false, fmt.Errorf("postgres: redirect uri registered: %w", err)
	}
	return exists, nil
}

func (s *Store) CreateApplication(ctx context.Context, app *model.Application, secretHash *string) error {
	q := `INSERT INTO applications (client_id, client_secret_hash, name, type, is_trusted,
		owner_user_id, redirect_uris, allowed_grant_types, allowed_scopes, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,true,now(),now())`
	_, err := s.db.ExecContext(ctx, q, app.ClientID, secretHash, app.Name, app.Type, app.IsTrusted,
		app.OwnerUserID, pq.StringArray(app.RedirectURIs), pq.StringArray(app.AllowedGrantTypes),
		pq.StringArray(app.AllowedScopes))
	if err != nil {
		return fmt.Errorf("postgres: create application: %w", err)
	}
	return nil
}

func (s *Store) UpdateApplication(ctx context.Context, app *model.Application) error {
	q := `UPDATE applications SET name=$2, redirect_uris=$3, allowed_grant_types=$4,
		allowed_scopes=$5, is_trusted=$6, updated_at=now() WHERE client_id=$1`
	_, err := s.db.ExecContext(ctx, q, app.ClientID, app.Name, pq.StringArray(app.RedirectURIs),
		pq.StringArray(app.AllowedGrantTypes), pq.StringArray(app.AllowedScopes), app.IsTrusted)
	if err != nil {
		return fmt.Errorf("postgres: update application: %w", err)
	}
	return nil
}

func (s *Store) RotateApplicationSecret(ctx context.Context, clientID, secretHash string) error {
	q := `UPDATE applications SET client_secret_hash=$2, updated_at=now() WHERE client_id=$1`
	if _, err := s.db.ExecContext(ctx, q, clientID, secretHash); err != nil {
		return fmt.Errorf("postgres: rotate application secret: %w", err)
	}
	return nil
}

func (s *Store) DeleteApplication(ctx context.Context, clientID string) error {
	q := `DELETE FROM applications WHERE client_id=$1`
	if _, err := s.db.ExecContext(ctx, q, clientID); err != nil {
		return fmt.Errorf("postgres: delete application: %w", err)
	}
	return nil
}

func (s *Store) ListApplicationsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Application, error) {
	q := `SELECT ` + applicationCols + ` FROM applications WHERE owner_user_id = $1 ORDER BY created_at`
	var rows []applicationRow
	if err := s.db.SelectContext(ctx, &rows, q, ownerID); err != nil {
		return nil, fmt.Errorf("postgres: list applications: %w", err)
	}
	out := make([]*model.Application, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// CustomClaimsJSON returns the per-application custom claim document, stored
// as JSONB and surfaced to callers as a structpb.Struct by
// internal/developer.
func (s *Store) CustomClaimsJSON(ctx context.Context, clientID string) ([]byte, error) {
	var raw []byte
	q := `SELECT custom_claims FROM applications WHERE client_id = $1`
	if err := s.db.GetContext(ctx, &raw, q, clientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: get custom claims: %w", err)
	}
	return raw, nil
}

func (s *Store) SetCustomClaimsJSON(ctx context.Context, clientID string, raw []byte) error {
	q := `UPDATE applications SET custom_claims = $2, updated_at = now() WHERE client_id = $1`
	if _, err := s.db.ExecContext(ctx, q, clientID, raw); err != nil {
		return fmt.Errorf("postgres: set custom claims: %w", err)
	}
	return nil
}

func (s *Store) SetBranding(ctx context.Context, clientID string, raw []byte) error {
	q := `UPDATE applications SET branding = $2, updated_at = now() WHERE client_id = $1`
	if _, err := s.db.ExecContext(ctx, q, clientID, raw); err != nil {
		return fmt.Errorf("postgres: set branding: %w", err)
	}
	return nil
}

func (s *Store) GetBranding(ctx context.Context, clientID string) ([]byte, error) {
	var raw []byte
	q := `SELECT branding FROM applications WHERE client_id = $1`
	if err := s.db.GetContext(ctx, &raw, q, clientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: get branding: %w", err)
	}
	return raw, nil
}
