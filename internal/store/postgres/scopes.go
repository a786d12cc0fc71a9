package postgres

import (
	"context"
	"fmt"

	"github.com/uniauth/uniauth/internal/model"
)

// ListScopes returns every scope registered in the system, ordered by name.
func (s *Store) ListScopes(ctx context.Context) ([]model.Scope, error) {
	const q = `SELECT name, description FROM scopes ORDER BY name`
	var scopes []model.Scope
	if err := s.db.SelectContext(ctx, &scopes, q); err != nil {
		return nil, fmt.Errorf("postgres: list scopes: %w", err)
	}
	return scopes, nil
}
