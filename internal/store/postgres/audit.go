package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InsertAuditLog backs internal/audit's writer.
func (s *Store) InsertAuditLog(ctx context.Context, userID uuid.UUID, action string, metadata []byte, ip *string) error {
	const q = `INSERT INTO audit_logs (id, user_id, action, metadata, ip, created_at)
		VALUES ($1,$2,$3,$4,$5,now())`
	_, err := s.db.ExecContext(ctx, q, uuid.New(), userID, action, metadata, ip)
	if err != nil {
		return fmt.Errorf("postgres: insert audit log: %w", err)
	}
	return nil
}
