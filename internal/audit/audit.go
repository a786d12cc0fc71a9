// Package audit is the thin writer backing the AuditLogEntry
// written by the Authentication Orchestrator on every successful login and by
// other components on security-relevant mutations.
package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/store/postgres"
)

type Writer struct {
	store *postgres.Store
}

func New(store *postgres.Store) *Writer {
	return &Writer{store: store}
}

// Write persists one audit entry. Failures are logged but never propagated —
// audit logging is a side effect of the request, not a precondition for it.
func (w *Writer) Write(ctx context.Context, userID uuid.UUID, action string, metadata map[string]any, ip string) {
	var raw []byte
	if metadata != nil {
		var err error
		raw, err = json.Marshal(metadata)
		if err != nil {
			logx.WithContext(ctx).Errorf("audit: marshal metadata: %v", err)
		}
	}
	var ipPtr *string
	if ip != "" {
		ipPtr = &ip
	}
	if err := w.store.InsertAuditLog(ctx, userID, action, raw, ipPtr); err != nil {
		logx.WithContext(ctx).Errorf("audit: write entry failed (user=%s action=%s): %v", userID, action, err)
	}
}
