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

type webhookRow struct {
	ID            uuid.UUID      `db:"id"`
	ApplicationID string         `db:"application_id"`
	TargetURL     string         `db:"target_url"`
	Secret        string         `db:"secret"`
	Events        pq.StringArray `db:"events"`
	Active        bool           `db:"active"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (r webhookRow) toModel() *model.Webhook {
	return &model.Webhook{ID: r.ID, ApplicationID: r.ApplicationID, TargetURL: r.TargetURL,
		Secret: r.Secret, Events: []string(r.Events), Active: r.Active, CreatedAt: r.CreatedAt}
}

const webhookCols = `id, application_id, target_url, secret, events, active, created_at`

func (s *Store) CreateWebhook(ctx context.Context, w *model.Webhook) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	const q = `INSERT INTO webhooks (id, application_id, target_url, secret, events, active, created_at)
		VALUES ($1,$2,$3,$4,$5,true,now())`
	_, err := s.db.ExecContext(ctx, q, w.ID, w.ApplicationID, w.TargetURL, w.Secret, pq.StringArray(w.Events))
	if err != nil {
		return fmt.Errorf("postgres: create webhook: %w", err)
	}
	return nil
}

func (s *Store) ListWebhooksForApp(ctx context.Context, applicationID string) ([]*model.Webhook, error) {
	const q = `SELECT ` + webhookCols + ` FROM webhooks WHERE application_id = $1`
	var rows []webhookRow
	if err := s.db.SelectContext(ctx, &rows, q, applicationID); err != nil {
		return nil, fmt.Errorf("postgres: list webhooks: %w", err)
	}
	out := make([]*model.Webhook, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// ActiveWebhooksSubscribedTo returns every active webhook across all
// applications subscribed to event, used by the producer to fan out one
// WebhookDelivery per subscriber.
func (s *Store) ActiveWebhooksSubscribedTo(ctx context.Context, event string) ([]*model.Webhook, error) {
	const q = `SELECT ` + webhookCols + ` FROM webhooks WHERE active = true AND $1 = ANY(events)`
	var rows []webhookRow
	if err := s.db.SelectContext(ctx, &rows, q, event); err != nil {
		return nil, fmt.Errorf("postgres: active webhooks for event: %w", err)
	}
	out := make([]*model.Webhook, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) GetWebhook(ctx context.Context, id uuid.UUID) (*model.Webhook, error) {
	const q = `SELECT ` + webhookCols + ` FROM webhooks WHERE id = $1`
	var row webhookRow
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: get webhook: %w", err)
	}
	return row.toModel(), nil
}

func (s *Store) DeleteWebhook(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM webhooks WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("postgres: delete webhook: %w", err)
	}
	return nil
}

func (s *Store) SetWebhookActive(ctx context.Context, id uuid.UUID, active bool) error {
	const q = `UPDATE webhooks SET active = $2 WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id, active); err != nil {
		return fmt.Errorf("postgres: set webhook active: %w", err)
	}
	return nil
}

// --- WebhookDelivery ---

func (s *Store) EnqueueWebhookDelivery(ctx context.Context, d *model.WebhookDelivery) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	const q = `INSERT INTO webhook_deliveries (id, webhook_id, event, payload, status,
		attempt_count, next_retry_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,'pending',0,now(),now(),now())`
	_, err := s.db.ExecContext(ctx, q, d.ID, d.WebhookID, d.Event, d.Payload)
	if err != nil {
		return fmt.Errorf("postgres: enqueue webhook delivery: %w", err)
	}
	return nil
}

const webhookDeliveryCols = `id, webhook_id, event, payload, status, attempt_count,
	next_retry_at, last_response_code, last_response_body, created_at, updated_at`

// ClaimDueDeliveries selects up to limit rows ready for (re)delivery using
// FOR UPDATE SKIP LOCKED and, before committing, moves their next_retry_at
// five minutes ahead, so a delivery is processed by exactly one worker at a
// time even with multiple workers running concurrently. Rows whose worker
// stops mid-send become due again once those five minutes have passed.
func (s *Store) ClaimDueDeliveries(ctx context.Context, limit int) ([]*model.WebhookDelivery, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	const selectQ = `SELECT ` + webhookDeliveryCols + ` FROM webhook_deliveries
		WHERE status IN ('pending','retrying') AND next_retry_at <= now()
		ORDER BY next_retry_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`
	var deliveries []*model.WebhookDelivery
	if err := tx.SelectContext(ctx, &deliveries, selectQ, limit); err != nil {
		return nil, fmt.Errorf("postgres: claim due deliveries: %w", err)
	}
	if len(deliveries) == 0 {
		return nil, tx.Commit()
	}

	ids := make([]uuid.UUID, len(deliveries))
	for i, d := range deliveries {
		ids[i] = d.ID
	}
	const markQ = `UPDATE webhook_deliveries SET status = 'retrying',
		next_retry_at = now() + interval '5 minutes', updated_at = now() WHERE id = ANY($1)`
	if _, err := tx.ExecContext(ctx, markQ, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("postgres: mark claimed deliveries: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("postgres: commit claim: %w", err)
	}
	return deliveries, nil
}

func (s *Store) MarkDeliverySuccess(ctx context.Context, id uuid.UUID, responseCode int, responseBody string) error {
	const q = `UPDATE webhook_deliveries SET status = 'success', attempt_count = attempt_count + 1,
		last_response_code = $2, last_response_body = $3, updated_at = now() WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id, responseCode, truncate(responseBody, 1000)); err != nil {
		return fmt.Errorf("postgres: mark delivery success: %w", err)
	}
	return nil
}

// MarkDeliveryFailureOrRetry implements the backoff schedule: it stores
// attemptCount (the caller passes the already-incremented count); if < 5 it
// schedules next_retry_at with the 1/2/4/8/16-minute schedule and
// status=retrying, otherwise status=failed.
func (s *Store) MarkDeliveryFailureOrRetry(ctx context.Context, id uuid.UUID, attemptCount int, responseCode *int, responseBody string) error {
	status := model.DeliveryRetrying
	nextRetry := time.Now().Add(model.BackoffMinutes(attemptCount))
	if attemptCount >= model.MaxWebhookAttempts {
		status = model.DeliveryFailed
	}
	const q = `UPDATE webhook_deliveries SET status = $2, attempt_count = $3,
		next_retry_at = $4, last_response_code = $5, last_response_body = $6, updated_at = now()
		WHERE id = $1`
	_, err := s.db.ExecContext(ctx, q, id, status, attemptCount, nextRetry, responseCode, truncate(responseBody, 1000))
	if err != nil {
		return fmt.Errorf("postgres: mark delivery failure: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
