// Package webhook implements at-least-once delivery of lifecycle events with
// HMAC signing and exponential backoff.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/store/postgres"
)

// Payload is the wire shape: {event, delivery_id, data, timestamp}.
type Payload struct {
	Event      string         `json:"event"`
	DeliveryID string         `json:"delivery_id"`
	Data       map[string]any `json:"data"`
	Timestamp  int64          `json:"timestamp"`
}

// Producer enqueues one WebhookDelivery row per active, subscribed webhook for
// an event, called by the Orchestrator and OAuth Engine on lifecycle events
//.
type Producer struct {
	store *postgres.Store
}

func NewProducer(store *postgres.Store) *Producer {
	return &Producer{store: store}
}

func (p *Producer) Enqueue(ctx context.Context, event string, data map[string]any) error {
	webhooks, err := p.store.ActiveWebhooksSubscribedTo(ctx, event)
	if err != nil {
		return fmt.Errorf("webhook: list subscribers: %w", err)
	}
	var firstErr error
	for _, wh := range webhooks {
		delivery := &model.WebhookDelivery{ID: uuid.New(), WebhookID: wh.ID, Event: event}
		payload := Payload{Event: event, DeliveryID: delivery.ID.String(), Data: data, Timestamp: time.Now().Unix()}
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("webhook: marshal payload: %w", err)
		}
		delivery.Payload = raw
		if err := p.store.EnqueueWebhookDelivery(ctx, delivery); err != nil {
			// A single bad subscriber must not block the others; keep going and
			// report the first failure afterward.
			if firstErr == nil {
				firstErr = fmt.Errorf("webhook: enqueue delivery for webhook %s: %w", wh.ID, err)
			}
		}
	}
	return firstErr
}
