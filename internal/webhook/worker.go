package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/store/postgres"
)

const (
	batchSize       = 10
	deliveryTimeout = 5 * time.Second
)

// Worker polls for due deliveries, POSTs the signed payload, and records
// success or schedules the next backoff attempt.
type Worker struct {
	store  *postgres.Store
	client *http.Client
}

func NewWorker(store *postgres.Store) *Worker {
	return &Worker{
		store:  store,
		client: &http.Client{Timeout: deliveryTimeout},
	}
}

// Run polls until ctx is cancelled. Each poll claims up to batchSize due
// deliveries and attempts every one before sleeping; a full batch means more
// work may be waiting, so the next poll happens immediately instead of after
// the normal interval.
func (w *Worker) Run(ctx context.Context, pollInterval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := w.runOnce(ctx)
		if err != nil {
			logx.WithContext(ctx).Errorf("webhook: poll failed: %v", err)
		}
		if n == batchSize {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(pollInterval):
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) (int, error) {
	deliveries, err := w.store.ClaimDueDeliveries(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("webhook: claim deliveries: %w", err)
	}
	for _, d := range deliveries {
		w.attempt(ctx, d)
	}
	return len(deliveries), nil
}

// attempt delivers one claimed row. Failures never propagate out of the
// worker loop — a single broken subscriber must not stall the batch.
func (w *Worker) attempt(ctx context.Context, d *model.WebhookDelivery) {
	wh, err := w.store.GetWebhook(ctx, d.WebhookID)
	if err != nil || wh == nil {
		logx.WithContext(ctx).Errorf("webhook: lookup webhook %s for delivery %s failed: %v", d.WebhookID, d.ID, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.TargetURL, bytes.NewReader(d.Payload))
	if err != nil {
		logx.WithContext(ctx).Errorf("webhook: build request for delivery %s: %v", d.ID, err)
		w.fail(ctx, d, nil, err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-UniAuth-Event", d.Event)
	req.Header.Set("X-UniAuth-Delivery", d.ID.String())
	req.Header.Set("X-UniAuth-Signature", sign(wh.Secret, d.Payload))

	resp, err := w.client.Do(req)
	if err != nil {
		w.fail(ctx, d, nil, err.Error())
		return
	}
	defer resp.Body.Close()

	body := make([]byte, 1024)
	n, _ := resp.Body.Read(body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := w.store.MarkDeliverySuccess(ctx, d.ID, resp.StatusCode, string(body[:n])); err != nil {
			logx.WithContext(ctx).Errorf("webhook: mark delivery %s success: %v", d.ID, err)
		}
		return
	}
	code := resp.StatusCode
	w.fail(ctx, d, &code, string(body[:n]))
}

func (w *Worker) fail(ctx context.Context, d *model.WebhookDelivery, code *int, body string) {
	attempt := d.AttemptCount + 1
	if err := w.store.MarkDeliveryFailureOrRetry(ctx, d.ID, attempt, code, body); err != nil {
		logx.WithContext(ctx).Errorf("webhook: mark delivery %s failure: %v", d.ID, err)
	}
}

// sign computes the X-UniAuth-Signature header value for a raw payload using
// the webhook's per-registration secret.
func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
