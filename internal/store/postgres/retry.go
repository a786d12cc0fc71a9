package postgres

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// withReadRetry retries an idempotent read up to 3 times with a 100ms
// exponential base. Writes are never auto-retried.
func withReadRetry(ctx context.Context, fn func() error) error {
	const maxAttempts = 3
	const base = 100 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxAttempts-1 {
			break
		}
		delay := base * time.Duration(1<<attempt)
		logx.WithContext(ctx).Errorf("postgres: read attempt %d failed, retrying in %s: %v", attempt+1, delay, err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
