// Package ratelimit implements the Rate Limiter: per-target cooldown and
// daily-quota checks for verification-code issuance, backed by Redis so that
// concurrent issuers across processes stay monotonic. Both windows are keyed
// by target only; the source IP is stored as the cooldown key's value and is
// not counted against any limit.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/uniauth/uniauth/internal/apperr"
)

// Config holds the two windows named
type Config struct {
	Cooldown   time.Duration // minimum seconds between issues to the same target
	DailyQuota int           // max issues per target per UTC day
}

type Limiter struct {
	rdb *redis.Client
	cfg Config
}

func New(rdb *redis.Client, cfg Config) *Limiter {
	return &Limiter{rdb: rdb, cfg: cfg}
}

// Reserve atomically checks and reserves one issuance slot for target (and
// records the source IP for observability/abuse review). It returns an
// *apperr.Error with Kind RateLimited or DailyLimitExceeded when either window
// is exceeded
func (l *Limiter) Reserve(ctx context.Context, target, sourceIP string) error {
	cooldownKey := fmt.Sprintf("uniauth:ratelimit:cooldown:%s", target)
	// SET NX PX is a single atomic Redis command: under concurrent issuers, at
	// most one caller observes ok=true for the same target.
	ok, err := l.rdb.SetNX(ctx, cooldownKey, sourceIP, l.cfg.Cooldown).Result()
	if err != nil {
		return fmt.Errorf("ratelimit: cooldown check: %w", err)
	}
	if !ok {
		ttl, ttlErr := l.rdb.TTL(ctx, cooldownKey).Result()
		if ttlErr != nil || ttl < 0 {
			ttl = l.cfg.Cooldown
		}
		return apperr.NewRateLimited(int(ttl.Seconds()))
	}

	quotaKey := fmt.Sprintf("uniauth:ratelimit:quota:%s:%s", target, utcDayKey())
	count, err := l.rdb.Incr(ctx, quotaKey).Result()
	if err != nil {
		return fmt.Errorf("ratelimit: quota increment: %w", err)
	}
	if count == 1 {
		if err := l.rdb.ExpireAt(ctx, quotaKey, nextUTCMidnight()).Err(); err != nil {
			logx.Errorf("ratelimit: failed to set quota expiry: %v", err)
		}
	}
	if int(count) > l.cfg.DailyQuota {
		return apperr.NewDailyLimitExceeded()
	}
	return nil
}

func utcDayKey() string {
	return time.Now().UTC().Format("2006-01-02")
}

func nextUTCMidnight() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}
