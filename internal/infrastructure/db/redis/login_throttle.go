package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

// LoginThrottler counts failed logins per key within a sliding window.
// Key format: login_failures:<normalized_email>
type LoginThrottler struct {
	client      redis.Cmdable
	maxAttempts int64
	window      time.Duration
}

// NewLoginThrottler creates a LoginThrottler. Non-positive limits fall back to
// 5 attempts per 15 minutes.
func NewLoginThrottler(client redis.Cmdable, maxAttempts int, window time.Duration) *LoginThrottler {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginThrottler{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Allow reports whether key is still below the failure limit.
func (t *LoginThrottler) Allow(ctx context.Context, key string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("login throttle check: %w", err)
	}
	return n < t.maxAttempts, nil
}

// RecordFailure increments the counter and pushes the window forward, so the
// key expires only after a quiet period of window.
func (t *LoginThrottler) RecordFailure(ctx context.Context, key string) error {
	k := t.key(key)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("login throttle record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottler) Reset(ctx context.Context, key string) error {
	return t.client.Del(ctx, t.key(key)).Err()
}

func (t *LoginThrottler) key(k string) string {
	return fmt.Sprintf("login_failures:%s", k)
}
