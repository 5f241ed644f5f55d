package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which handler/event pairs already ran so a
// redelivered event does not notify a farmer twice.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It reports false when the key was
	// already claimed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}

// IdempotencyConfig switches deduplication on and sets how long keys live.
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}
