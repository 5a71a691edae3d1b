package repository

import (
	"context"
	"time"
)

// ThrottleRepository holds per-window request counters shared by all workers.
// Get returns 0 for a missing or expired key.
type ThrottleRepository interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}
