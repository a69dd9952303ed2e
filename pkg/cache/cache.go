// Package cache memoizes rendered artifacts for the duration of a run.
//
// Rendering the same DOT source twice (for example when both plan.svg and
// plan.html are requested) goes through the backend once; the second
// request is served from the cache. Nothing is persisted between runs.
package cache

import (
	"context"
	"time"
)

// TTLRender is the lifetime of a rendered SVG entry.
const TTLRender = 10 * time.Minute

// Cache stores byte values under string keys.
//
// Get reports a miss with (nil, false, nil). A ttl of zero or less in Set
// means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
