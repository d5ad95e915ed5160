// Package ratelimit counts requests per (client, method, path) tuple inside
// a sliding time window and admits or rejects them.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/dtroode/sessionkeeper/internal/model"
)

var _ model.RateLimiter = (*StoreLimiter)(nil)

// StoreLimiter is backed by the persistent store. Count-then-insert is not
// atomic, so two concurrent requests can both observe count < max; this is
// a soft limit, acceptable for this backend. Use the redis limiter when a
// hard limit is required.
type StoreLimiter struct {
	store        model.RateLimitStore
	maxPerWindow int
	window       time.Duration
	now          func() time.Time
}

func NewStoreLimiter(store model.RateLimitStore, maxPerWindow int, window time.Duration) *StoreLimiter {
	return &StoreLimiter{
		store:        store,
		maxPerWindow: maxPerWindow,
		window:       window,
		now:          time.Now,
	}
}

// Allow counts entries inside the trailing window and records a new one if
// the request is admitted. Rejected requests are not recorded.
func (l *StoreLimiter) Allow(ctx context.Context, clientID, method, path string) (bool, error) {
	now := l.now()

	count, err := l.store.CountSince(ctx, clientID, method, path, now.Add(-l.window))
	if err != nil {
		return false, fmt.Errorf("failed to count requests: %w", err)
	}

	if count >= int64(l.maxPerWindow) {
		return false, nil
	}

	if err := l.store.Insert(ctx, clientID, method, path, now); err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	return true, nil
}
