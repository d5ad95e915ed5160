package model

import (
	"context"
	"time"
)

// RateLimitStore records admitted requests and counts them inside the
// trailing window. Entries are never deleted explicitly; the store layer
// may prune them lazily.
type RateLimitStore interface {
	CountSince(ctx context.Context, clientID, method, path string, since time.Time) (int64, error)
	Insert(ctx context.Context, clientID, method, path string, at time.Time) error
}

// RateLimiter admits or rejects a request for the (client, method, path)
// tuple. A rejected request is denied once, never queued.
type RateLimiter interface {
	Allow(ctx context.Context, clientID, method, path string) (bool, error)
}
