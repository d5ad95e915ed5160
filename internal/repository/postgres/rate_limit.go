package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dtroode/sessionkeeper/internal/model"
)

var _ model.RateLimitStore = (*RateLimitRepository)(nil)

type RateLimitRepository struct {
	db *Connection
}

func NewRateLimitRepository(db *Connection) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

func (r *RateLimitRepository) CountSince(ctx context.Context, clientID, method, path string, since time.Time) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM rate_limit_entries
        WHERE client_id = $1 AND method = $2 AND path = $3 AND created_at >= $4
    `
	var count int64
	if err := r.db.QueryRow(ctx, query, clientID, method, path, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rate limit entries: %w", err)
	}
	return count, nil
}

func (r *RateLimitRepository) Insert(ctx context.Context, clientID, method, path string, at time.Time) error {
	const query = `
        INSERT INTO rate_limit_entries (client_id, method, path, created_at)
        VALUES ($1, $2, $3, $4)
    `
	if _, err := r.db.Exec(ctx, query, clientID, method, path, at); err != nil {
		return fmt.Errorf("failed to insert rate limit entry: %w", err)
	}
	return nil
}
