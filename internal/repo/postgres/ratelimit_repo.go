package postgres

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RateLimitRepo keeps fixed-window request counters.
type RateLimitRepo struct {
	pool *pgxpool.Pool
}

func NewRateLimitRepo(pool *pgxpool.Pool) *RateLimitRepo {
	return &RateLimitRepo{pool: pool}
}

// Hit counts one request for key and returns the count in the current window.
func (r *RateLimitRepo) Hit(ctx context.Context, key string, window time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// Keys carry client IPs; only the hash is stored.
	hashedKey := fmt.Sprintf("%x", sha256.Sum256([]byte(key)))

	now := time.Now()
	windowStart := now.Add(-window)

	const q = `
		INSERT INTO rate_limits (key, count, window_start, expires_at)
		VALUES ($1, 1, $4, $3)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE
				WHEN rate_limits.window_start < $2 THEN 1
				ELSE rate_limits.count + 1
			END,
			window_start = CASE
				WHEN rate_limits.window_start < $2 THEN $4
				ELSE rate_limits.window_start
			END,
			expires_at = $3
		RETURNING count`

	var count int
	err := r.pool.QueryRow(ctx, q, hashedKey, windowStart, now.Add(window+time.Hour), now).Scan(&count)
	return count, err
}

func (r *RateLimitRepo) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM rate_limits WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
