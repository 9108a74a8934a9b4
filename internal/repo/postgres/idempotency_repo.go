package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WebhookEventRepo remembers which provider events were already handled so a
// redelivered webhook is acknowledged without running twice.
type WebhookEventRepo interface {
	// MarkProcessed records the event and reports whether this is the first
	// time it was seen.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	// Forget removes the record so the provider's retry is processed again.
	Forget(ctx context.Context, eventID string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type WebhookEventRepoImpl struct {
	pool      *pgxpool.Pool
	retention time.Duration
}

func NewWebhookEventRepo(pool *pgxpool.Pool) *WebhookEventRepoImpl {
	return &WebhookEventRepoImpl{pool: pool, retention: 30 * 24 * time.Hour}
}

func (r *WebhookEventRepoImpl) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	const q = `INSERT INTO webhook_events (event_id, expires_at)
  VALUES ($1, $2)
  ON CONFLICT (event_id) DO NOTHING`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, eventID, time.Now().Add(r.retention))
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *WebhookEventRepoImpl) Forget(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, `DELETE FROM webhook_events WHERE event_id=$1`, eventID)
	return err
}

func (r *WebhookEventRepoImpl) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM webhook_events WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

var _ WebhookEventRepo = (*WebhookEventRepoImpl)(nil)
