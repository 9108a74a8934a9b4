package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skypark/bookings/pkg/logger"
)

// Cached keeps the last good snapshot for ttl. When a refresh fails the
// previous snapshot keeps being served.
type Cached struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	snap    *Snapshot
	fetched time.Time
}

func NewCached(src Source, ttl time.Duration) *Cached {
	return &Cached{src: src, ttl: ttl, now: time.Now}
}

func (c *Cached) Load(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap != nil && c.now().Sub(c.fetched) < c.ttl {
		return c.snap, nil
	}

	snap, err := c.src.Load(ctx)
	if err != nil {
		if c.snap != nil {
			logger.WarnContext(ctx, "catalog refresh failed, serving stale snapshot", "error", err, "age", c.now().Sub(c.fetched).String())
			return c.snap, nil
		}
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	c.snap = snap
	c.fetched = c.now()
	return snap, nil
}

// Invalidate forces the next Load to hit the source.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.fetched = time.Time{}
	c.mu.Unlock()
}
