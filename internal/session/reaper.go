package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ExpireFunc is told about every session the reaper removed
type ExpireFunc func(ctx context.Context, id uuid.UUID)

// Reaper removes idle sessions periodically
type Reaper struct {
	store    *Store
	onExpire ExpireFunc
	logger   *slog.Logger
	interval time.Duration
}

// NewReaper creates a new session expiry worker. onExpire may be nil.
func NewReaper(store *Store, onExpire ExpireFunc, logger *slog.Logger, interval time.Duration) *Reaper {
	return &Reaper{
		store:    store,
		onExpire: onExpire,
		logger:   logger,
		interval: interval,
	}
}

// Run starts the worker loop
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("session reaper started", "interval", r.interval, "ttl", r.store.TTL())

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("session reaper stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	expired := r.store.Sweep()
	if len(expired) == 0 {
		return
	}

	for _, id := range expired {
		if r.onExpire != nil {
			r.onExpire(ctx, id)
		}
	}

	r.logger.Debug("expired sessions removed", "count", len(expired), "remaining", r.store.Len())
}
