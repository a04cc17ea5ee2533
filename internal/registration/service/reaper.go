package service

import (
	"context"
	"log/slog"
	"time"

	"eventlift/internal/registration/store"
)

// Reaper periodically sweeps expired pending registrations from stores
// without native TTL. Running it against the redis store is harmless: its
// DeleteExpired is a no-op.
type Reaper struct {
	pending  store.Store
	interval time.Duration
	logger   *slog.Logger
}

func NewReaper(pending store.Store, interval time.Duration, logger *slog.Logger) *Reaper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reaper{pending: pending, interval: interval, logger: logger}
}

// Run sweeps on the configured interval until the context is cancelled.
func (r *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := r.pending.DeleteExpired(ctx, time.Now())
			if err != nil {
				r.logger.ErrorContext(ctx, "expired registration sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				r.logger.InfoContext(ctx, "expired registrations removed", "count", removed)
			}
		}
	}
}
