package idempotency

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunCleanup purges expired records every interval until ctx is cancelled.
// Each tick drains full batches so a backlog clears within one pass.
func RunCleanup(ctx context.Context, store Store, interval time.Duration, batch int, logger *zap.Logger) {
	if store == nil || interval <= 0 {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-ticker.C:
			removed, err := purge(ctx, store, tick, batch)
			if err != nil {
				logger.Warn("idempotency cleanup failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Debug("idempotency cleanup", zap.Int("removed", removed))
			}
		}
	}
}

func purge(ctx context.Context, store Store, now time.Time, batch int) (int, error) {
	total := 0
	for {
		removed, err := store.CleanupExpired(ctx, now, batch)
		total += removed
		if err != nil || batch <= 0 || removed < batch || ctx.Err() != nil {
			return total, err
		}
	}
}
