package session

import (
	"context"
	"time"

	"todolist-web/internal/logging"
	"todolist-web/internal/storage"
)

// RunJanitor deletes expired sessions every interval until ctx is cancelled
func RunJanitor(ctx context.Context, store storage.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			Sweep(ctx, store)
		}
	}
}

// Sweep runs one expired-session cleanup pass
func Sweep(ctx context.Context, store storage.Store) {
	removed, err := store.DeleteExpired(ctx)
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to delete expired sessions")
		return
	}
	if removed > 0 {
		logging.Logger.WithField("removed", removed).Info("Expired sessions deleted")
	}
}
