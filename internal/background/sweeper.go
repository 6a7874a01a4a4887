// Package background holds the periodic maintenance goroutines.
package background

import (
	"log/slog"
	"time"

	"github.com/fraudshield/backend/internal/services"
)

// StartTokenSweeper periodically deletes expired refresh tokens so the table
// stays bounded even for subjects who never log in again.
func StartTokenSweeper(store *services.TokenStore, interval time.Duration, done chan struct{}) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := store.SweepExpired()
				if err != nil {
					slog.Error("refresh token sweep failed", "error", err)
				} else if deleted > 0 {
					slog.Info("refresh token sweep completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}
