// file: service/session_janitor.go

package service

import (
	"context"
	"time"

	"backups-api/logger"
	"backups-api/repository"
)

// SessionJanitor periodically purges refresh records past their absolute
// expiry. Expired rows are already rejected lazily on rotation; the sweep
// only keeps them from accumulating indefinitely.
type SessionJanitor struct {
	tokenRepo repository.ITokenRepository
	interval  time.Duration
}

func NewSessionJanitor(tokenRepo repository.ITokenRepository, interval time.Duration) *SessionJanitor {
	return &SessionJanitor{
		tokenRepo: tokenRepo,
		interval:  interval,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval. It is meant
// to be launched as a goroutine from app startup.
func (j *SessionJanitor) Run(ctx context.Context) {
	logger.Log.WithField("interval", j.interval.String()).Info("Session janitor started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Session janitor stopped")
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep deletes all refresh records whose absolute expiry has passed.
func (j *SessionJanitor) Sweep() {
	purged, err := j.tokenRepo.DeleteExpired()
	if err != nil {
		logger.Log.WithError(err).Error("Failed to purge expired refresh records")
		return
	}
	if purged > 0 {
		logger.Log.WithField("purged", purged).Info("Purged expired refresh records")
	}
}
