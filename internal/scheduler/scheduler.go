// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rentloop/rentloop-backend/internal/services"
)

// ExpirySweeper periodically expires active leases whose end date has passed.
// The sweep itself is idempotent, so overlapping runs or a restart mid-sweep
// are harmless.
type ExpirySweeper struct {
	leases   *services.LeaseService
	interval time.Duration
}

func NewExpirySweeper(leases *services.LeaseService, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{
		leases:   leases,
		interval: interval,
	}
}

// Run sweeps once at startup and then on every tick until ctx is cancelled.
// Blocks; callers start it on its own goroutine.
func (s *ExpirySweeper) Run(ctx context.Context) {
	logrus.WithField("interval", s.interval.String()).Info("Lease expiry sweeper started")

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Lease expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	start := time.Now()
	expired, err := s.leases.CheckAndExpireLeases(ctx)
	if err != nil {
		logrus.WithError(err).Error("Lease expiry sweep failed")
		return
	}
	if expired > 0 {
		logrus.WithFields(logrus.Fields{
			"expired":  expired,
			"duration": time.Since(start).String(),
		}).Info("Lease expiry sweep completed")
	}
}
