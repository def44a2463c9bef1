package service

import (
	"context"
	"time"

	"leadbridge/internal/constants"

	"github.com/sirupsen/logrus"
)

// ContactSyncer runs one reconciliation pass
type ContactSyncer interface {
	SyncWithManyChat(ctx context.Context) error
}

// Scheduler triggers the reconciliation job on a fixed interval. The job's
// own rate-limit window still applies on top of the schedule.
type Scheduler struct {
	syncer          ContactSyncer
	intervalMinutes int
	logger          *logrus.Logger
	stopCh          chan struct{}
}

func NewScheduler(syncer ContactSyncer, intervalMinutes int, logger *logrus.Logger) *Scheduler {
	if intervalMinutes <= 0 {
		intervalMinutes = constants.DefaultSyncIntervalMinutes
	}
	return &Scheduler{
		syncer:          syncer,
		intervalMinutes: intervalMinutes,
		logger:          logger,
		stopCh:          make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(s.intervalMinutes) * time.Minute)
	defer ticker.Stop()

	s.logger.Info("Starting sync scheduler")

	s.runSync(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context cancelled, stopping")
			return
		case <-s.stopCh:
			s.logger.Info("Scheduler stop signal received, stopping")
			return
		case <-ticker.C:
			s.runSync(ctx)
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
}

func (s *Scheduler) runSync(ctx context.Context) {
	if err := s.syncer.SyncWithManyChat(ctx); err != nil {
		s.logger.WithError(err).Error("Scheduled sync failed")
	}
}
