package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/3plops/putaway/internal/putaway"
)

// Scheduler manages scheduled putaway runs.
type Scheduler struct {
	cron     *cron.Cron
	svc      *putaway.Service
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(schedule string, svc *putaway.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New()

	return &Scheduler{
		cron:     c,
		svc:      svc,
		schedule: schedule,
		logger:   logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	_, err := s.cron.AddFunc(s.schedule, s.runPutaway)
	if err != nil {
		s.logger.Error("failed to schedule putaway run", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runPutaway() {
	s.logger.Info("scheduled putaway run triggered")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	summary, err := s.svc.Run(ctx)
	if err != nil {
		if errors.Is(err, putaway.ErrRunInFlight) {
			s.logger.Warn("skipping scheduled run, another run is in flight")
			return
		}
		s.logger.Error("scheduled putaway run failed", zap.Error(err))
		return
	}

	s.logger.Info("scheduled putaway run completed",
		zap.Int("moved", summary.Moved),
		zap.Int("failed", summary.Failed),
		zap.Int("no_location", summary.NoLocation))
}
