package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Refresher re-fetches cached symbols.
type Refresher interface {
	Refresh(ctx context.Context) (refreshed, failed int)
}

// Scheduler manages the cron task that keeps cached history current.
type Scheduler struct {
	Cron      *cron.Cron
	Refresher Refresher
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. Specs use the six-field form with seconds.
func NewScheduler(ctx context.Context, r Refresher) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Refresher: r,
		Ctx:       ctx,
	}
}

// Register adds the refresh task on spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the refresh task immediately.
func (s *Scheduler) RunNow() (refreshed, failed int) {
	return s.refresh()
}

func (s *Scheduler) refreshTask() {
	s.refresh()
}

func (s *Scheduler) refresh() (refreshed, failed int) {
	if s.Ctx.Err() != nil {
		return 0, 0
	}
	start := time.Now()
	log.Info().Msg("running cache refresh")
	refreshed, failed = s.Refresher.Refresh(s.Ctx)
	ev := log.Info()
	if failed > 0 {
		ev = log.Warn()
	}
	ev.Int("refreshed", refreshed).Int("failed", failed).Dur("took", time.Since(start)).Msg("cache refresh done")
	return refreshed, failed
}
