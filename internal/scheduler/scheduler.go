package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron"

	"healthdash/internal/service"
)

// ErrBusy is returned when a run is requested while another is in flight
var ErrBusy = errors.New("auto sync already running")

// Syncer runs an automatic sync over the trailing days
type Syncer interface {
	AutoSync(ctx context.Context, days int, progress chan<- service.SyncProgress) (*service.SyncResult, error)
}

// Scheduler triggers auto syncs on a cron schedule. Alert evaluation
// follows each successful run inside the sync service.
type Scheduler struct {
	syncer Syncer
	days   int
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// New creates a scheduler syncing the last days days per run
func New(syncer Syncer, days int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		syncer: syncer,
		days:   max(1, days),
		logger: logger,
	}
}

// ValidateSpec checks a 6-field cron spec (seconds first) or a descriptor
// such as @hourly
func ValidateSpec(spec string) error {
	if _, err := cron.Parse(spec); err != nil {
		return fmt.Errorf("parsing schedule %q: %w", spec, err)
	}
	return nil
}

// Run starts the cron loop and blocks until ctx is done. Runs that fire
// while a previous one is still going are skipped.
func (s *Scheduler) Run(ctx context.Context, spec string) error {
	schedule, err := cron.Parse(spec)
	if err != nil {
		return fmt.Errorf("parsing schedule %q: %w", spec, err)
	}

	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(func() {
		if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrBusy) {
			s.logger.Error("scheduled sync failed", "error", err)
		}
	}))
	c.Start()
	defer c.Stop()

	s.logger.Info("scheduler started", "schedule", spec, "days", s.days)
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// RunOnce performs one auto sync now
func (s *Scheduler) RunOnce(ctx context.Context) (*service.SyncResult, error) {
	if !s.begin() {
		s.logger.Warn("skipping scheduled sync, previous run still active")
		return nil, ErrBusy
	}
	defer s.end()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := s.syncer.AutoSync(ctx, s.days, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info("scheduled sync complete",
		"status", result.Status,
		"days", result.SyncedDays,
		"alerts", result.AlertsCreated,
	)
	return result, nil
}

func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Scheduler) end() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
