package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// CatalogRefresher reloads the category catalog.
type CatalogRefresher interface {
	RefreshCategories(ctx context.Context) error
}

// Scheduler periodically refreshes the category catalog so schema changes
// are picked up before the cached catalog expires.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher CatalogRefresher
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(refresher CatalogRefresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start schedules the refresh job, runs it once immediately and starts the
// underlying scheduler.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	_, err := s.scheduler.Every(interval).StartImmediately().Do(s.refresh)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.refresher.RefreshCategories(ctx); err != nil {
		s.logger.Error("category catalog refresh failed", "error", err)
		return
	}
	s.logger.Debug("category catalog refresh done")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
