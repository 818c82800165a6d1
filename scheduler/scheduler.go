// Package scheduler runs update runs on a cron schedule in serve mode.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/reenignearcher/pagegate/config"
	"github.com/reenignearcher/pagegate/update"
)

// UpdateRunner is the update interface used by the scheduler.
type UpdateRunner interface {
	Run(ctx context.Context) (*update.Manifest, error)
	SourceNames() []string
}

// Scheduler triggers update runs on a cron schedule.
type Scheduler struct {
	runner  UpdateRunner
	cron    *cron.Cron
	config  *config.ScheduleConfig
	timeout time.Duration

	mu           sync.RWMutex
	running      bool
	lastRun      time.Time
	lastOutcome  string
	lastManifest *update.Manifest
	runCount     int
	failCount    int
}

// New creates a new Scheduler. Call Start to register the schedule.
func New(runner UpdateRunner, cfg *config.ScheduleConfig, timeout time.Duration, loc *time.Location) *Scheduler {
	// 5-field standard cron (no WithSeconds)
	return &Scheduler{
		runner:  runner,
		cron:    cron.New(cron.WithLocation(loc)),
		config:  cfg,
		timeout: timeout,
	}
}

// Start registers the update schedule and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.config.Expr, s.runUpdate); err != nil {
		return fmt.Errorf("failed to register schedule (%q): %w", s.config.Expr, err)
	}

	s.cron.Start()
	slog.Info("update scheduler started", "schedule", s.config.Expr)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("update scheduler stopped")
}

// RunNow triggers an update outside the schedule, with the same guards.
func (s *Scheduler) RunNow() {
	s.runUpdate()
}

func (s *Scheduler) runUpdate() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.Info("skipping update: previous run still in flight")
		return
	}
	if !s.lastRun.IsZero() {
		elapsed := time.Since(s.lastRun)
		guard := time.Duration(s.config.DuplicateGuardSeconds) * time.Second
		if elapsed < guard {
			s.mu.Unlock()
			slog.Info("duplicate guard: update ran recently",
				"elapsed", elapsed.Round(time.Second).String(),
				"guard", guard.String(),
			)
			return
		}
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.lastRun = time.Now()
		s.mu.Unlock()
	}()

	if s.config.DryRun {
		slog.Info("[DRY-RUN] update targets", "sources", s.runner.SourceNames())
		s.recordOutcome(nil, "dry-run")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	manifest, err := s.runner.Run(ctx)
	if err != nil {
		slog.Error("scheduled update failed", "error", err)
		s.recordOutcome(manifest, "failed")
		return
	}
	s.recordOutcome(manifest, "ok")
}

func (s *Scheduler) recordOutcome(manifest *update.Manifest, outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runCount++
	if outcome == "failed" {
		s.failCount++
	}
	s.lastOutcome = outcome
	if manifest != nil {
		s.lastManifest = manifest
	}
}

// GetRunCount returns the number of completed runs (StatusProvider).
func (s *Scheduler) GetRunCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runCount
}

// GetFailCount returns the number of failed runs (StatusProvider).
func (s *Scheduler) GetFailCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failCount
}

// GetLastRunTime returns the last run completion time (StatusProvider).
func (s *Scheduler) GetLastRunTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

// GetLastOutcome returns "ok", "failed", "dry-run", or "" (StatusProvider).
func (s *Scheduler) GetLastOutcome() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastOutcome
}

// GetSourceStatuses returns the per-source results of the most recent run
// (StatusProvider).
func (s *Scheduler) GetSourceStatuses() []update.SourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastManifest == nil {
		return nil
	}
	statuses := make([]update.SourceStatus, len(s.lastManifest.Sources))
	copy(statuses, s.lastManifest.Sources)
	return statuses
}

// GetNextRunTime returns the next scheduled run time (StatusProvider).
func (s *Scheduler) GetNextRunTime() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
