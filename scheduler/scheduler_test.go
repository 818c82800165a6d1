package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/reenignearcher/pagegate/config"
	"github.com/reenignearcher/pagegate/update"
)

// mockRunner is a mock update runner for testing.
type mockRunner struct {
	mu       sync.Mutex
	calls    int
	err      error
	manifest *update.Manifest
	block    chan struct{}
}

func (m *mockRunner) Run(_ context.Context) (*update.Manifest, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.block != nil {
		<-m.block
	}
	return m.manifest, m.err
}

func (m *mockRunner) SourceNames() []string {
	return []string{"aur", "github"}
}

func (m *mockRunner) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestScheduler(runner UpdateRunner, cfg *config.ScheduleConfig) *Scheduler {
	return &Scheduler{
		runner:  runner,
		cron:    cron.New(cron.WithLocation(time.UTC)),
		config:  cfg,
		timeout: 5 * time.Second,
	}
}

func defaultConfig() *config.ScheduleConfig {
	return &config.ScheduleConfig{
		Expr:                  "0 */6 * * *",
		DuplicateGuardSeconds: 60,
	}
}

func TestRunUpdate_Normal(t *testing.T) {
	mock := &mockRunner{manifest: &update.Manifest{RunID: "run-1"}}
	s := newTestScheduler(mock, defaultConfig())

	s.runUpdate()

	if mock.callCount() != 1 {
		t.Errorf("runner calls = %d, want 1", mock.callCount())
	}
	if s.GetRunCount() != 1 {
		t.Errorf("run count = %d, want 1", s.GetRunCount())
	}
	if s.GetLastOutcome() != "ok" {
		t.Errorf("outcome = %q, want ok", s.GetLastOutcome())
	}
	if s.GetLastRunTime().IsZero() {
		t.Error("last run time not recorded")
	}
}

func TestRunUpdate_Failure(t *testing.T) {
	mock := &mockRunner{
		err: errors.New("upstream down"),
		manifest: &update.Manifest{
			RunID:   "run-2",
			Sources: []update.SourceStatus{{Name: "aur", OK: false, Error: "upstream down"}},
		},
	}
	s := newTestScheduler(mock, defaultConfig())

	s.runUpdate()

	if s.GetLastOutcome() != "failed" {
		t.Errorf("outcome = %q, want failed", s.GetLastOutcome())
	}
	if s.GetFailCount() != 1 {
		t.Errorf("fail count = %d, want 1", s.GetFailCount())
	}

	statuses := s.GetSourceStatuses()
	if len(statuses) != 1 || statuses[0].OK {
		t.Errorf("source statuses = %+v", statuses)
	}
}

func TestRunUpdate_DuplicateGuard(t *testing.T) {
	mock := &mockRunner{manifest: &update.Manifest{}}
	s := newTestScheduler(mock, defaultConfig())

	s.runUpdate()
	s.runUpdate()

	if mock.callCount() != 1 {
		t.Errorf("runner calls = %d, want 1 (second run guarded)", mock.callCount())
	}
}

func TestRunUpdate_GuardDisabled(t *testing.T) {
	mock := &mockRunner{manifest: &update.Manifest{}}
	cfg := defaultConfig()
	cfg.DuplicateGuardSeconds = 0
	s := newTestScheduler(mock, cfg)

	s.runUpdate()
	s.runUpdate()

	if mock.callCount() != 2 {
		t.Errorf("runner calls = %d, want 2", mock.callCount())
	}
}

func TestRunUpdate_OverlapGuard(t *testing.T) {
	block := make(chan struct{})
	mock := &mockRunner{manifest: &update.Manifest{}, block: block}
	s := newTestScheduler(mock, defaultConfig())

	done := make(chan struct{})
	go func() {
		s.runUpdate()
		close(done)
	}()

	// Wait for the first run to be in flight.
	for i := 0; i < 100; i++ {
		if mock.callCount() == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	s.runUpdate() // must be skipped

	close(block)
	<-done

	if mock.callCount() != 1 {
		t.Errorf("runner calls = %d, want 1 (overlapping run skipped)", mock.callCount())
	}
}

func TestRunUpdate_DryRun(t *testing.T) {
	mock := &mockRunner{manifest: &update.Manifest{}}
	cfg := defaultConfig()
	cfg.DryRun = true
	s := newTestScheduler(mock, cfg)

	s.runUpdate()

	if mock.callCount() != 0 {
		t.Errorf("runner calls = %d, want 0 in dry-run", mock.callCount())
	}
	if s.GetLastOutcome() != "dry-run" {
		t.Errorf("outcome = %q, want dry-run", s.GetLastOutcome())
	}
}

func TestStartStop(t *testing.T) {
	mock := &mockRunner{manifest: &update.Manifest{}}
	s := New(mock, defaultConfig(), time.Second, time.UTC)

	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.GetNextRunTime().IsZero() {
		t.Error("next run time not scheduled")
	}
	s.Stop()
}

func TestStart_InvalidSchedule(t *testing.T) {
	cfg := defaultConfig()
	cfg.Expr = "not a schedule"
	s := New(&mockRunner{}, cfg, time.Second, time.UTC)

	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}
