package update

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/reenignearcher/pagegate/store"
)

// fakeSource is a test Source with a scripted outcome.
type fakeSource struct {
	name  string
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Update(_ context.Context, _ *store.Store) error {
	f.calls++
	return f.err
}

func readManifest(t *testing.T, dir string) Manifest {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest not parseable: %v", err)
	}
	return m
}

func TestRun_AllSourcesSucceed(t *testing.T) {
	dir := t.TempDir()
	a := &fakeSource{name: "a"}
	b := &fakeSource{name: "b"}
	u := NewWithSources(store.New(dir, false), a, b)

	manifest, err := u.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", a.calls, b.calls)
	}
	if manifest.RunID == "" {
		t.Error("RunID is empty")
	}
	if len(manifest.Sources) != 2 {
		t.Fatalf("manifest sources = %d, want 2", len(manifest.Sources))
	}
	for _, status := range manifest.Sources {
		if !status.OK {
			t.Errorf("source %s not OK: %s", status.Name, status.Error)
		}
	}

	written := readManifest(t, dir)
	if written.RunID != manifest.RunID {
		t.Errorf("written RunID = %q, want %q", written.RunID, manifest.RunID)
	}
}

func TestRun_FailureDoesNotStopRemainingSources(t *testing.T) {
	dir := t.TempDir()
	failing := &fakeSource{name: "broken", err: errors.New("upstream down")}
	after := &fakeSource{name: "after"}
	u := NewWithSources(store.New(dir, false), failing, after)

	manifest, err := u.Run(context.Background())
	if err == nil {
		t.Fatal("expected error from failing source")
	}
	if after.calls != 1 {
		t.Errorf("source after failure not run: calls = %d", after.calls)
	}

	if manifest.Sources[0].OK || manifest.Sources[0].Error == "" {
		t.Errorf("failing source status = %+v", manifest.Sources[0])
	}
	if !manifest.Sources[1].OK {
		t.Errorf("healthy source marked failed: %+v", manifest.Sources[1])
	}

	// The manifest is still written so a failed run can be inspected.
	written := readManifest(t, dir)
	if len(written.Sources) != 2 {
		t.Errorf("written manifest sources = %d, want 2", len(written.Sources))
	}
}

func TestRun_CancelledContext(t *testing.T) {
	src := &fakeSource{name: "never"}
	u := NewWithSources(store.New(t.TempDir(), false), src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := u.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if src.calls != 0 {
		t.Errorf("source ran despite cancelled context")
	}
}

func TestSourceNames(t *testing.T) {
	u := NewWithSources(store.New(t.TempDir(), false),
		&fakeSource{name: "aur"}, &fakeSource{name: "github"})

	names := u.SourceNames()
	if len(names) != 2 || names[0] != "aur" || names[1] != "github" {
		t.Errorf("SourceNames() = %v", names)
	}
}
