// Package update refreshes the site's cached data artifacts from external
// APIs: AUR, Facebook, GitHub, and ReadTheDocs.
package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/reenignearcher/pagegate/config"
	"github.com/reenignearcher/pagegate/fetch"
	"github.com/reenignearcher/pagegate/github"
	"github.com/reenignearcher/pagegate/store"
)

// Source refreshes one family of artifacts.
type Source interface {
	Name() string
	Update(ctx context.Context, st *store.Store) error
}

// SourceStatus records the outcome of one source in a run.
type SourceStatus struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Manifest describes a completed update run. It is written to
// manifest.json so the publish step can verify what it ships.
type Manifest struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Sources    []SourceStatus `json:"sources"`
}

// Updater runs all enabled sources against an artifact store.
type Updater struct {
	sources []Source
	store   *store.Store
}

// New builds an Updater from configuration. Sources share one retrying
// HTTP client; the GitHub source gets its own authenticated client.
func New(cfg *config.Config) *Updater {
	timeout := time.Duration(cfg.Update.TimeoutSeconds) * time.Second
	httpClient := fetch.NewClient(timeout)

	var sources []Source
	if cfg.Sources.AUR.Enabled {
		sources = append(sources, NewAURSource(httpClient, cfg.Sources.AUR.Packages))
	}
	if cfg.Sources.Facebook.Enabled {
		sources = append(sources, NewFacebookSource(httpClient, cfg.Facebook))
	}
	if cfg.Sources.GitHub.Enabled {
		ghClient := github.NewClient(cfg.GitHub.Token, timeout)
		sources = append(sources, NewGitHubSource(ghClient, httpClient, cfg.GitHub.Owner))
	}
	if cfg.Sources.ReadTheDocs.Enabled {
		sources = append(sources, NewReadTheDocsSource(httpClient, cfg.ReadTheDocs.Token))
	}

	return &Updater{
		sources: sources,
		store:   store.New(cfg.Update.OutputDir, cfg.Update.IndentJSON),
	}
}

// NewWithSources builds an Updater with explicit sources.
func NewWithSources(st *store.Store, sources ...Source) *Updater {
	return &Updater{sources: sources, store: st}
}

// SourceNames returns the names of the enabled sources.
func (u *Updater) SourceNames() []string {
	names := make([]string, 0, len(u.sources))
	for _, src := range u.sources {
		names = append(names, src.Name())
	}
	return names
}

// Run refreshes every enabled source and writes the run manifest.
// A source failure does not stop the remaining sources; all failures
// are returned joined, alongside the manifest.
func (u *Updater) Run(ctx context.Context) (*Manifest, error) {
	manifest := &Manifest{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	slog.Info("update run started", "run_id", manifest.RunID, "sources", len(u.sources))

	var errs []error
	for _, src := range u.sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		start := time.Now()
		err := src.Update(ctx, u.store)
		status := SourceStatus{
			Name:       src.Name(),
			OK:         err == nil,
			DurationMS: time.Since(start).Milliseconds(),
		}
		if err != nil {
			status.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			slog.Error("source update failed",
				"run_id", manifest.RunID,
				"source", src.Name(),
				"error", err,
			)
		} else {
			slog.Info("source updated",
				"run_id", manifest.RunID,
				"source", src.Name(),
				"duration", time.Since(start).Round(time.Millisecond).String(),
			)
		}
		manifest.Sources = append(manifest.Sources, status)
	}

	manifest.FinishedAt = time.Now().UTC()

	if err := u.store.WriteJSON("manifest", manifest); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return manifest, err
	}

	slog.Info("update run completed",
		"run_id", manifest.RunID,
		"duration", manifest.FinishedAt.Sub(manifest.StartedAt).Round(time.Millisecond).String(),
	)
	return manifest, nil
}
