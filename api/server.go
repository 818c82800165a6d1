// Package api serves the serve-mode status endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/reenignearcher/pagegate/config"
	"github.com/reenignearcher/pagegate/update"
)

// StatusProvider supplies run status for the API endpoints.
type StatusProvider interface {
	GetRunCount() int
	GetFailCount() int
	GetLastRunTime() time.Time
	GetLastOutcome() string
	GetNextRunTime() time.Time
	GetSourceStatuses() []update.SourceStatus
}

// Server is the status API server.
type Server struct {
	config         *config.WebAPIConfig
	appConfig      *config.Config
	httpServer     *http.Server
	statusProvider StatusProvider
	startTime      time.Time
	mu             sync.RWMutex
}

// NewServer creates a new status API server.
func NewServer(cfg *config.WebAPIConfig, appCfg *config.Config) *Server {
	return &Server{
		config:    cfg,
		appConfig: appCfg,
		startTime: time.Now(),
	}
}

// SetStatusProvider sets the status provider.
func (s *Server) SetStatusProvider(provider StatusProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusProvider = provider
}

// Start starts the API server.
func (s *Server) Start() error {
	if !s.config.Enabled {
		slog.Info("status API server is disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/sources", s.handleSources)
	mux.HandleFunc("/config", s.handleConfig)

	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("status API server started", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("status API server error", "error", err)
		}
	}()

	return nil
}

// Stop stops the API server.
func (s *Server) Stop() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("failed to stop status API server", "error", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"service": "pagegate",
		"endpoints": []map[string]string{
			{"path": "/healthz", "description": "Health check"},
			{"path": "/status", "description": "Service status (uptime, run counts, last run)"},
			{"path": "/sources", "description": "Per-source results of the most recent run"},
			{"path": "/config", "description": "Public configuration"},
		},
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	provider := s.statusProvider
	s.mu.RUnlock()

	status := map[string]interface{}{
		"uptime_seconds": time.Since(s.startTime).Seconds(),
	}

	if provider != nil {
		status["run_count"] = provider.GetRunCount()
		status["fail_count"] = provider.GetFailCount()
		status["last_outcome"] = provider.GetLastOutcome()
		if lastRun := provider.GetLastRunTime(); !lastRun.IsZero() {
			status["last_run"] = lastRun.Format(time.RFC3339)
		}
		if nextRun := provider.GetNextRunTime(); !nextRun.IsZero() {
			status["next_run"] = nextRun.Format(time.RFC3339)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	provider := s.statusProvider
	s.mu.RUnlock()

	var sources []update.SourceStatus
	if provider != nil {
		sources = provider.GetSourceStatuses()
	}
	if sources == nil {
		sources = []update.SourceStatus{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sources)
}

// configResponse is the public subset of the configuration.
// Tokens and IDs never leave the process.
type configResponse struct {
	GitHub   configGitHub   `json:"github"`
	Update   configUpdate   `json:"update"`
	Schedule configSchedule `json:"schedule"`
	Sources  configSources  `json:"sources"`
	Log      configLog      `json:"log"`
	WebAPI   configWebAPI   `json:"webapi"`
}

type configGitHub struct {
	Owner string `json:"owner"`
}

type configUpdate struct {
	OutputDir      string `json:"output_dir"`
	IndentJSON     bool   `json:"indent_json"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type configSchedule struct {
	Expr                  string `json:"expr"`
	Timezone              string `json:"timezone"`
	DuplicateGuardSeconds int    `json:"duplicate_guard_seconds"`
	DryRun                bool   `json:"dry_run"`
}

type configSources struct {
	AUR         bool     `json:"aur"`
	AURPackages []string `json:"aur_packages"`
	Facebook    bool     `json:"facebook"`
	GitHub      bool     `json:"github"`
	ReadTheDocs bool     `json:"readthedocs"`
}

type configLog struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type configWebAPI struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	appCfg := s.appConfig
	s.mu.RUnlock()

	resp := configResponse{
		GitHub: configGitHub{
			Owner: appCfg.GitHub.Owner,
		},
		Update: configUpdate{
			OutputDir:      appCfg.Update.OutputDir,
			IndentJSON:     appCfg.Update.IndentJSON,
			TimeoutSeconds: appCfg.Update.TimeoutSeconds,
		},
		Schedule: configSchedule{
			Expr:                  appCfg.Schedule.Expr,
			Timezone:              appCfg.Schedule.Timezone,
			DuplicateGuardSeconds: appCfg.Schedule.DuplicateGuardSeconds,
			DryRun:                appCfg.Schedule.DryRun,
		},
		Sources: configSources{
			AUR:         appCfg.Sources.AUR.Enabled,
			AURPackages: appCfg.Sources.AUR.Packages,
			Facebook:    appCfg.Sources.Facebook.Enabled,
			GitHub:      appCfg.Sources.GitHub.Enabled,
			ReadTheDocs: appCfg.Sources.ReadTheDocs.Enabled,
		},
		Log: configLog{
			Level:  appCfg.Log.Level,
			Format: appCfg.Log.Format,
		},
		WebAPI: configWebAPI{
			Enabled: appCfg.WebAPI.Enabled,
			Host:    appCfg.WebAPI.Host,
			Port:    appCfg.WebAPI.Port,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
