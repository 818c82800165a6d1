package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration.
type Config struct {
	GitHub      GitHubConfig
	Facebook    FacebookConfig
	ReadTheDocs ReadTheDocsConfig
	Update      UpdateConfig
	Schedule    ScheduleConfig
	Trigger     TriggerConfig
	Sources     SourcesConfig
	Log         LogConfig
	WebAPI      WebAPIConfig
}

// GitHubConfig holds GitHub API credentials.
type GitHubConfig struct {
	Token string
	Owner string
}

// FacebookConfig holds Facebook Graph API credentials.
type FacebookConfig struct {
	Token   string
	GroupID string
	PageID  string
}

// ReadTheDocsConfig holds the ReadTheDocs API token.
type ReadTheDocsConfig struct {
	Token string
}

// UpdateConfig holds artifact output settings.
type UpdateConfig struct {
	OutputDir      string
	IndentJSON     bool
	TimeoutSeconds int
}

// ScheduleConfig holds serve-mode scheduling settings.
type ScheduleConfig struct {
	Expr                  string
	Timezone              string
	DuplicateGuardSeconds int
	DryRun                bool
}

// TriggerConfig holds trigger evaluation settings.
type TriggerConfig struct {
	DefaultBranch string
}

// SourcesConfig selects which data sources an update run refreshes.
// It can be overridden by a YAML file (PAGEGATE_SOURCES_FILE).
type SourcesConfig struct {
	AUR         AURSourceConfig `yaml:"aur"`
	Facebook    SourceToggle    `yaml:"facebook"`
	GitHub      SourceToggle    `yaml:"github"`
	ReadTheDocs SourceToggle    `yaml:"readthedocs"`
}

// AURSourceConfig configures the AUR source.
type AURSourceConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Packages []string `yaml:"packages"`
}

// SourceToggle enables or disables a source.
type SourceToggle struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// SlogLevel converts the Level string to slog.Level.
func (lc *LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(lc.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WebAPIConfig holds status API server settings.
type WebAPIConfig struct {
	Enabled bool
	Host    string
	Port    int
}

// scheduleParser validates 5-field standard cron expressions.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Load reads configuration from PAGEGATE_* environment variables and the
// optional sources file. Secrets are not validated here; call
// ValidateSecrets before running an update.
func Load() (*Config, error) {
	indentJSON, err := envBool("PAGEGATE_INDENT_JSON", false)
	if err != nil {
		return nil, fmt.Errorf("invalid PAGEGATE_INDENT_JSON: %w", err)
	}

	timeoutSeconds, err := envInt("PAGEGATE_UPDATE_TIMEOUT_SECONDS", 600)
	if err != nil {
		return nil, fmt.Errorf("invalid PAGEGATE_UPDATE_TIMEOUT_SECONDS: %w", err)
	}

	duplicateGuardSeconds, err := envInt("PAGEGATE_DUPLICATE_GUARD_SECONDS", 300)
	if err != nil {
		return nil, fmt.Errorf("invalid PAGEGATE_DUPLICATE_GUARD_SECONDS: %w", err)
	}

	dryRun, err := envBool("PAGEGATE_DRY_RUN", false)
	if err != nil {
		return nil, fmt.Errorf("invalid PAGEGATE_DRY_RUN: %w", err)
	}

	webapiEnabled, err := envBool("PAGEGATE_WEBAPI_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("invalid PAGEGATE_WEBAPI_ENABLED: %w", err)
	}

	webapiPort, err := envInt("PAGEGATE_WEBAPI_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PAGEGATE_WEBAPI_PORT: %w", err)
	}

	config := &Config{
		GitHub: GitHubConfig{
			Token: envStr("PAGEGATE_GITHUB_TOKEN", os.Getenv("GH_AUTH_TOKEN")),
			Owner: envStr("PAGEGATE_GITHUB_OWNER", os.Getenv("GITHUB_REPOSITORY_OWNER")),
		},
		Facebook: FacebookConfig{
			Token:   os.Getenv("PAGEGATE_FACEBOOK_TOKEN"),
			GroupID: os.Getenv("PAGEGATE_FACEBOOK_GROUP_ID"),
			PageID:  os.Getenv("PAGEGATE_FACEBOOK_PAGE_ID"),
		},
		ReadTheDocs: ReadTheDocsConfig{
			Token: os.Getenv("PAGEGATE_READTHEDOCS_TOKEN"),
		},
		Update: UpdateConfig{
			OutputDir:      envStr("PAGEGATE_OUTPUT_DIR", "."),
			IndentJSON:     indentJSON,
			TimeoutSeconds: timeoutSeconds,
		},
		Schedule: ScheduleConfig{
			Expr:                  envStr("PAGEGATE_SCHEDULE", "0 */6 * * *"),
			Timezone:              envStr("PAGEGATE_TIMEZONE", "UTC"),
			DuplicateGuardSeconds: duplicateGuardSeconds,
			DryRun:                dryRun,
		},
		Trigger: TriggerConfig{
			DefaultBranch: envStr("PAGEGATE_DEFAULT_BRANCH", "master"),
		},
		Sources: defaultSources(),
		Log: LogConfig{
			Level:  envStr("PAGEGATE_LOG_LEVEL", "info"),
			Format: envStr("PAGEGATE_LOG_FORMAT", "json"),
		},
		WebAPI: WebAPIConfig{
			Enabled: webapiEnabled,
			Host:    envStr("PAGEGATE_WEBAPI_HOST", "0.0.0.0"),
			Port:    webapiPort,
		},
	}

	if path := os.Getenv("PAGEGATE_SOURCES_FILE"); path != "" {
		if err := config.loadSourcesFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func defaultSources() SourcesConfig {
	return SourcesConfig{
		AUR:         AURSourceConfig{Enabled: true, Packages: []string{"sunshine"}},
		Facebook:    SourceToggle{Enabled: true},
		GitHub:      SourceToggle{Enabled: true},
		ReadTheDocs: SourceToggle{Enabled: true},
	}
}

// loadSourcesFile replaces the source selection with the YAML file contents.
func (c *Config) loadSourcesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read sources file: %w", err)
	}

	var sources SourcesConfig
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return fmt.Errorf("failed to parse sources file (%s): %w", path, err)
	}

	c.Sources = sources
	return nil
}

// ValidateSecrets checks that every enabled source has its credentials.
func (c *Config) ValidateSecrets() error {
	if c.Sources.AUR.Enabled && len(c.Sources.AUR.Packages) == 0 {
		return errors.New("aur source is enabled but no packages are configured")
	}
	if c.Sources.Facebook.Enabled {
		if c.Facebook.Token == "" {
			return errors.New("PAGEGATE_FACEBOOK_TOKEN is required for the facebook source")
		}
		if c.Facebook.GroupID == "" || c.Facebook.PageID == "" {
			return errors.New("PAGEGATE_FACEBOOK_GROUP_ID and PAGEGATE_FACEBOOK_PAGE_ID are required for the facebook source")
		}
	}
	if c.Sources.GitHub.Enabled {
		if c.GitHub.Token == "" {
			return errors.New("PAGEGATE_GITHUB_TOKEN is required for the github source")
		}
		if c.GitHub.Owner == "" {
			return errors.New("PAGEGATE_GITHUB_OWNER is required for the github source")
		}
	}
	if c.Sources.ReadTheDocs.Enabled && c.ReadTheDocs.Token == "" {
		return errors.New("PAGEGATE_READTHEDOCS_TOKEN is required for the readthedocs source")
	}
	return nil
}

func (c *Config) validate() error {
	if c.Update.OutputDir == "" {
		return errors.New("PAGEGATE_OUTPUT_DIR must not be empty")
	}
	if c.Update.TimeoutSeconds <= 0 {
		return errors.New("PAGEGATE_UPDATE_TIMEOUT_SECONDS must be positive")
	}
	if c.Schedule.DuplicateGuardSeconds < 0 {
		return errors.New("PAGEGATE_DUPLICATE_GUARD_SECONDS must not be negative")
	}
	if _, err := scheduleParser.Parse(c.Schedule.Expr); err != nil {
		return fmt.Errorf("invalid PAGEGATE_SCHEDULE (%q): %w", c.Schedule.Expr, err)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid PAGEGATE_TIMEZONE (%q): %w", c.Schedule.Timezone, err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
		// OK
	default:
		return fmt.Errorf("invalid PAGEGATE_LOG_LEVEL (%q): must be one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
		// OK
	default:
		return fmt.Errorf("invalid PAGEGATE_LOG_FORMAT (%q): must be one of json, text", c.Log.Format)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("expected integer for %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("expected boolean for %s: %w", key, err)
	}
	return b, nil
}
