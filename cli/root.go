// Package cli defines the pagegate commands.
package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reenignearcher/pagegate/config"
)

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pagegate",
		Short:         "GitHub Pages data pipeline gate and updater",
		Long:          "pagegate decides what a CI run should do with the site (preview, publish, or skip) and refreshes the site's cached data artifacts from external APIs.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newDecideCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute runs the root command.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

// initLogger re-initializes the default logger with the configured
// level and format.
func initLogger(logCfg *config.LogConfig) {
	level := logCfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(logCfg.Format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
