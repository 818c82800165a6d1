package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reenignearcher/pagegate/api"
	"github.com/reenignearcher/pagegate/config"
	"github.com/reenignearcher/pagegate/scheduler"
	"github.com/reenignearcher/pagegate/update"
)

func newServeCmd() *cobra.Command {
	var runOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run updates on a cron schedule with a status API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.ValidateSecrets(); err != nil {
				return err
			}

			initLogger(&cfg.Log)

			loc, err := time.LoadLocation(cfg.Schedule.Timezone)
			if err != nil {
				return err
			}

			updater := update.New(cfg)
			timeout := time.Duration(cfg.Update.TimeoutSeconds) * time.Second
			sched := scheduler.New(updater, &cfg.Schedule, timeout, loc)

			apiServer := api.NewServer(&cfg.WebAPI, cfg)
			apiServer.SetStatusProvider(sched)
			if err := apiServer.Start(); err != nil {
				return err
			}

			if err := sched.Start(); err != nil {
				apiServer.Stop()
				return err
			}

			slog.Info("pagegate started",
				"schedule", cfg.Schedule.Expr,
				"timezone", cfg.Schedule.Timezone,
				"duplicate_guard_seconds", cfg.Schedule.DuplicateGuardSeconds,
				"dry_run", cfg.Schedule.DryRun,
				"sources", updater.SourceNames(),
			)

			if runOnStart {
				go sched.RunNow()
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			sig := <-sigChan
			slog.Info("received signal, shutting down", "signal", sig.String())

			sched.Stop()
			apiServer.Stop()

			slog.Info("pagegate stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run an update immediately on startup")

	return cmd
}
