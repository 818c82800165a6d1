package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reenignearcher/pagegate/config"
	"github.com/reenignearcher/pagegate/update"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Refresh the site's cached data artifacts once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.ValidateSecrets(); err != nil {
				return err
			}

			initLogger(&cfg.Log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Update.TimeoutSeconds)*time.Second)
			defer cancel()

			_, err = update.New(cfg).Run(ctx)
			return err
		},
	}
}
