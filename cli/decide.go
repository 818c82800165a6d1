package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reenignearcher/pagegate/config"
	"github.com/reenignearcher/pagegate/trigger"
)

func newDecideCmd() *cobra.Command {
	var (
		eventName     string
		ref           string
		defaultBranch string
	)

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Decide whether this run should preview, publish, or skip",
		Long: "Prints one of preview, publish, or skip for the current event. " +
			"The event is read from the GitHub Actions environment; flags override it for local use.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if defaultBranch == "" {
				defaultBranch = cfg.Trigger.DefaultBranch
			}

			var triggerCtx trigger.Context
			if eventName != "" {
				kind, err := trigger.ParseEventKind(eventName)
				if err != nil {
					return err
				}
				branch := trigger.BranchFromRef(ref)
				triggerCtx = trigger.Context{
					EventKind:       kind,
					BranchRef:       ref,
					IsDefaultBranch: branch != "" && branch == defaultBranch,
				}
			} else {
				triggerCtx, err = trigger.FromEnvironment(defaultBranch)
				if err != nil {
					return err
				}
			}

			action, err := trigger.Decide(triggerCtx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(action))
			return nil
		},
	}

	cmd.Flags().StringVar(&eventName, "event", "", "event name (pull_request, push, schedule, workflow_dispatch)")
	cmd.Flags().StringVar(&ref, "ref", "", "git ref, e.g. refs/heads/master")
	cmd.Flags().StringVar(&defaultBranch, "default-branch", "", "repository default branch")

	return cmd
}
