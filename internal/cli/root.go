// Package cli is the console's command line: the HTTP gateway, route table
// inspection, one-shot view fetches and the search palette.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/formlane/console/internal/infrastructure/config"
	"github.com/formlane/console/pkg/logger"
)

type cfgKey struct{}

// NewRootCmd assembles the command tree. Configuration is read from the
// environment once, before any subcommand runs.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "console",
		Short: "Permission-gated admin console gateway",
		Long: `console fronts the platform's REST and realtime APIs with a session
layer, a route guard and dual-channel views.

Configuration is read from environment variables (UPSTREAM_URL,
REALTIME_URL, SESSION_BACKEND, ENVELOPE_KEY, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction()})
			cmd.SetContext(context.WithValue(cmd.Context(), cfgKey{}, cfg))
			return nil
		},
	}

	root.PersistentFlags().String("session", os.Getenv("CONSOLE_SESSION"), "session id (defaults to $CONSOLE_SESSION)")

	root.AddCommand(
		newServeCmd(),
		newRoutesCmd(),
		newLoginCmd(),
		newFetchCmd(),
		newPaletteCmd(),
	)
	return root
}

// ExecuteContext runs the command tree with ctx.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func configFrom(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(cfgKey{}).(*config.Config)
	return cfg
}
