package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formlane/console/internal/cli/palette"
	"github.com/formlane/console/internal/core/search"
)

func newPaletteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "palette",
		Short: "Search destinations interactively",
		Long: `Open a command palette over the route table. Only destinations the
session may reach are offered. The chosen path is printed on exit.

Keys: / focus, up/down select, enter open, esc clear, tab dismiss, ctrl+c quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), configFrom(cmd))
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			sess, err := loadSession(cmd, a)
			if err != nil {
				return err
			}

			chosen, err := palette.Run(cmd.Context(), search.NewIndex(a.table), sess, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if chosen != "" {
				fmt.Fprintln(cmd.OutOrStdout(), chosen)
			}
			return nil
		},
	}
}
