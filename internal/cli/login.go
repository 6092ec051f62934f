package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var (
		email    string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Create a session and print its id",
		Long: `Exchange credentials with the upstream API and persist a session.
The password is read from $CONSOLE_PASSWORD. Export the printed id as
CONSOLE_SESSION (or pass --session) to use it with fetch and palette.
Every process reading the session must share the same ENVELOPE_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, configFrom(cmd))
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			sid, sess, err := a.sessions.Login(ctx, email, os.Getenv("CONSOLE_PASSWORD"), remember)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sid)
			fmt.Fprintf(cmd.ErrOrStderr(), "logged in as %s with %d permissions\n", sess.User.Name, sess.Permissions.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&remember, "remember", false, "keep the session for the long TTL")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
