package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/ports"
	"github.com/formlane/console/internal/infrastructure/realtime"
	"github.com/formlane/console/pkg/logger"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <path>",
		Short: "Render one console route as JSON",
		Long: `Admit <path> with the route guard and render its view, racing the
realtime channel against the REST fallback exactly as the gateway does.`,
		Example: `  console fetch /companies
  console fetch /companies/42/employees --session $SID`,
		Args: cobra.ExactArgs(1),
		RunE: runFetch,
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := configFrom(cmd)

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	sess, err := loadSession(cmd, a)
	if err != nil {
		return err
	}

	d := a.guard.Admit(args[0], sess)
	if !d.Admitted() {
		if d.Outcome == domain.OutcomeRedirectLogin {
			return fmt.Errorf("%w: run console login", domain.ErrAuthRequired)
		}
		return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, args[0])
	}

	var shared ports.Realtime
	if cfg.Upstream.RealtimeURL != "" {
		client := realtime.NewClient(realtime.Config{
			URL:     cfg.Upstream.RealtimeURL,
			Token:   sess.Token,
			Workers: 4,
			Logger:  logger.Component("realtime"),
		})
		defer client.Close()
		shared = client
	}

	payload, err := a.catalog(shared).Render(ctx, d, sess)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func loadSession(cmd *cobra.Command, a *app) (*domain.Session, error) {
	sid, _ := cmd.Flags().GetString("session")
	if sid == "" {
		return nil, fmt.Errorf("%w: no session id, run console login", domain.ErrAuthRequired)
	}
	return a.sessions.Load(cmd.Context(), sid)
}
