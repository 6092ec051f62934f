package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/formlane/console/internal/api"
	"github.com/formlane/console/internal/api/handler"
	"github.com/formlane/console/internal/core/search"
	"github.com/formlane/console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Long: `Run the HTTP gateway: login and session endpoints, guarded console
pages, the views API, destination search, health probes, Prometheus metrics
and Swagger docs.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := configFrom(cmd)
	log := logger.Component("http")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	e := api.NewRouter(api.Deps{
		Logger:   log,
		Sessions: a.sessions,
		Guard:    a.guard,
		Table:    a.table,
		Views:    a.catalog(nil),
		Search:   search.NewIndex(a.table),
		Auth: handler.AuthOptions{
			LandingPath: a.guard.LandingPath(),
			ShortTTL:    cfg.Session.ShortTTL,
			LongTTL:     cfg.Session.LongTTL,
			Secure:      cfg.IsProduction(),
		},
		Ready:   a.readiness(),
		Metrics: true,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("upstream", cfg.Upstream.URL).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
