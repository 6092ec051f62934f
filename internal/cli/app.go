package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/formlane/console/internal/api/handler"
	"github.com/formlane/console/internal/api/metrics"
	"github.com/formlane/console/internal/core/ports"
	"github.com/formlane/console/internal/core/service"
	"github.com/formlane/console/internal/infrastructure/config"
	"github.com/formlane/console/internal/infrastructure/crypto"
	"github.com/formlane/console/internal/infrastructure/db/memory"
	mongostore "github.com/formlane/console/internal/infrastructure/db/mongo"
	redisstore "github.com/formlane/console/internal/infrastructure/db/redis"
	"github.com/formlane/console/internal/infrastructure/realtime"
	"github.com/formlane/console/internal/infrastructure/rest"
	"github.com/formlane/console/internal/routes"
	"github.com/formlane/console/pkg/logger"
)

// app holds the collaborators shared by every command that touches sessions.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	observer ports.Observer

	table    *routes.Table
	store    ports.KeyValueStore
	upstream *rest.Client
	sessions *service.SessionService
	guard    *service.Guard

	closers []func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg:      cfg,
		log:      logger.Component("app"),
		observer: metrics.Recorder{},
	}

	table, err := loadTable(cfg)
	if err != nil {
		return nil, err
	}
	a.table = table

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	envelope, err := crypto.NewEnvelope(cfg.Session.Envelope, cfg.Session.EnvelopeKey, logger.Component("crypto"))
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.upstream = rest.NewClient(rest.Config{
		BaseURL: cfg.Upstream.URL,
		RPS:     cfg.Upstream.RPS,
		Burst:   cfg.Upstream.Burst,
		Logger:  logger.Component("upstream"),
	})
	a.sessions = service.NewSessionService(
		a.store, envelope, a.upstream,
		cfg.Session.ShortTTL, cfg.Session.LongTTL,
		logger.Component("session"), a.observer,
	)
	a.guard = service.NewGuard(table, service.NewTokenValidator(cfg.Guard.TokenVerifySecret), cfg.Guard.LandingPath, a.observer)
	return a, nil
}

func loadTable(cfg *config.Config) (*routes.Table, error) {
	if cfg.Guard.RoutesFile != "" {
		return routes.LoadFile(cfg.Guard.RoutesFile)
	}
	return routes.Load()
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Session.Backend {
	case "redis":
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		a.store = redisstore.NewStore(client)
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	case "mongo":
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      a.cfg.Mongo.URI,
			Database: a.cfg.Mongo.Database,
		})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Disconnect)
		store := mongostore.NewStore(db, a.cfg.Mongo.Collection)
		if err := store.EnsureIndexes(ctx); err != nil {
			a.Close(ctx)
			return err
		}
		a.store = store
	case "memory":
		a.store = memory.NewStore()
	default:
		return fmt.Errorf("unknown session backend %q", a.cfg.Session.Backend)
	}
	a.log.Info().Str("backend", a.cfg.Session.Backend).Msg("session store ready")
	return nil
}

// catalog builds the view catalog. shared, when non-nil, serves every view;
// otherwise HTTP renders open a private connection per request.
func (a *app) catalog(shared ports.Realtime) *service.Catalog {
	cfg := service.CatalogConfig{
		Upstream: a.upstream,
		Shared:   shared,
		Timeout:  a.cfg.Upstream.Timeout,
		Logger:   logger.Component("fetch"),
		Observer: a.observer,
	}
	if shared == nil && a.cfg.Upstream.RealtimeURL != "" {
		cfg.Realtime = realtime.Factory{URL: a.cfg.Upstream.RealtimeURL, Logger: logger.Component("realtime")}
	}
	return service.NewCatalog(cfg)
}

func (a *app) readiness() map[string]handler.Pinger {
	return map[string]handler.Pinger{"sessions": a.store}
}

func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn().Err(err).Msg("closing resource")
		}
	}
	a.closers = nil
}
