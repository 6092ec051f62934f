package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/fetch"
	"github.com/formlane/console/internal/core/ports"
)

// Factory builds a view on demand. Nothing is constructed until a guarded
// request asks for it.
type Factory func() Renderer

// CatalogConfig wires a Catalog.
type CatalogConfig struct {
	Upstream ports.Upstream
	// Shared, when set, serves every view over one long-lived connection.
	Shared ports.Realtime
	// Realtime opens a private connection per render when Shared is nil.
	Realtime ports.RealtimeFactory
	Timeout  time.Duration
	Logger   zerolog.Logger
	Observer ports.Observer
}

// Catalog maps view names from the route table to their factories.
type Catalog struct {
	cfg       CatalogConfig
	factories map[string]Factory
}

// NewCatalog returns a catalog with the console's built-in views registered.
func NewCatalog(cfg CatalogConfig) *Catalog {
	if cfg.Timeout <= 0 {
		cfg.Timeout = fetch.DefaultTimeout
	}
	if cfg.Observer == nil {
		cfg.Observer = ports.NopObserver{}
	}
	c := &Catalog{cfg: cfg, factories: make(map[string]Factory)}
	registerBuiltins(c)
	return c
}

// Register adds or replaces a view factory.
func (c *Catalog) Register(name string, f Factory) {
	c.factories[name] = f
}

// Names lists registered views.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.factories))
	for name := range c.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Render builds the view named by an admitted decision and waits for its
// data. Routes without a view render from the session alone.
func (c *Catalog) Render(ctx context.Context, d domain.Decision, sess *domain.Session) (ViewPayload, error) {
	if !d.Admitted() {
		return ViewPayload{}, domain.ErrPermissionDenied
	}
	if d.Route.View == "" {
		return ViewPayload{Title: d.Route.Title, Source: string(fetch.SourceNone)}, nil
	}
	factory, ok := c.factories[d.Route.View]
	if !ok {
		return ViewPayload{}, fmt.Errorf("%w: %s", domain.ErrUnknownView, d.Route.View)
	}

	env := c.env(d.Route.View, sess, d.Params)
	out, err := factory().Render(ctx, env)
	if err != nil {
		return ViewPayload{}, err
	}
	out.Title = d.Route.Title
	return out, nil
}

func (c *Catalog) env(name string, sess *domain.Session, params map[string]string) ViewEnv {
	env := ViewEnv{
		Name:     name,
		Session:  sess,
		Params:   params,
		Upstream: c.cfg.Upstream,
		Timeout:  c.cfg.Timeout,
		Logger:   c.cfg.Logger,
		Observer: c.cfg.Observer,
	}
	switch {
	case c.cfg.Shared != nil:
		env.Realtime = c.cfg.Shared
	case c.cfg.Realtime != nil:
		env.Realtime = c.cfg.Realtime.New(sess.Token)
		env.Private = true
	}
	return env
}

func registerBuiltins(c *Catalog) {
	c.Register("dashboard", func() Renderer {
		return RecordView[domain.DashboardStats]{Resource: "dashboard-stats", Path: "/dashboard/stats", Scope: ScopeCompany}
	})
	c.Register("companies", func() Renderer {
		return ListView[domain.Company]{Resource: "companies", Singular: "company", Path: "/companies",
			Key: func(v domain.Company) string { return v.ID }}
	})
	c.Register("company-employees", func() Renderer {
		return ListView[domain.Account]{Resource: "company-employees", Singular: "employee", Path: "/companies/:id/employees",
			Scope: ScopeCompany, Key: func(v domain.Account) string { return v.ID }}
	})
	c.Register("templates", func() Renderer {
		return ListView[domain.Template]{Resource: "templates", Singular: "template", Path: "/templates",
			Key: func(v domain.Template) string { return v.ID }}
	})
	c.Register("email-templates", func() Renderer {
		return ListView[domain.Template]{Resource: "email-templates", Singular: "email-template", Path: "/templates/email",
			Key: func(v domain.Template) string { return v.ID }}
	})
	c.Register("inbox", func() Renderer {
		return ListView[domain.InboxItem]{Resource: "inbox", Singular: "inbox-item", Path: "/inbox",
			Scope: ScopeUser, Key: func(v domain.InboxItem) string { return v.ID }}
	})
	c.Register("users", func() Renderer {
		return ListView[domain.Account]{Resource: "users", Singular: "user", Path: "/users",
			Key: func(v domain.Account) string { return v.ID }}
	})
	c.Register("permissions", func() Renderer {
		return ListView[domain.Permission]{Resource: "permissions", Singular: "permission", Path: "/permissions",
			Key: func(v domain.Permission) string { return v.ID }}
	})
	c.Register("credentials", func() Renderer {
		return ListView[domain.Credential]{Resource: "credentials", Singular: "credential", Path: "/credentials",
			Key: func(v domain.Credential) string { return v.ID }}
	})
	c.Register("plans", func() Renderer {
		return ListView[domain.Plan]{Resource: "plans", Singular: "plan", Path: "/plans",
			Key: func(v domain.Plan) string { return v.ID }}
	})
	c.Register("subscriptions", func() Renderer {
		return ListView[domain.Subscription]{Resource: "subscriptions", Singular: "subscription", Path: "/subscriptions",
			Key: func(v domain.Subscription) string { return v.ID }}
	})
}
