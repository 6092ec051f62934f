package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/routes"
)

func admitted(t *testing.T, path string, sess *domain.Session) domain.Decision {
	t.Helper()
	d := NewGuard(routes.MustLoad(), NewTokenValidator(""), "", nil).Admit(path, sess)
	if !d.Admitted() {
		t.Fatalf("%s: expected admit, got %s", path, d.Outcome)
	}
	return d
}

func adminSession() *domain.Session {
	return &domain.Session{
		Token:       "opaque-token",
		User:        domain.User{ID: "u1", CompanyID: "c1"},
		Permissions: domain.NewPermissionSet("view_companies", "view_company_employee", "view_plans", "view_users"),
	}
}

func TestCatalog_BuiltinsCoverRouteTable(t *testing.T) {
	c := NewCatalog(CatalogConfig{Logger: zerolog.Nop()})
	registered := make(map[string]bool)
	for _, name := range c.Names() {
		registered[name] = true
	}
	for _, r := range routes.MustLoad().All() {
		if r.View != "" && !registered[r.View] {
			t.Errorf("route %s names unregistered view %q", r.Path, r.View)
		}
	}
}

func TestCatalog_Render_FallbackWithoutRealtime(t *testing.T) {
	up := newStubUpstream()
	up.responses["/companies"] = `{"data":[{"id":"1","name":"Acme"},{"id":"2","name":"Globex"}]}`
	obs := newCountingObserver()
	c := NewCatalog(CatalogConfig{Upstream: up, Timeout: time.Hour, Logger: zerolog.Nop(), Observer: obs})
	sess := adminSession()

	out, err := c.Render(context.Background(), admitted(t, "/companies", sess), sess)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	companies, ok := out.Data.([]domain.Company)
	if !ok || len(companies) != 2 {
		t.Fatalf("unexpected data: %#v", out.Data)
	}
	if out.Source != "fallback" || out.Title != "Companies" || out.Banner != "" {
		t.Fatalf("unexpected payload: %+v", out)
	}
	if obs.resolved["companies"] != "fallback" {
		t.Fatalf("expected fallback resolution to be observed, got %v", obs.resolved)
	}
	if call := up.lastCall(); call.Token != "opaque-token" {
		t.Fatalf("fallback must carry the session token, got %q", call.Token)
	}
}

func TestCatalog_Render_CompanyScopeUsesPathParam(t *testing.T) {
	up := newStubUpstream()
	up.responses["/companies/42/employees"] = `[{"id":"e1","name":"Grace"}]`
	c := NewCatalog(CatalogConfig{Upstream: up, Logger: zerolog.Nop()})
	sess := adminSession()

	out, err := c.Render(context.Background(), admitted(t, "/companies/42/employees", sess), sess)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if employees := out.Data.([]domain.Account); len(employees) != 1 || employees[0].ID != "e1" {
		t.Fatalf("unexpected data: %#v", out.Data)
	}
}

func TestCatalog_Render_FailureBecomesBanner(t *testing.T) {
	up := newStubUpstream()
	up.errs["/plans"] = &domain.TransportError{Method: "GET", Path: "/plans", Status: 502, Message: "plans service unavailable"}
	c := NewCatalog(CatalogConfig{Upstream: up, Logger: zerolog.Nop()})
	sess := adminSession()

	out, err := c.Render(context.Background(), admitted(t, "/plans", sess), sess)
	if err != nil {
		t.Fatalf("fallback failure must render, got %v", err)
	}
	if out.Banner != "plans service unavailable" {
		t.Fatalf("unexpected banner %q", out.Banner)
	}
	if plans := out.Data.([]domain.Plan); len(plans) != 0 {
		t.Fatalf("expected empty list, got %v", plans)
	}
}

func TestCatalog_Render_PrivateRealtimeWins(t *testing.T) {
	rt := newAnsweringRealtime(map[string]string{
		"get-all-users": `[{"id":"u1","name":"Ada"}]`,
	})
	up := newStubUpstream()
	c := NewCatalog(CatalogConfig{Upstream: up, Realtime: stubFactory{rt: rt}, Timeout: time.Hour, Logger: zerolog.Nop()})
	sess := adminSession()

	out, err := c.Render(context.Background(), admitted(t, "/users", sess), sess)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out.Source != "realtime" {
		t.Fatalf("expected realtime source, got %s", out.Source)
	}
	if up.callCount() != 0 {
		t.Fatal("fallback must not be issued")
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if !rt.closed {
		t.Fatal("private connection must be closed after render")
	}
}

func TestCatalog_Render_SharedRealtimeStaysOpen(t *testing.T) {
	rt := newAnsweringRealtime(map[string]string{
		"get-dashboard-stats": `{"companies":3,"users":9}`,
	})
	c := NewCatalog(CatalogConfig{Shared: rt, Timeout: time.Hour, Logger: zerolog.Nop()})
	sess := adminSession()

	out, err := c.Render(context.Background(), admitted(t, "/dashboard", sess), sess)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	stats := out.Data.(domain.DashboardStats)
	if stats.Companies != 3 || stats.Users != 9 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if rt.closed {
		t.Fatal("shared connection must stay open")
	}
}

func TestCatalog_Render_Errors(t *testing.T) {
	c := NewCatalog(CatalogConfig{Logger: zerolog.Nop()})
	sess := adminSession()

	denied := domain.Decision{Outcome: domain.OutcomeRedirectLanding}
	if _, err := c.Render(context.Background(), denied, sess); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	unknown := domain.Decision{Route: domain.RouteDescriptor{Path: "/x", View: "nope"}}
	if _, err := c.Render(context.Background(), unknown, sess); !errors.Is(err, domain.ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}

	out, err := c.Render(context.Background(), admitted(t, "/profile", sess), sess)
	if err != nil || out.Title != "Profile" || out.Data != nil {
		t.Fatalf("view-less route: %+v %v", out, err)
	}
}

func TestDecodeList(t *testing.T) {
	for _, raw := range []string{`[{"id":"1"}]`, `{"data":[{"id":"1"}]}`, " \n[{\"id\":\"1\"}]"} {
		got, err := decodeList[domain.Plan]([]byte(raw))
		if err != nil || len(got) != 1 || got[0].ID != "1" {
			t.Fatalf("decodeList(%q) = %v, %v", raw, got, err)
		}
	}
	if _, err := decodeList[domain.Plan]([]byte(`"nope"`)); err == nil {
		t.Fatal("expected error for scalar payload")
	}
}
