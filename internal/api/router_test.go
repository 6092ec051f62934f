package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/formlane/console/internal/api/handler"
	"github.com/formlane/console/internal/api/middleware"
	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/search"
	"github.com/formlane/console/internal/core/service"
	"github.com/formlane/console/internal/routes"
)

type fixedSessions struct {
	sessions map[string]*domain.Session
}

func (f *fixedSessions) Login(context.Context, string, string, bool) (string, *domain.Session, error) {
	return "", nil, domain.ErrInvalidCredentials
}

func (f *fixedSessions) Load(_ context.Context, sid string) (*domain.Session, error) {
	if s, ok := f.sessions[sid]; ok {
		return s, nil
	}
	return nil, domain.ErrAuthRequired
}

func (f *fixedSessions) Refresh(ctx context.Context, sid string) (*domain.Session, error) {
	return f.Load(ctx, sid)
}

func (f *fixedSessions) Clear(_ context.Context, sid string) error {
	delete(f.sessions, sid)
	return nil
}

type titleRenderer struct{}

func (titleRenderer) Render(_ context.Context, d domain.Decision, _ *domain.Session) (service.ViewPayload, error) {
	return service.ViewPayload{View: d.Route.View, Title: d.Route.Title, Source: "fallback"}, nil
}

func newTestRouter() *echo.Echo {
	table := routes.MustLoad()
	sessions := &fixedSessions{sessions: map[string]*domain.Session{
		"admin": {Token: "t", Permissions: domain.NewPermissionSet("view_companies", "view_users")},
	}}
	return NewRouter(Deps{
		Logger:   zerolog.Nop(),
		Sessions: sessions,
		Guard:    service.NewGuard(table, service.NewTokenValidator(""), "", nil),
		Table:    table,
		Views:    titleRenderer{},
		Search:   search.NewIndex(table),
		Ready:    map[string]handler.Pinger{},
	})
}

func do(e *echo.Echo, method, path, sid string, wantJSON bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: sid})
	}
	if wantJSON {
		req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	e := newTestRouter()
	if rec := do(e, http.MethodGet, "/health", "", false); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/health/ready", "", false); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_RootRedirectsToLanding(t *testing.T) {
	rec := do(newTestRouter(), http.MethodGet, "/", "", false)
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/dashboard" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestRouter_GuardedPages(t *testing.T) {
	e := newTestRouter()

	rec := do(e, http.MethodGet, "/users", "", false)
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/login?next=%2Fusers" {
		t.Fatalf("anonymous: unexpected response %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}

	rec = do(e, http.MethodGet, "/plans", "admin", false)
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/dashboard" {
		t.Fatalf("missing permission: unexpected response %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}

	rec = do(e, http.MethodGet, "/users", "admin", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("admitted: expected 200, got %d", rec.Code)
	}
	var payload service.ViewPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil || payload.View != "users" {
		t.Fatalf("unexpected payload %s", rec.Body.String())
	}
}

func TestRouter_ViewsAPI(t *testing.T) {
	e := newTestRouter()

	rec := do(e, http.MethodGet, "/api/views/companies", "", true)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/api/views/companies/9/employees", "admin", true)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/api/views/companies", "admin", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_AuthEndpoints(t *testing.T) {
	e := newTestRouter()

	if rec := do(e, http.MethodGet, "/auth/me", "", true); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/auth/me", "admin", true); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/search?q=user", "admin", true); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/auth/logout", "admin", true); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/auth/me", "admin", true); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}
