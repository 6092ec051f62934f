package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/formlane/console/internal/core/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("ENVELOPE", "secretbox")
	t.Setenv("ENVELOPE_KEY", "test material")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRoutesCmd_Table(t *testing.T) {
	out, err := execute(t, "routes")
	require.NoError(t, err)
	require.Contains(t, out, "PATH")
	require.Contains(t, out, "/companies/:id/employees")
	require.Contains(t, out, "view_companies,view_company_employee")
}

func TestRoutesCmd_JSON(t *testing.T) {
	out, err := execute(t, "routes", "--json")
	require.NoError(t, err)

	var routes []domain.RouteDescriptor
	require.NoError(t, json.Unmarshal([]byte(out), &routes))
	require.NotEmpty(t, routes)
	require.Equal(t, "/dashboard", routes[0].Path)
}

func TestLoginCmd_PrintsSessionID(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok","user":{"id":"u1","name":"Ana"},"permissions":["view_companies"]}`))
	}))
	defer upstream.Close()

	t.Setenv("UPSTREAM_URL", upstream.URL)
	t.Setenv("CONSOLE_PASSWORD", "secret")
	out, err := execute(t, "login", "--email", "ana@example.com")
	require.NoError(t, err)
	require.Len(t, strings.TrimSpace(out), 36)
}

func TestFetchCmd_RequiresSession(t *testing.T) {
	t.Setenv("CONSOLE_SESSION", "")
	_, err := execute(t, "fetch", "/companies")
	require.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestFetchCmd_UnknownSession(t *testing.T) {
	_, err := execute(t, "fetch", "/companies", "--session", "missing")
	require.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestRootCmd_RejectsBadConfig(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "sqlite")
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"routes"})
	require.Error(t, root.Execute())
}
