package service

import (
	"net/url"
	"strings"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/ports"
)

const (
	DefaultLoginPath   = "/login"
	DefaultLandingPath = "/dashboard"
)

// Guard admits or redirects one navigation. Every decision is computed from
// the table and the session passed in; nothing is cached.
type Guard struct {
	table       ports.RouteTable
	tokens      *TokenValidator
	loginPath   string
	landingPath string
	observer    ports.Observer
}

func NewGuard(table ports.RouteTable, tokens *TokenValidator, landingPath string, observer ports.Observer) *Guard {
	if landingPath == "" {
		landingPath = DefaultLandingPath
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &Guard{
		table:       table,
		tokens:      tokens,
		loginPath:   DefaultLoginPath,
		landingPath: landingPath,
		observer:    observer,
	}
}

func (g *Guard) LoginPath() string   { return g.loginPath }
func (g *Guard) LandingPath() string { return g.landingPath }

// Admit requires a valid token and every permission the target route lists.
// Paths without a table entry require none.
func (g *Guard) Admit(target string, sess *domain.Session) domain.Decision {
	d := g.decide(target, sess)
	g.observer.GuardDecision(d.Outcome.String())
	return d
}

func (g *Guard) decide(target string, sess *domain.Session) domain.Decision {
	if sess == nil || !g.tokens.Valid(sess.Token) {
		return domain.Decision{
			Outcome:  domain.OutcomeRedirectLogin,
			Location: domain.LoginLocation(g.loginPath, target),
		}
	}

	route, params, _ := g.table.Lookup(target)
	if !sess.HasAllPermissions(route.RequiredPermissions...) {
		return domain.Decision{
			Outcome:  domain.OutcomeRedirectLanding,
			Location: g.landingPath,
			Route:    route,
			Params:   params,
		}
	}
	return domain.Decision{Outcome: domain.OutcomeAdmit, Route: route, Params: params}
}

// NextPath returns the post-login target carried in raw if it is a local
// path, otherwise fallback.
func NextPath(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return raw
}
