package domain

import "net/url"

// RouteDescriptor binds a navigable path to its required permissions, the
// view that renders it and its search visibility. Descriptors are static for
// the lifetime of the process.
type RouteDescriptor struct {
	// Path may contain ":name" placeholders, e.g. /companies/:id/employees.
	Path                string   `json:"path"`
	Title               string   `json:"title"`
	RequiredPermissions []string `json:"required_permissions"`
	// View names the factory in the view catalog. Empty means the route has
	// no data view (the page is rendered from the session alone).
	View       string `json:"view,omitempty"`
	Searchable bool   `json:"searchable"`
}

// Outcome is the result of a route guard admission check.
type Outcome int

const (
	OutcomeAdmit Outcome = iota
	// OutcomeRedirectLogin: no valid token.
	OutcomeRedirectLogin
	// OutcomeRedirectLanding: authenticated but missing permissions.
	OutcomeRedirectLanding
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdmit:
		return "admit"
	case OutcomeRedirectLogin:
		return "redirect_login"
	case OutcomeRedirectLanding:
		return "redirect_landing"
	default:
		return "unknown"
	}
}

// Decision is what the guard returns for one navigation.
type Decision struct {
	Outcome Outcome
	// Location is the redirect target; empty when admitted.
	Location string
	// Route is the matched descriptor. The zero value when the path has no
	// entry in the access table.
	Route RouteDescriptor
	// Params holds the placeholder values extracted from the path.
	Params map[string]string
}

// Admitted reports whether the navigation may proceed.
func (d Decision) Admitted() bool { return d.Outcome == OutcomeAdmit }

// LoginLocation builds the login redirect that preserves the original target.
func LoginLocation(loginPath, target string) string {
	if target == "" {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(target)
}
