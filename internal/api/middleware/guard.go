package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/formlane/console/internal/core/domain"
)

// Admitter decides one navigation.
type Admitter interface {
	Admit(target string, sess *domain.Session) domain.Decision
}

// TargetFunc extracts the navigation target from a request.
type TargetFunc func(c echo.Context) string

// PageTarget is the request's own path and query.
func PageTarget(c echo.Context) string {
	return c.Request().URL.RequestURI()
}

// ViewTarget reads the target from a wildcard route such as /api/views/*.
func ViewTarget(c echo.Context) string {
	target := "/" + strings.TrimPrefix(c.Param("*"), "/")
	if q := c.Request().URL.RawQuery; q != "" {
		target += "?" + q
	}
	return target
}

type denial struct {
	Error    string `json:"error"`
	Location string `json:"location"`
}

// Guard applies route admission. Browsers are redirected with 302; JSON
// callers get 401 (login required) or 403 (landing) with the redirect target.
func Guard(g Admitter, target TargetFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := g.Admit(target(c), SessionFrom(c))
			if d.Admitted() {
				c.Set(ctxDecision, d)
				return next(c)
			}

			if !wantsJSON(c) {
				return c.Redirect(http.StatusFound, d.Location)
			}
			if d.Outcome == domain.OutcomeRedirectLogin {
				return c.JSON(http.StatusUnauthorized, denial{Error: domain.ErrAuthRequired.Error(), Location: d.Location})
			}
			return c.JSON(http.StatusForbidden, denial{Error: domain.ErrPermissionDenied.Error(), Location: d.Location})
		}
	}
}

func wantsJSON(c echo.Context) bool {
	req := c.Request()
	if req.Header.Get(HeaderSession) != "" {
		return true
	}
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
