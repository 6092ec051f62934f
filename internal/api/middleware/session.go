package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/formlane/console/internal/core/domain"
)

const (
	// CookieName carries the session id for browsers.
	CookieName = "console_sid"
	// HeaderSession carries the session id for API and CLI callers.
	HeaderSession = "X-Console-Session"

	ctxSessionID = "session_id"
	ctxSession   = "session"
	ctxDecision  = "decision"
)

// SessionLoader loads a persisted session by id.
type SessionLoader interface {
	Load(ctx context.Context, sid string) (*domain.Session, error)
}

// Session loads the caller's session once per request and stores it in the
// echo context. A missing or unreadable session leaves the context empty;
// the guard decides what that means.
func Session(loader SessionLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := c.Request().Header.Get(HeaderSession)
			if sid == "" {
				if cookie, err := c.Cookie(CookieName); err == nil {
					sid = cookie.Value
				}
			}
			if sid != "" {
				c.Set(ctxSessionID, sid)
				if sess, err := loader.Load(c.Request().Context(), sid); err == nil {
					c.Set(ctxSession, sess)
				}
			}
			return next(c)
		}
	}
}

// RequireSession rejects requests that carry no loaded session.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if SessionFrom(c) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// SessionFrom returns the session loaded for this request, or nil.
func SessionFrom(c echo.Context) *domain.Session {
	sess, _ := c.Get(ctxSession).(*domain.Session)
	return sess
}

// SessionID returns the session id presented by the caller, or "".
func SessionID(c echo.Context) string {
	sid, _ := c.Get(ctxSessionID).(string)
	return sid
}

// DecisionFrom returns the guard decision that admitted this request.
func DecisionFrom(c echo.Context) (domain.Decision, bool) {
	d, ok := c.Get(ctxDecision).(domain.Decision)
	return d, ok
}
