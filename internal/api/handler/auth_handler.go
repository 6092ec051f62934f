package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/formlane/console/internal/api/middleware"
	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/ports"
	"github.com/formlane/console/internal/core/service"
)

// AuthOptions controls the session cookie and post-login navigation.
type AuthOptions struct {
	LandingPath string
	ShortTTL    time.Duration
	LongTTL     time.Duration
	Secure      bool
}

type AuthHandler struct {
	sessions ports.SessionService
	opts     AuthOptions
}

func NewAuthHandler(sessions ports.SessionService, opts AuthOptions) *AuthHandler {
	if opts.LandingPath == "" {
		opts.LandingPath = service.DefaultLandingPath
	}
	return &AuthHandler{sessions: sessions, opts: opts}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
	Next     string `json:"next"`
}

type sessionResponse struct {
	SessionID   string      `json:"session_id,omitempty"`
	User        domain.User `json:"user"`
	Permissions []string    `json:"permissions"`
	Next        string      `json:"next,omitempty"`
}

type loginPageResponse struct {
	Next string `json:"next"`
}

// LoginPage reports where a successful login will land.
//
// @Summary      Login target
// @Tags         auth
// @Produce      json
// @Param        next  query     string  false  "Originally requested path"
// @Success      200   {object}  loginPageResponse
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, loginPageResponse{Next: service.NextPath(c.QueryParam("next"), h.opts.LandingPath)})
}

// Login exchanges credentials for a persisted session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sid, sess, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		return err
	}

	ttl := h.opts.ShortTTL
	if req.Remember {
		ttl = h.opts.LongTTL
	}
	c.SetCookie(h.cookie(sid, ttl))

	return c.JSON(http.StatusOK, sessionResponse{
		SessionID:   sid,
		User:        sess.User,
		Permissions: sess.Permissions.List(),
		Next:        service.NextPath(req.Next, h.opts.LandingPath),
	})
}

// Logout removes the persisted session and expires the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if sid := middleware.SessionID(c); sid != "" {
		if err := h.sessions.Clear(c.Request().Context(), sid); err != nil {
			return err
		}
	}
	c.SetCookie(h.cookie("", -1))
	return c.NoContent(http.StatusNoContent)
}

// Refresh re-reads the permission list from upstream.
//
// @Summary      Refresh permissions
// @Tags         auth
// @Produce      json
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	sess, err := h.sessions.Refresh(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		if errors.Is(err, domain.ErrAuthRequired) {
			c.SetCookie(h.cookie("", -1))
		}
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{User: sess.User, Permissions: sess.Permissions.List()})
}

// Me returns the cached identity and permissions.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return domain.ErrAuthRequired
	}
	return c.JSON(http.StatusOK, sessionResponse{User: sess.User, Permissions: sess.Permissions.List()})
}

func (h *AuthHandler) cookie(sid string, ttl time.Duration) *http.Cookie {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     middleware.CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
