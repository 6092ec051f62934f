package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/formlane/console/internal/api/middleware"
	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/service"
)

// ViewRenderer renders the view behind an admitted decision.
type ViewRenderer interface {
	Render(ctx context.Context, d domain.Decision, sess *domain.Session) (service.ViewPayload, error)
}

type ViewHandler struct {
	views ViewRenderer
}

func NewViewHandler(views ViewRenderer) *ViewHandler {
	return &ViewHandler{views: views}
}

// Render returns the data for the guarded route. It must run behind the
// guard middleware, which supplies the admitted decision.
//
// @Summary      Render a console view
// @Tags         views
// @Produce      json
// @Param        path  path      string  true  "Console route, e.g. companies/42/employees"
// @Success      200   {object}  service.ViewPayload
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/views/{path} [get]
func (h *ViewHandler) Render(c echo.Context) error {
	d, ok := middleware.DecisionFrom(c)
	if !ok {
		return domain.ErrPermissionDenied
	}
	payload, err := h.views.Render(c.Request().Context(), d, middleware.SessionFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payload)
}
