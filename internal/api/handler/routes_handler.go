package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/formlane/console/internal/api/middleware"
	"github.com/formlane/console/internal/core/ports"
)

type RoutesHandler struct {
	table ports.RouteTable
}

func NewRoutesHandler(table ports.RouteTable) *RoutesHandler {
	return &RoutesHandler{table: table}
}

type menuEntry struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// Menu lists the static routes the session may open, in table order.
//
// @Summary      Navigation menu
// @Tags         routes
// @Produce      json
// @Success      200  {array}   menuEntry
// @Failure      401  {object}  map[string]string
// @Router       /api/routes [get]
func (h *RoutesHandler) Menu(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	out := []menuEntry{}
	for _, r := range h.table.All() {
		if strings.Contains(r.Path, ":") {
			continue
		}
		if !sess.HasAllPermissions(r.RequiredPermissions...) {
			continue
		}
		out = append(out, menuEntry{Path: r.Path, Title: r.Title})
	}
	return c.JSON(http.StatusOK, out)
}
