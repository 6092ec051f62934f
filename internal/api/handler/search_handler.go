package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/formlane/console/internal/api/middleware"
	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/search"
)

// Searcher answers destination queries for a session.
type Searcher interface {
	Query(q string, sess *domain.Session) []search.Suggestion
}

type SearchHandler struct {
	index Searcher
}

func NewSearchHandler(index Searcher) *SearchHandler {
	return &SearchHandler{index: index}
}

type searchResponse struct {
	Query   string              `json:"query"`
	Results []search.Suggestion `json:"results"`
}

// Search lists destinations whose title contains q.
//
// @Summary      Search destinations
// @Tags         search
// @Produce      json
// @Param        q    query     string  false  "Case-insensitive title fragment"
// @Success      200  {object}  searchResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/search [get]
func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	results := h.index.Query(q, middleware.SessionFrom(c))
	if results == nil {
		results = []search.Suggestion{}
	}
	return c.JSON(http.StatusOK, searchResponse{Query: q, Results: results})
}
