// Package search filters navigable destinations by title for the current
// session. Results are recomputed from the route table on every query.
package search

import (
	"sort"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/ports"
)

var initAlgo sync.Once

// Suggestion is one navigable destination.
type Suggestion struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// Index answers destination queries over a route table.
type Index struct {
	table ports.RouteTable
}

func NewIndex(table ports.RouteTable) *Index {
	initAlgo.Do(func() { algo.Init("default") })
	return &Index{table: table}
}

// Query returns searchable routes whose title contains q (case-insensitive)
// and whose permissions the session satisfies with any-of semantics, shortest
// title first. A blank query returns nothing.
func (i *Index) Query(q string, sess *domain.Session) []Suggestion {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	pattern := []rune(strings.ToLower(q))
	slab := util.MakeSlab(1024, 256)

	var out []Suggestion
	for _, r := range i.table.All() {
		if !r.Searchable || strings.Contains(r.Path, ":") {
			continue
		}
		if !sess.HasPermission(r.RequiredPermissions...) {
			continue
		}
		if !contains(r.Title, pattern, slab) {
			continue
		}
		out = append(out, Suggestion{Path: r.Path, Title: r.Title})
	}

	sort.SliceStable(out, func(a, b int) bool {
		la, lb := len([]rune(out[a].Title)), len([]rune(out[b].Title))
		if la != lb {
			return la < lb
		}
		return out[a].Title < out[b].Title
	})
	return out
}

// contains runs fzf's exact matcher; pattern must already be lower-case.
func contains(title string, pattern []rune, slab *util.Slab) bool {
	chars := util.ToChars([]byte(title))
	res, _ := algo.ExactMatchNaive(false, false, true, &chars, pattern, false, slab)
	return res.Start >= 0
}
