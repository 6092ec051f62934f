package ports

import "github.com/formlane/console/internal/core/domain"

// RouteTable is the static route access table.
type RouteTable interface {
	// Lookup finds the descriptor whose path pattern matches path and
	// returns the placeholder values.
	Lookup(path string) (domain.RouteDescriptor, map[string]string, bool)
	All() []domain.RouteDescriptor
}
