// Package routes holds the static route access table. The table ships
// embedded in the binary; an operator may replace it with a file of the same
// shape.
package routes

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/formlane/console/internal/core/domain"
)

//go:embed routes.yaml
var builtin []byte

type document struct {
	Routes []entry `yaml:"routes"`
}

type entry struct {
	Path                string   `yaml:"path"`
	Title               string   `yaml:"title"`
	RequiredPermissions []string `yaml:"required_permissions"`
	View                string   `yaml:"view"`
	Searchable          bool     `yaml:"searchable"`
}

// Table is an immutable, ordered set of route descriptors.
type Table struct {
	routes   []domain.RouteDescriptor
	exact    map[string]int
	patterns []pattern
}

type pattern struct {
	index    int
	segments []string
	params   int
}

// Load parses the embedded table.
func Load() (*Table, error) {
	return Parse(builtin)
}

// MustLoad is Load for package initialisation and tests.
func MustLoad() *Table {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// LoadFile parses the table at path. An empty path loads the embedded table.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return Load()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route table: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML route table.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse route table: %w", err)
	}
	if len(doc.Routes) == 0 {
		return nil, errors.New("route table is empty")
	}

	t := &Table{exact: make(map[string]int, len(doc.Routes))}
	for i, e := range doc.Routes {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
		if _, dup := t.exact[e.Path]; dup {
			return nil, fmt.Errorf("route %d: duplicate path %s", i, e.Path)
		}
		t.exact[e.Path] = i
		t.routes = append(t.routes, domain.RouteDescriptor{
			Path:                e.Path,
			Title:               e.Title,
			RequiredPermissions: append([]string{}, e.RequiredPermissions...),
			View:                e.View,
			Searchable:          e.Searchable,
		})

		segs := split(e.Path)
		params := 0
		for _, s := range segs {
			if strings.HasPrefix(s, ":") {
				params++
			}
		}
		if params > 0 {
			t.patterns = append(t.patterns, pattern{index: i, segments: segs, params: params})
		}
	}
	sort.SliceStable(t.patterns, func(a, b int) bool {
		return t.patterns[a].params < t.patterns[b].params
	})
	return t, nil
}

func (e entry) validate() error {
	switch {
	case !strings.HasPrefix(e.Path, "/"):
		return fmt.Errorf("path %q must be absolute", e.Path)
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("path %s has no title", e.Path)
	}
	for _, p := range e.RequiredPermissions {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("path %s has a blank permission", e.Path)
		}
	}
	return nil
}

// Lookup returns the descriptor for path. Static paths win over patterns;
// among patterns, the one with the fewest placeholders wins.
func (t *Table) Lookup(path string) (domain.RouteDescriptor, map[string]string, bool) {
	path = normalize(path)
	if i, ok := t.exact[path]; ok {
		return t.route(i), nil, true
	}

	segs := split(path)
	for _, p := range t.patterns {
		if params, ok := p.match(segs); ok {
			return t.route(p.index), params, true
		}
	}
	return domain.RouteDescriptor{}, nil, false
}

// All returns the descriptors in table order.
func (t *Table) All() []domain.RouteDescriptor {
	out := make([]domain.RouteDescriptor, len(t.routes))
	for i := range t.routes {
		out[i] = t.route(i)
	}
	return out
}

// route returns a copy so callers cannot mutate the table.
func (t *Table) route(i int) domain.RouteDescriptor {
	r := t.routes[i]
	r.RequiredPermissions = append([]string(nil), r.RequiredPermissions...)
	return r
}

func (p pattern) match(segs []string) (map[string]string, bool) {
	if len(segs) != len(p.segments) {
		return nil, false
	}
	params := make(map[string]string, p.params)
	for i, s := range p.segments {
		if name, ok := strings.CutPrefix(s, ":"); ok {
			if segs[i] == "" {
				return nil, false
			}
			params[name] = segs[i]
			continue
		}
		if s != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}

func split(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}
