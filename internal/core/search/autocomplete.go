package search

import "github.com/formlane/console/internal/core/domain"

// Key is a navigation key handled by the suggestion list.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyEnter
	KeyEscape
)

// ShortcutKey focuses the search input.
const ShortcutKey = "/"

// Autocomplete is the keyboard state of a search box. It is not safe for
// concurrent use; each input owns one.
type Autocomplete struct {
	index *Index
	sess  *domain.Session

	query    string
	results  []Suggestion
	selected int
	open     bool
	focused  bool
}

func NewAutocomplete(index *Index, sess *domain.Session) *Autocomplete {
	return &Autocomplete{index: index, sess: sess, selected: -1}
}

// Type replaces the query and recomputes the suggestions.
func (a *Autocomplete) Type(q string) {
	a.query = q
	a.results = a.index.Query(q, a.sess)
	a.selected = -1
	a.focused = true
	a.open = len(a.results) > 0
}

// Key handles one navigation key. It returns the path to navigate to when
// Enter confirms a selection.
func (a *Autocomplete) Key(k Key) (target string, navigate bool) {
	n := len(a.results)
	switch k {
	case KeyDown:
		if n == 0 {
			return "", false
		}
		a.open = true
		a.selected = (a.selected + 1) % n
	case KeyUp:
		if n == 0 {
			return "", false
		}
		a.open = true
		if a.selected <= 0 {
			a.selected = n - 1
		} else {
			a.selected--
		}
	case KeyEnter:
		if a.selected < 0 || a.selected >= n {
			return "", false
		}
		target = a.results[a.selected].Path
		a.clear()
		return target, true
	case KeyEscape:
		a.clear()
		a.focused = false
	}
	return "", false
}

// Shortcut handles the focus shortcut. It is ignored while another input
// has focus.
func (a *Autocomplete) Shortcut(otherInputFocused bool) bool {
	if otherInputFocused {
		return false
	}
	a.Focus()
	return true
}

func (a *Autocomplete) Focus() {
	a.focused = true
	a.open = len(a.results) > 0
}

// Dismiss closes the suggestion list, keeping the typed query.
func (a *Autocomplete) Dismiss() {
	a.open = false
	a.focused = false
}

func (a *Autocomplete) clear() {
	a.query = ""
	a.results = nil
	a.selected = -1
	a.open = false
}

func (a *Autocomplete) Query() string { return a.query }

// Results returns the current suggestions; empty while the list is closed.
func (a *Autocomplete) Results() []Suggestion {
	if !a.open {
		return nil
	}
	return a.results
}

// Selected returns the highlighted index, or -1.
func (a *Autocomplete) Selected() int { return a.selected }

func (a *Autocomplete) Open() bool    { return a.open }
func (a *Autocomplete) Focused() bool { return a.focused }
