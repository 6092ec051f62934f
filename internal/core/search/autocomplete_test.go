package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlane/console/internal/routes"
)

func newAutocomplete() *Autocomplete {
	sess := sessionWith("view_templates", "view_email_templates", "view_plans")
	return NewAutocomplete(NewIndex(routes.MustLoad()), sess)
}

func TestAutocomplete_CircularSelection(t *testing.T) {
	a := newAutocomplete()
	a.Type("templates")
	require.Len(t, a.Results(), 2)
	assert.Equal(t, -1, a.Selected())

	a.Key(KeyDown)
	assert.Equal(t, 0, a.Selected())
	a.Key(KeyDown)
	assert.Equal(t, 1, a.Selected())
	a.Key(KeyDown)
	assert.Equal(t, 0, a.Selected(), "down wraps to the first result")
	a.Key(KeyUp)
	assert.Equal(t, 1, a.Selected(), "up wraps to the last result")
}

func TestAutocomplete_EnterNavigatesAndClears(t *testing.T) {
	a := newAutocomplete()
	a.Type("templates")

	_, ok := a.Key(KeyEnter)
	assert.False(t, ok, "enter without a selection does nothing")

	a.Key(KeyDown)
	a.Key(KeyDown)
	target, ok := a.Key(KeyEnter)
	require.True(t, ok)
	assert.Equal(t, "/templates/email", target)
	assert.Empty(t, a.Query())
	assert.Empty(t, a.Results())
}

func TestAutocomplete_EscapeClearsAndBlurs(t *testing.T) {
	a := newAutocomplete()
	a.Type("plans")
	require.True(t, a.Focused())

	a.Key(KeyEscape)
	assert.Empty(t, a.Query())
	assert.False(t, a.Focused())
	assert.False(t, a.Open())
}

func TestAutocomplete_DismissKeepsQuery(t *testing.T) {
	a := newAutocomplete()
	a.Type("plans")
	require.True(t, a.Open())

	a.Dismiss()
	assert.Equal(t, "plans", a.Query())
	assert.False(t, a.Open())
	assert.Empty(t, a.Results())

	a.Focus()
	assert.True(t, a.Open(), "refocusing reopens the kept results")
}

func TestAutocomplete_Shortcut(t *testing.T) {
	a := newAutocomplete()

	assert.False(t, a.Shortcut(true))
	assert.False(t, a.Focused())

	assert.True(t, a.Shortcut(false))
	assert.True(t, a.Focused())
}

func TestAutocomplete_KeysWithoutResults(t *testing.T) {
	a := newAutocomplete()
	a.Type("zzz")

	a.Key(KeyDown)
	a.Key(KeyUp)
	assert.Equal(t, -1, a.Selected())
	_, ok := a.Key(KeyEnter)
	assert.False(t, ok)
}
