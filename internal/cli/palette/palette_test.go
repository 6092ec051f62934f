package palette

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/search"
	"github.com/formlane/console/internal/routes"
)

func newModel() *Model {
	sess := &domain.Session{Token: "t", Permissions: domain.NewPermissionSet("view_companies", "view_templates", "view_email_templates")}
	return New(search.NewIndex(routes.MustLoad()), sess)
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_TypingFiltersResults(t *testing.T) {
	m := newModel()
	typeText(m, "templ")

	results := m.ac.Results()
	require.Len(t, results, 2)
	require.Equal(t, "/templates", results[0].Path)
	require.Contains(t, m.View(), "Email templates")
}

func TestModel_EnterNavigatesToSelection(t *testing.T) {
	m := newModel()
	typeText(m, "templ")

	press(m, tea.KeyDown)
	press(m, tea.KeyDown)
	cmd := press(m, tea.KeyEnter)

	require.True(t, isQuit(cmd))
	require.Equal(t, "/templates/email", m.Chosen())
	require.Empty(t, m.input.Value())
}

func TestModel_EnterWithoutSelectionStays(t *testing.T) {
	m := newModel()
	typeText(m, "comp")

	cmd := press(m, tea.KeyEnter)
	require.False(t, isQuit(cmd))
	require.Empty(t, m.Chosen())
}

func TestModel_EscapeClearsThenQuits(t *testing.T) {
	m := newModel()
	typeText(m, "comp")

	require.False(t, isQuit(press(m, tea.KeyEsc)))
	require.Empty(t, m.ac.Query())
	require.False(t, m.input.Focused())

	require.True(t, isQuit(press(m, tea.KeyEsc)))
}

func TestModel_ShortcutRefocuses(t *testing.T) {
	m := newModel()
	typeText(m, "comp")
	press(m, tea.KeyTab)
	require.False(t, m.input.Focused())
	require.Nil(t, m.ac.Results())
	require.Equal(t, "comp", m.ac.Query())

	// Typing while blurred does not reach the query.
	typeText(m, "x")
	require.Equal(t, "comp", m.ac.Query())

	typeText(m, "/")
	require.True(t, m.input.Focused())
	require.True(t, m.ac.Focused())
	require.False(t, strings.Contains(m.input.Value(), "/"))
}
