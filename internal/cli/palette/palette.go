// Package palette is a terminal command palette over destination search.
package palette

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/search"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Escape  key.Binding
	Dismiss key.Binding
	Focus   key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous")),
	Down:    key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	Dismiss: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "dismiss")),
	Focus:   key.NewBinding(key.WithKeys(search.ShortcutKey), key.WithHelp(search.ShortcutKey, "search")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1)
)

// Model drives an Autocomplete from key presses.
type Model struct {
	ac     *search.Autocomplete
	input  textinput.Model
	chosen string
}

// New returns a focused palette for sess.
func New(index *search.Index, sess *domain.Session) *Model {
	input := textinput.New()
	input.Placeholder = "Search destinations"
	input.Prompt = "/ "
	input.Focus()

	ac := search.NewAutocomplete(index, sess)
	ac.Focus()
	return &Model{ac: ac, input: input}
}

// Chosen is the path confirmed with Enter, or "".
func (m *Model) Chosen() string { return m.chosen }

func (m *Model) Init() tea.Cmd { return textinput.Blink }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Up):
		m.ac.Key(search.KeyUp)
		return m, nil
	case key.Matches(keyMsg, keys.Down):
		m.ac.Key(search.KeyDown)
		return m, nil
	case key.Matches(keyMsg, keys.Enter):
		if target, navigate := m.ac.Key(search.KeyEnter); navigate {
			m.chosen = target
			m.input.SetValue("")
			return m, tea.Quit
		}
		return m, nil
	case key.Matches(keyMsg, keys.Escape):
		if !m.ac.Focused() && m.ac.Query() == "" {
			return m, tea.Quit
		}
		m.ac.Key(search.KeyEscape)
		m.input.SetValue("")
		m.input.Blur()
		return m, nil
	case key.Matches(keyMsg, keys.Dismiss):
		m.ac.Dismiss()
		m.input.Blur()
		return m, nil
	case !m.input.Focused() && key.Matches(keyMsg, keys.Focus):
		if m.ac.Shortcut(false) {
			return m, m.input.Focus()
		}
		return m, nil
	}

	if !m.input.Focused() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.ac.Query() {
		m.ac.Type(m.input.Value())
	}
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Go to"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	for i, s := range m.ac.Results() {
		line := fmt.Sprintf("%-28s %s", s.Title, pathStyle.Render(s.Path))
		if i == m.ac.Selected() {
			line = selectedStyle.Render(fmt.Sprintf("%-28s %s", s.Title, s.Path))
		}
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("/ search • ↑/↓ select • enter open • esc clear • tab dismiss • ctrl+c quit"))
	b.WriteString("\n")
	return b.String()
}

// Run shows the palette until a destination is chosen or the user quits.
func Run(ctx context.Context, index *search.Index, sess *domain.Session, in io.Reader, out io.Writer) (string, error) {
	m := New(index, sess)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("palette: %w", err)
	}
	return final.(*Model).Chosen(), nil
}
