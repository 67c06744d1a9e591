package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

// SearchChangedMsg is sent whenever the search text changes
type SearchChangedMsg struct {
	Query string
}

// SearchSubmitMsg is sent when the search is confirmed with enter
type SearchSubmitMsg struct {
	Query string
}

// CloseSearchMsg is sent when search should be closed
type CloseSearchMsg struct{}

// SearchInput provides a search input box with history recall
type SearchInput struct {
	Input   textinput.Model
	Theme   theme.Theme
	Width   int
	Visible bool

	// History holds past queries, most recent first
	History []string

	historyIndex int
	draft        string
}

// NewSearchInput creates a new search input
func NewSearchInput(th theme.Theme) *SearchInput {
	ti := textinput.New()
	ti.Placeholder = `Search... ("quoted phrase", -exclude, OR)`
	ti.Prompt = "/ "
	ti.CharLimit = 256
	ti.Width = 40

	return &SearchInput{
		Input:        ti,
		Theme:        th,
		historyIndex: -1,
	}
}

// Open shows the input with the given text and focuses it
func (s *SearchInput) Open(text string) tea.Cmd {
	s.Visible = true
	s.historyIndex = -1
	s.Input.SetValue(text)
	s.Input.CursorEnd()
	return s.Input.Focus()
}

// Close hides the input
func (s *SearchInput) Close() {
	s.Visible = false
	s.Input.Blur()
}

// Value returns the current text
func (s *SearchInput) Value() string {
	return s.Input.Value()
}

// SetHistory replaces the recallable queries
func (s *SearchInput) SetHistory(queries []string) {
	s.History = queries
	s.historyIndex = -1
}

// Update handles messages
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			query := s.Input.Value()
			return s, func() tea.Msg {
				return SearchSubmitMsg{Query: query}
			}
		case "esc":
			return s, func() tea.Msg {
				return CloseSearchMsg{}
			}
		case "up":
			return s, s.recall(1)
		case "down":
			return s, s.recall(-1)
		}
	}

	before := s.Input.Value()
	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)

	if after := s.Input.Value(); after != before {
		s.historyIndex = -1
		return s, tea.Batch(cmd, changed(after))
	}
	return s, cmd
}

// recall steps through History. Stepping past the newest entry restores
// the text typed before recall started.
func (s *SearchInput) recall(step int) tea.Cmd {
	next := s.historyIndex + step
	if next < -1 || next >= len(s.History) {
		return nil
	}

	if s.historyIndex == -1 {
		s.draft = s.Input.Value()
	}
	s.historyIndex = next

	text := s.draft
	if next >= 0 {
		text = s.History[next]
	}
	s.Input.SetValue(text)
	s.Input.CursorEnd()
	return changed(text)
}

func changed(query string) tea.Cmd {
	return func() tea.Msg {
		return SearchChangedMsg{Query: query}
	}
}

// View renders the search input
func (s *SearchInput) View() string {
	s.Input.Width = max(s.Width-8, 20)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Theme.BorderFocused).
		Padding(0, 1).
		Width(max(s.Width-2, 0))

	helpStyle := lipgloss.NewStyle().
		Foreground(s.Theme.Muted).
		Italic(true)

	helpText := helpStyle.Render("Enter: confirm │ ↑/↓: history │ Esc: close")
	return boxStyle.Render(s.Input.View() + "\n" + helpText)
}
