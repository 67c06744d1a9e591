package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of key bindings
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit application"},
		{"Esc/Enter", "Dismiss error"},
		{"r, F5", "Reload source"},
	}
}

// GetNavigationKeys returns navigation key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Previous row"},
		{"↓/j", "Next row"},
		{"←/h", "Previous page"},
		{"→/l", "Next page"},
		{"g / G", "First / last page"},
		{"[ / ]", "Select previous / next column"},
	}
}

// GetSearchKeys returns search key bindings
func GetSearchKeys() []KeyBinding {
	return []KeyBinding{
		{"/", "Search"},
		{"Esc", "Clear search (or close input)"},
		{"Enter", "Confirm search"},
		{"↑/↓", "Recall previous searches"},
		{`"a b"`, "Match phrase"},
		{"-word", "Exclude word"},
		{"a OR b", "Match either"},
	}
}

// GetDataViewKeys returns data view key bindings
func GetDataViewKeys() []KeyBinding {
	return []KeyBinding{
		{"s", "Sort ascending by column"},
		{"Shift+S", "Sort descending by column"},
		{"y", "Copy row as CSV"},
		{"Shift+Y", "Copy page as CSV"},
		{"e", "Export CSV"},
		{"Shift+E", "Export JSON"},
		{"w", "Save view"},
	}
}

// Sections returns all key binding groups in display order
func Sections() []Section {
	return []Section{
		{Title: "Global", Keys: GetGlobalKeys()},
		{Title: "Navigation", Keys: GetNavigationKeys()},
		{Title: "Search", Keys: GetSearchKeys()},
		{Title: "Data View", Keys: GetDataViewKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(16)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("lazytable - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, section := range Sections() {
		b.WriteString(sectionStyle.Render(section.Title))
		b.WriteString("\n")
		for _, kb := range section.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 20)).
		MaxHeight(max(height, 5))

	return boxStyle.Render(b.String())
}
