package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

// ErrorOverlay shows an error message over the main view until dismissed
type ErrorOverlay struct {
	Title   string
	Message string
	Theme   theme.Theme
	Visible bool
}

// NewErrorOverlay creates a hidden error overlay
func NewErrorOverlay(th theme.Theme) *ErrorOverlay {
	return &ErrorOverlay{Theme: th}
}

// Show displays err under title
func (e *ErrorOverlay) Show(title string, err error) {
	if err == nil {
		return
	}
	e.Title = title
	e.Message = err.Error()
	e.Visible = true
}

// Hide dismisses the overlay
func (e *ErrorOverlay) Hide() {
	e.Visible = false
	e.Title = ""
	e.Message = ""
}

// View renders the overlay box centered in width x height
func (e *ErrorOverlay) View(width, height int) string {
	boxWidth := min(max(width/2, 40), max(width-4, 10))

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(e.Theme.Error)
	hintStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Muted).
		Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("✗ " + e.Title))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(boxWidth - 4).Render(e.Message))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("Press Esc or Enter to dismiss"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.Theme.Error).
		Padding(1, 2).
		Width(boxWidth).
		Render(b.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
