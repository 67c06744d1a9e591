package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Panel frames content with a rounded border, a title line and an
// optional footer line
type Panel struct {
	Title       string
	Content     string
	Footer      string
	Width       int
	Height      int
	BorderColor lipgloss.Color
}

// InnerSize returns the space left for content inside the border,
// title and footer
func (p *Panel) InnerSize() (int, int) {
	height := p.Height - 2
	if p.Title != "" {
		height--
	}
	if p.Footer != "" {
		height--
	}
	return max(p.Width-2, 0), max(height, 0)
}

// View renders the panel
func (p *Panel) View() string {
	if p.Width <= 2 || p.Height <= 2 {
		return ""
	}

	innerWidth, innerHeight := p.InnerSize()
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.BorderColor).
		Width(innerWidth)

	body := lipgloss.NewStyle().
		Height(innerHeight).
		MaxHeight(innerHeight).
		Render(p.Content)

	content := body
	if p.Title != "" {
		titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		content = titleStyle.Render(runewidth.Truncate(p.Title, max(innerWidth-2, 1), "…")) + "\n" + content
	}
	if p.Footer != "" {
		content += "\n" + runewidth.Truncate(p.Footer, innerWidth, "…")
	}

	return style.Render(content)
}
