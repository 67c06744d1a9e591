package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazytable/internal/paging"
	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

// Pagination renders the row range and the page links of a pager
func Pagination(p *paging.Pager, th theme.Theme) string {
	first, last := p.Bounds()
	info := lipgloss.NewStyle().
		Foreground(th.Muted).
		Render(fmt.Sprintf("%d-%d of %d", first, last, p.Total()))

	if p.Pages() <= 1 {
		return info
	}

	current := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Background).
		Background(th.Info)
	other := lipgloss.NewStyle().Foreground(th.Foreground)
	muted := lipgloss.NewStyle().Foreground(th.Muted)

	links := p.Links()
	parts := make([]string, 0, len(links)+2)
	if links[0] > 1 {
		parts = append(parts, muted.Render("«"))
	}
	for _, n := range links {
		label := fmt.Sprintf(" %d ", n)
		if n == p.Current {
			parts = append(parts, current.Render(label))
			continue
		}
		parts = append(parts, other.Render(label))
	}
	if links[len(links)-1] < p.Pages() {
		parts = append(parts, muted.Render("»"))
	}

	return info + "  " + strings.Join(parts, "")
}
