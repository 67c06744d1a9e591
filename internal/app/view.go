package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazytable/internal/filtering"
	"github.com/rebeliceyang/lazytable/internal/models"
	"github.com/rebeliceyang/lazytable/internal/ui/components"
	"github.com/rebeliceyang/lazytable/internal/ui/help"
)

// View implements tea.Model
func (a *App) View() string {
	if a.errorOverlay.Visible {
		return a.errorOverlay.View(a.state.Width, a.state.Height)
	}

	if a.state.ViewMode == models.HelpMode {
		return lipgloss.Place(
			a.state.Width, a.state.Height,
			lipgloss.Center, lipgloss.Center,
			help.Render(a.state.Width, a.state.Height, a.theme),
		)
	}

	return a.renderNormalView()
}

// renderNormalView renders the table with its status bars
func (a *App) renderNormalView() string {
	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2).
		Render(a.formatStatusBar("lazytable", a.topBarRight()))

	bottomBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar(a.bottomBarLeft(), "[/] Search | [?] Help | [q] Quit"))

	switch {
	case a.state.Loading && a.state.Table == nil:
		a.panel.Content = lipgloss.NewStyle().Foreground(a.theme.Muted).Render("Loading " + a.state.Source + "...")
		a.panel.Footer = " "
	case a.state.Table == nil:
		a.panel.Content = lipgloss.NewStyle().Foreground(a.theme.Muted).Render("No data loaded")
		a.panel.Footer = " "
	default:
		a.panel.Content = a.tableView.View()
		a.panel.Footer = components.Pagination(a.pager, a.theme)
	}

	parts := []string{topBar}
	if a.state.ViewMode == models.SearchMode {
		parts = append(parts, a.searchInput.View())
	}
	parts = append(parts, a.panel.View(), bottomBar)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// topBarRight summarizes the active filters and sort
func (a *App) topBarRight() string {
	var parts []string
	if text := strings.TrimSpace(a.searchText()); text != "" {
		parts = append(parts, "search: "+text)
	}
	if n := len(a.filtering.Filters()); n > 1 {
		parts = append(parts, fmt.Sprintf("%d filters", n))
	}
	if a.sortColumn != nil {
		parts = append(parts, "sort: "+a.sortColumn.Name+" "+a.sortDir.Indicator())
	}
	return strings.Join(parts, " │ ")
}

func (a *App) bottomBarLeft() string {
	if a.status != "" {
		return a.status
	}
	if a.state.Table == nil {
		return a.state.ViewMode.String()
	}

	left := fmt.Sprintf("%s │ %d/%d rows", a.state.ViewMode, len(a.rows), len(a.state.Table.Rows))
	if hidden := len(a.state.Table.Columns) - len(a.state.Table.VisibleColumns()); hidden > 0 {
		left += fmt.Sprintf(" │ %d hidden", hidden)
	}
	if col := a.tableView.SelectedColumn(); col != nil {
		left += " │ " + col.Name
		if !hasColumn(a.searchColumns, col) {
			left += " (not searched)"
		}
	}
	return left
}

func hasColumn(cols []*models.Column, col *models.Column) bool {
	for _, c := range cols {
		if c == col {
			return true
		}
	}
	return false
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// Account for padding (2 chars on each side = 4 total)
	availableWidth := max(a.state.Width-4, 0)

	leftLen := runewidth.StringWidth(left)
	rightLen := runewidth.StringWidth(right)

	if leftLen+rightLen+1 > availableWidth {
		if availableWidth > rightLen+1 {
			return runewidth.Truncate(left, availableWidth-rightLen-1, "…") + " " + right
		}
		return runewidth.Truncate(left, availableWidth, "…")
	}

	return left + strings.Repeat(" ", availableWidth-leftLen-rightLen) + right
}

// SearchFilter returns the active search filter, if any
func (a *App) SearchFilter() (*filtering.Filter, bool) {
	return a.filtering.Get(filtering.SearchFilterName)
}
