package theme

import "github.com/charmbracelet/lipgloss"

// DefaultTheme returns the default dark theme
func DefaultTheme() Theme {
	return Theme{
		Name: "default",

		Background: lipgloss.Color("235"),
		Foreground: lipgloss.Color("252"),

		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("62"),
		Selection:     lipgloss.Color("237"),
		Muted:         lipgloss.Color("245"),

		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Info:    lipgloss.Color("75"),

		TableHeader:      lipgloss.Color("105"),
		TableHeaderBg:    lipgloss.Color("236"),
		TableRowSelected: lipgloss.Color("25"),
		ColumnSelected:   lipgloss.Color("220"),
		SortIndicator:    lipgloss.Color("42"),
		Null:             lipgloss.Color("244"),

		Highlight:   lipgloss.Color("16"),
		HighlightBg: lipgloss.Color("220"),
	}
}
