package components

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazytable/internal/models"
	"github.com/rebeliceyang/lazytable/internal/query"
	"github.com/rebeliceyang/lazytable/internal/sorting"
	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

const (
	minColumnWidth = 4
	maxColumnWidth = 40
	columnGap      = " │ "
)

// TableView displays the rows of the current page
type TableView struct {
	Columns []*models.Column
	Rows    []*models.Row
	Width   int
	Height  int
	Theme   theme.Theme

	// Scrolling state
	TopRow      int
	SelectedRow int
	SelectedCol int
	LeftCol     int

	// Decorations
	SortColumn *models.Column
	SortDir    sorting.Direction
	Terms      []query.Term
	IgnoreCase bool

	// Column widths (calculated)
	ColumnWidths []int
}

// NewTableView creates a new table view
func NewTableView(th theme.Theme) *TableView {
	return &TableView{Theme: th}
}

// SetData sets the visible columns and the rows of the current page
func (tv *TableView) SetData(columns []*models.Column, rows []*models.Row) {
	tv.Columns = columns
	tv.Rows = rows
	tv.calculateColumnWidths()

	if tv.SelectedRow >= len(rows) {
		tv.SelectedRow = max(len(rows)-1, 0)
	}
	if tv.SelectedCol >= len(columns) {
		tv.SelectedCol = max(len(columns)-1, 0)
	}
	tv.clampScroll()
}

// SetSort marks the sorted column in the header
func (tv *TableView) SetSort(col *models.Column, dir sorting.Direction) {
	tv.SortColumn = col
	tv.SortDir = dir
	tv.calculateColumnWidths()
}

// SetHighlight sets the search terms highlighted in cells
func (tv *TableView) SetHighlight(terms []query.Term, ignoreCase bool) {
	tv.Terms = terms
	tv.IgnoreCase = ignoreCase
}

// SelectedRowData returns the row under the cursor
func (tv *TableView) SelectedRowData() *models.Row {
	if tv.SelectedRow < 0 || tv.SelectedRow >= len(tv.Rows) {
		return nil
	}
	return tv.Rows[tv.SelectedRow]
}

// SelectedColumn returns the column under the cursor
func (tv *TableView) SelectedColumn() *models.Column {
	if tv.SelectedCol < 0 || tv.SelectedCol >= len(tv.Columns) {
		return nil
	}
	return tv.Columns[tv.SelectedCol]
}

// SelectColumn moves the column cursor to col if it is visible
func (tv *TableView) SelectColumn(col *models.Column) {
	for i, c := range tv.Columns {
		if c == col {
			tv.SelectedCol = i
			tv.clampScroll()
			return
		}
	}
}

// calculateColumnWidths fits each column to its title and values
func (tv *TableView) calculateColumnWidths() {
	tv.ColumnWidths = make([]int, len(tv.Columns))

	for i, col := range tv.Columns {
		width := runewidth.StringWidth(tv.title(col))
		for _, row := range tv.Rows {
			if cell := row.Cell(col); cell != nil {
				width = max(width, runewidth.StringWidth(cell.Value))
			}
		}
		tv.ColumnWidths[i] = min(max(width, minColumnWidth), maxColumnWidth)
	}
}

func (tv *TableView) title(col *models.Column) string {
	if col == tv.SortColumn && col != nil {
		return col.Title + " " + tv.SortDir.Indicator()
	}
	return col.Title
}

// visibleRows is the number of data rows that fit under the header
func (tv *TableView) visibleRows() int {
	return max(tv.Height-2, 1)
}

// visibleColumns returns the index range of columns that fit the width,
// starting at LeftCol
func (tv *TableView) visibleColumns() (int, int) {
	if len(tv.Columns) == 0 {
		return 0, 0
	}
	used, end := 1, tv.LeftCol
	for end < len(tv.Columns) {
		w := tv.ColumnWidths[end]
		if end > tv.LeftCol {
			w += len(columnGap)
		}
		if used+w > tv.Width && end > tv.LeftCol {
			break
		}
		used += w
		end++
	}
	return tv.LeftCol, end
}

// View renders the table
func (tv *TableView) View() string {
	if len(tv.Columns) == 0 {
		return lipgloss.NewStyle().Foreground(tv.Theme.Muted).Render("No columns")
	}

	var b strings.Builder
	start, end := tv.visibleColumns()

	b.WriteString(tv.renderHeader(start, end))
	b.WriteString("\n")
	b.WriteString(tv.renderSeparator(start, end))

	if len(tv.Rows) == 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(tv.Theme.Muted).Italic(true).Render(" No matching rows"))
		return b.String()
	}

	last := min(tv.TopRow+tv.visibleRows(), len(tv.Rows))
	for i := tv.TopRow; i < last; i++ {
		b.WriteString("\n")
		b.WriteString(tv.renderRow(tv.Rows[i], start, end, i == tv.SelectedRow))
	}

	return b.String()
}

func (tv *TableView) renderHeader(start, end int) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(tv.Theme.TableHeader).
		Background(tv.Theme.TableHeaderBg)
	selectedStyle := headerStyle.Foreground(tv.Theme.ColumnSelected).Underline(true)

	parts := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		text := runewidth.FillRight(runewidth.Truncate(tv.title(tv.Columns[i]), tv.ColumnWidths[i], "…"), tv.ColumnWidths[i])
		if i == tv.SelectedCol {
			parts = append(parts, selectedStyle.Render(text))
			continue
		}
		parts = append(parts, headerStyle.Render(text))
	}

	gap := headerStyle.Render(columnGap)
	return headerStyle.Render(" ") + strings.Join(parts, gap) + headerStyle.Render(" ")
}

func (tv *TableView) renderSeparator(start, end int) string {
	parts := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		parts = append(parts, strings.Repeat("─", tv.ColumnWidths[i]))
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Border).
		Render("─" + strings.Join(parts, "─┼─") + "─")
}

func (tv *TableView) renderRow(row *models.Row, start, end int, selected bool) string {
	parts := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		value, null := "", false
		if cell := row.Cell(tv.Columns[i]); cell != nil {
			value, null = cell.Value, cell.Null
		}
		text := runewidth.Truncate(value, tv.ColumnWidths[i], "…")
		padding := strings.Repeat(" ", tv.ColumnWidths[i]-runewidth.StringWidth(text))

		switch {
		case selected:
			parts = append(parts, text+padding)
		case null:
			parts = append(parts, lipgloss.NewStyle().Foreground(tv.Theme.Null).Italic(true).Render(text)+padding)
		default:
			parts = append(parts, tv.highlight(text)+padding)
		}
	}

	line := " " + strings.Join(parts, columnGap) + " "
	if selected {
		return lipgloss.NewStyle().
			Background(tv.Theme.TableRowSelected).
			Foreground(lipgloss.Color("15")).
			Bold(true).
			Render(line)
	}
	return line
}

// highlight marks the occurrences of positive search terms in text
func (tv *TableView) highlight(text string) string {
	ranges := HighlightRanges(text, tv.Terms, tv.IgnoreCase)
	if len(ranges) == 0 {
		return text
	}

	style := lipgloss.NewStyle().
		Foreground(tv.Theme.Highlight).
		Background(tv.Theme.HighlightBg)

	var b strings.Builder
	pos := 0
	for _, r := range ranges {
		b.WriteString(text[pos:r[0]])
		b.WriteString(style.Render(text[r[0]:r[1]]))
		pos = r[1]
	}
	b.WriteString(text[pos:])
	return b.String()
}

// HighlightRanges returns the merged byte ranges of text matched by the
// non-negated, non-empty terms
func HighlightRanges(text string, terms []query.Term, ignoreCase bool) [][2]int {
	haystack := text
	if ignoreCase {
		haystack = strings.ToLower(text)
		if len(haystack) != len(text) {
			// case folding changed byte offsets
			return nil
		}
	}

	var ranges [][2]int
	for _, t := range terms {
		if t.Negate || t.Empty {
			continue
		}
		needle := t.Text
		if ignoreCase {
			needle = strings.ToLower(needle)
		}
		for from := 0; from < len(haystack); {
			i := strings.Index(haystack[from:], needle)
			if i < 0 {
				break
			}
			ranges = append(ranges, [2]int{from + i, from + i + len(needle)})
			from += i + len(needle)
		}
	}
	if len(ranges) == 0 {
		return nil
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i][0] < ranges[j][0] })
	merged := [][2]int{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r[0] <= last[1] {
			last[1] = max(last[1], r[1])
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// MoveSelection moves the row cursor by delta
func (tv *TableView) MoveSelection(delta int) {
	tv.SelectedRow += delta
	tv.clampScroll()
}

// MoveColumn moves the column cursor by delta
func (tv *TableView) MoveColumn(delta int) {
	tv.SelectedCol += delta
	tv.clampScroll()
}

// clampScroll keeps both cursors in range and visible
func (tv *TableView) clampScroll() {
	tv.SelectedRow = min(max(tv.SelectedRow, 0), max(len(tv.Rows)-1, 0))
	tv.SelectedCol = min(max(tv.SelectedCol, 0), max(len(tv.Columns)-1, 0))

	visible := tv.visibleRows()
	if tv.SelectedRow < tv.TopRow {
		tv.TopRow = tv.SelectedRow
	}
	if tv.SelectedRow >= tv.TopRow+visible {
		tv.TopRow = tv.SelectedRow - visible + 1
	}
	tv.TopRow = min(max(tv.TopRow, 0), max(len(tv.Rows)-visible, 0))

	if tv.SelectedCol < tv.LeftCol {
		tv.LeftCol = tv.SelectedCol
	}
	if len(tv.ColumnWidths) == len(tv.Columns) && tv.Width > 0 {
		for {
			_, end := tv.visibleColumns()
			if tv.SelectedCol < end || tv.LeftCol >= tv.SelectedCol {
				break
			}
			tv.LeftCol++
		}
	}
}

// ResetCursor moves to the first row
func (tv *TableView) ResetCursor() {
	tv.SelectedRow = 0
	tv.TopRow = 0
}
