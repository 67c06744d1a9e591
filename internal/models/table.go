package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NullValue is how database NULLs are rendered in cells
const NullValue = "NULL"

// ColumnType identifies how a column's values are compared
type ColumnType string

const (
	ColumnTypeText   ColumnType = "text"
	ColumnTypeNumber ColumnType = "number"
	ColumnTypeDate   ColumnType = "date"
)

// DateLayouts are the layouts recognized for date columns, tried in order
var DateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
}

// Column describes a single table column
type Column struct {
	Index       int
	Name        string
	Title       string
	Type        ColumnType
	Filterable  bool
	Sortable    bool
	Breakpoints []string // breakpoint names at which the column is hidden
	Hidden      bool
}

// Visible reports whether the column is currently shown
func (c *Column) Visible() bool {
	return !c.Hidden
}

// Cell holds one value of a row
type Cell struct {
	Column     *Column
	Value      string
	FilterText string // overrides Value for filtering when set
	Null       bool   // database NULL, shown as NullValue
}

// FilterValue returns the text used when filtering on this cell
func (c *Cell) FilterValue() string {
	if c == nil {
		return ""
	}
	if c.FilterText != "" {
		return c.FilterText
	}
	if c.Null {
		return ""
	}
	return c.Value
}

// Row is a single table row
type Row struct {
	Index int
	Cells []*Cell
}

// Cell returns the cell for the given column, or nil
func (r *Row) Cell(col *Column) *Cell {
	if r == nil || col == nil {
		return nil
	}
	if col.Index >= 0 && col.Index < len(r.Cells) && r.Cells[col.Index].Column == col {
		return r.Cells[col.Index]
	}
	for _, cell := range r.Cells {
		if cell.Column == col {
			return cell
		}
	}
	return nil
}

// Values returns the raw cell values for the given columns
func (r *Row) Values(cols []*Column) []string {
	values := make([]string, len(cols))
	for i, col := range cols {
		if cell := r.Cell(col); cell != nil {
			values[i] = cell.Value
		}
	}
	return values
}

// Table is the loaded data set
type Table struct {
	Columns []*Column
	Rows    []*Row
}

// NewTable builds a table from column names and string rows, inferring column types
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: make([]*Column, len(columns)),
		Rows:    make([]*Row, len(rows)),
	}

	for i, name := range columns {
		t.Columns[i] = &Column{
			Index:      i,
			Name:       name,
			Title:      name,
			Type:       inferType(i, rows),
			Filterable: true,
			Sortable:   true,
		}
	}

	for i, values := range rows {
		row := &Row{Index: i, Cells: make([]*Cell, len(columns))}
		for j, col := range t.Columns {
			cell := &Cell{Column: col}
			if j < len(values) {
				cell.Value = values[j]
			}
			row.Cells[j] = cell
		}
		t.Rows[i] = row
	}

	return t
}

// MarkNull flags the cell at row, col as a database NULL
func (t *Table) MarkNull(row, col int) {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row].Cells) {
		return
	}
	cell := t.Rows[row].Cells[col]
	cell.Null = true
	cell.Value = NullValue
}

// ColumnByName looks up a column by name, case-insensitively
func (t *Table) ColumnByName(name string) *Column {
	for _, col := range t.Columns {
		if strings.EqualFold(col.Name, name) {
			return col
		}
	}
	return nil
}

// VisibleColumns returns the columns that are not hidden
func (t *Table) VisibleColumns() []*Column {
	var visible []*Column
	for _, col := range t.Columns {
		if col.Visible() {
			visible = append(visible, col)
		}
	}
	return visible
}

// ParseDate parses s with the first matching layout in DateLayouts
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses s as a decimal number
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// inferType picks number or date when every non-empty value parses as such
func inferType(index int, rows [][]string) ColumnType {
	numbers, dates, seen := true, true, 0

	for _, row := range rows {
		if index >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[index])
		if v == "" || v == NullValue {
			continue
		}
		seen++
		if numbers {
			_, numbers = ParseNumber(v)
		}
		if dates {
			_, dates = ParseDate(v)
		}
		if !numbers && !dates {
			return ColumnTypeText
		}
	}

	switch {
	case seen == 0:
		return ColumnTypeText
	case numbers:
		return ColumnTypeNumber
	case dates:
		return ColumnTypeDate
	default:
		return ColumnTypeText
	}
}
