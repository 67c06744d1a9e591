// Package sorting orders table rows by a column, comparing values by the column type.
package sorting

import (
	"sort"
	"strings"

	"github.com/rebeliceyang/lazytable/internal/models"
)

// Direction is the sort order
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection converts a string to a Direction, defaulting to Ascending
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending", "d":
		return Descending
	default:
		return Ascending
	}
}

// Toggle returns the opposite direction
func (d Direction) Toggle() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Indicator returns the arrow drawn next to a sorted column title
func (d Direction) Indicator() string {
	if d == Descending {
		return "▼"
	}
	return "▲"
}

// Compare orders two values of col. It returns -1, 0 or 1.
func Compare(col *models.Column, a, b string) int {
	if col != nil {
		switch col.Type {
		case models.ColumnTypeNumber:
			return compareNumbers(a, b)
		case models.ColumnTypeDate:
			return compareDates(a, b)
		}
	}
	return compareText(a, b)
}

// Sort returns the rows stably ordered by col. The input slice is not modified.
// A nil or unsortable column returns rows unchanged.
func Sort(rows []*models.Row, col *models.Column, dir Direction) []*models.Row {
	if col == nil || !col.Sortable {
		return rows
	}

	sorted := make([]*models.Row, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		c := Compare(col, value(sorted[i], col), value(sorted[j], col))
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
	return sorted
}

func value(row *models.Row, col *models.Column) string {
	if cell := row.Cell(col); cell != nil {
		return cell.Value
	}
	return ""
}

// compareNumbers sorts unparseable values before numbers
func compareNumbers(a, b string) int {
	da, okA := models.ParseNumber(a)
	db, okB := models.ParseNumber(b)
	switch {
	case okA && okB:
		return da.Cmp(db)
	case okA:
		return 1
	case okB:
		return -1
	default:
		return compareText(a, b)
	}
}

func compareDates(a, b string) int {
	ta, okA := models.ParseDate(a)
	tb, okB := models.ParseDate(b)
	switch {
	case okA && okB:
		return ta.Compare(tb)
	case okA:
		return 1
	case okB:
		return -1
	default:
		return compareText(a, b)
	}
}

func compareText(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
