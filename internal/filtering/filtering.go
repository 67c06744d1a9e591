// Package filtering applies named search filters to table rows.
package filtering

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gobwas/glob"
	"github.com/rebeliceyang/lazytable/internal/models"
	"github.com/rebeliceyang/lazytable/internal/query"
)

// SearchFilterName is the reserved name of the filter driven by the search input
const SearchFilterName = "search"

// Filtering holds the active filters of a table. Rows must match all of them.
type Filtering struct {
	MinLength int
	Delay     time.Duration
	Options   query.Options

	filters []*Filter
}

// NewFiltering creates an empty filter set
func NewFiltering(minLength int, delay time.Duration, opts query.Options) *Filtering {
	return &Filtering{
		MinLength: minLength,
		Delay:     delay,
		Options:   opts,
	}
}

// Add inserts f, replacing any filter with the same name in place
func (fs *Filtering) Add(f *Filter) {
	if f == nil {
		return
	}
	for i, existing := range fs.filters {
		if existing.Name == f.Name {
			fs.filters[i] = f
			return
		}
	}
	fs.filters = append(fs.filters, f)
}

// Remove deletes the named filter and reports whether it existed
func (fs *Filtering) Remove(name string) bool {
	for i, f := range fs.filters {
		if f.Name == name {
			fs.filters = append(fs.filters[:i], fs.filters[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the named filter
func (fs *Filtering) Get(name string) (*Filter, bool) {
	for _, f := range fs.filters {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Filters returns a copy of the active filters in insertion order
func (fs *Filtering) Filters() []*Filter {
	out := make([]*Filter, len(fs.filters))
	copy(out, fs.filters)
	return out
}

// Clear removes every filter
func (fs *Filtering) Clear() {
	fs.filters = nil
}

// Search updates the search filter from the input text. Text shorter than
// MinLength runes removes it. It reports whether the filter set changed.
func (fs *Filtering) Search(text string, columns []*models.Column) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || utf8.RuneCountInString(trimmed) < fs.MinLength {
		return fs.Remove(SearchFilterName)
	}

	if f, ok := fs.Get(SearchFilterName); ok {
		changed := f.Text() != text
		f.SetText(text)
		f.Columns = columns
		return changed
	}

	fs.Add(New(SearchFilterName, text, columns, fs.Options, false))
	return true
}

// Apply returns the rows that match every filter. With no filters the input
// slice is returned unchanged.
func (fs *Filtering) Apply(rows []*models.Row) []*models.Row {
	if len(fs.filters) == 0 {
		return rows
	}

	matched := make([]*models.Row, 0, len(rows))
	for _, row := range rows {
		if fs.matchAll(row) {
			matched = append(matched, row)
		}
	}
	return matched
}

func (fs *Filtering) matchAll(row *models.Row) bool {
	for _, f := range fs.filters {
		if !f.MatchRow(row) {
			return false
		}
	}
	return true
}

// Records returns the serializable form of every filter
func (fs *Filtering) Records() []Record {
	records := make([]Record, 0, len(fs.filters))
	for _, f := range fs.filters {
		records = append(records, f.Record())
	}
	return records
}

// FilterableColumns returns the columns that take part in filtering
func FilterableColumns(cols []*models.Column) []*models.Column {
	var out []*models.Column
	for _, col := range cols {
		if col != nil && col.Filterable {
			out = append(out, col)
		}
	}
	return out
}

// ResolveColumns returns the columns whose names match any of the glob
// patterns, in table order. Matching is case-insensitive. A pattern that
// does not compile is compared literally. No patterns returns cols as-is.
func ResolveColumns(cols []*models.Column, patterns []string) []*models.Column {
	if len(patterns) == 0 {
		return cols
	}

	matchers := make([]func(string) bool, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			literal := p
			matchers = append(matchers, func(name string) bool { return name == literal })
			continue
		}
		matchers = append(matchers, g.Match)
	}

	var out []*models.Column
	for _, col := range cols {
		if col == nil {
			continue
		}
		name := strings.ToLower(col.Name)
		for _, match := range matchers {
			if match(name) {
				out = append(out, col)
				break
			}
		}
	}
	return out
}
