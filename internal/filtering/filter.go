package filtering

import (
	"strings"

	"github.com/rebeliceyang/lazytable/internal/models"
	"github.com/rebeliceyang/lazytable/internal/query"
)

// Filter is a named query bound to a set of columns
type Filter struct {
	Name    string
	Columns []*models.Column // borrowed from the table, never modified
	Options query.Options
	Hidden  bool // hidden filters are not shown in the status bar

	text  string
	query *query.Query
	owned bool // query came from FromQuery and is never parsed lazily
}

// New creates a filter from raw text. The text is parsed on first use.
func New(name, text string, columns []*models.Column, opts query.Options, hidden bool) *Filter {
	return &Filter{
		Name:    name,
		Columns: columns,
		Options: opts,
		Hidden:  hidden,
		text:    text,
	}
}

// FromQuery creates a filter that owns an already parsed query.
// A nil query leaves the filter unresolved, so it matches nothing.
func FromQuery(name string, q *query.Query, columns []*models.Column, hidden bool) *Filter {
	return &Filter{
		Name:    name,
		Columns: columns,
		Options: q.Options(),
		Hidden:  hidden,
		text:    q.Value(),
		query:   q,
		owned:   true,
	}
}

// Query returns the filter's parsed query, parsing it if needed
func (f *Filter) Query() *query.Query {
	if f == nil {
		return nil
	}
	if f.query == nil && !f.owned {
		f.query = query.Parse(f.text, f.Options)
	}
	return f.query
}

// Text returns the raw query text
func (f *Filter) Text() string {
	if f == nil {
		return ""
	}
	if f.query != nil {
		return f.query.Value()
	}
	return f.text
}

// SetText changes the query text, re-parsing only when it differs
func (f *Filter) SetText(text string) {
	if f == nil {
		return
	}
	f.text = text
	if f.query != nil {
		f.query.SetValue(text)
	}
}

// Match reports whether text satisfies the filter's query
func (f *Filter) Match(text string) bool {
	q := f.Query()
	if q == nil {
		return false
	}
	return q.Match(text)
}

// MatchRow matches the space-joined filter text of the row's cells in Columns
func (f *Filter) MatchRow(row *models.Row) bool {
	if f == nil || row == nil {
		return false
	}
	return f.Match(f.rowText(row))
}

func (f *Filter) rowText(row *models.Row) string {
	parts := make([]string, 0, len(f.Columns))
	for _, cell := range row.Cells {
		if cell == nil || !f.hasColumn(cell.Column) {
			continue
		}
		parts = append(parts, cell.FilterValue())
	}
	return strings.Join(parts, " ")
}

func (f *Filter) hasColumn(col *models.Column) bool {
	if col == nil {
		return false
	}
	for _, c := range f.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Record is the serializable form of a filter
type Record struct {
	Name       string   `yaml:"name" json:"name"`
	Query      string   `yaml:"query" json:"query"`
	Columns    []string `yaml:"columns,omitempty" json:"columns,omitempty"`
	Space      string   `yaml:"space,omitempty" json:"space,omitempty"`
	Connectors bool     `yaml:"connectors" json:"connectors"`
	IgnoreCase bool     `yaml:"ignore_case" json:"ignore_case"`
	Hidden     bool     `yaml:"hidden,omitempty" json:"hidden,omitempty"`
}

// Record captures the filter's name, text, columns and options
func (f *Filter) Record() Record {
	rec := Record{
		Name:       f.Name,
		Query:      f.Text(),
		Space:      string(f.Options.Space),
		Connectors: f.Options.Connectors,
		IgnoreCase: f.Options.IgnoreCase,
		Hidden:     f.Hidden,
	}
	for _, col := range f.Columns {
		if col != nil {
			rec.Columns = append(rec.Columns, col.Name)
		}
	}
	return rec
}

// FromRecord rebuilds a filter, resolving column names through lookup.
// Names that cannot be resolved are dropped.
func FromRecord(rec Record, lookup func(string) *models.Column) *Filter {
	columns := make([]*models.Column, 0, len(rec.Columns))
	for _, name := range rec.Columns {
		if lookup == nil {
			break
		}
		if col := lookup(name); col != nil {
			columns = append(columns, col)
		}
	}

	opts := query.Options{
		Space:      query.ParseJunction(rec.Space),
		Connectors: rec.Connectors,
		IgnoreCase: rec.IgnoreCase,
	}
	return New(rec.Name, rec.Query, columns, opts, rec.Hidden)
}
