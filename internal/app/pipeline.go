package app

import (
	"github.com/rebeliceyang/lazytable/internal/config"
	"github.com/rebeliceyang/lazytable/internal/filtering"
	"github.com/rebeliceyang/lazytable/internal/models"
	"github.com/rebeliceyang/lazytable/internal/query"
	"github.com/rebeliceyang/lazytable/internal/sorting"
)

// NewFiltering creates a filter collection from the filtering config
func NewFiltering(cfg config.FilteringConfig) *filtering.Filtering {
	opts := query.Options{
		Space:      query.ParseJunction(cfg.Space),
		Connectors: cfg.Connectors,
		IgnoreCase: cfg.IgnoreCase,
	}
	return filtering.NewFiltering(cfg.MinLength, cfg.Delay(), opts)
}

// ApplyView filters rows through fs and sorts the result by col
func ApplyView(rows []*models.Row, fs *filtering.Filtering, col *models.Column, dir sorting.Direction) []*models.Row {
	if fs != nil {
		rows = fs.Apply(rows)
	}
	return sorting.Sort(rows, col, dir)
}

// ParseSort reads a COL[:desc] sort flag
func ParseSort(value string) (string, sorting.Direction) {
	for i := len(value) - 1; i >= 0; i-- {
		if value[i] == ':' {
			return value[:i], sorting.ParseDirection(value[i+1:])
		}
	}
	return value, sorting.Ascending
}
