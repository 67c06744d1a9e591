// Package source loads tables from CSV files, PostgreSQL and SQLite.
package source

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rebeliceyang/lazytable/internal/config"
	"github.com/rebeliceyang/lazytable/internal/models"
)

// ErrNoTable is returned when a database target does not name a table
var ErrNoTable = errors.New("no table given, add ?table=name to the target")

// Source loads a table
type Source interface {
	// Load reads the whole table
	Load(ctx context.Context) (*models.Table, error)
	// Key identifies the source for saved views and history
	Key() string
}

// Open picks a source for target: a postgres:// or postgresql:// URL,
// a sqlite:// URL, or otherwise a CSV file path
func Open(target string, cfg config.SourceConfig) (Source, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("no source given")
	}

	switch {
	case hasScheme(target, "postgres", "postgresql"):
		return NewPostgres(target, cfg)
	case hasScheme(target, "sqlite", "sqlite3"):
		return NewSQLite(target, cfg)
	default:
		return NewCSV(target, cfg), nil
	}
}

func hasScheme(target string, schemes ...string) bool {
	lower := strings.ToLower(target)
	for _, s := range schemes {
		if strings.HasPrefix(lower, s+"://") {
			return true
		}
	}
	return false
}

// tableParam extracts and removes the table query parameter
func tableParam(u *url.URL) (string, error) {
	q := u.Query()
	table := strings.TrimSpace(q.Get("table"))
	if table == "" {
		return "", ErrNoTable
	}
	q.Del("table")
	u.RawQuery = q.Encode()
	return table, nil
}

// splitTable splits schema.table, defaulting the schema
func splitTable(name, defaultSchema string) (string, string) {
	if i := strings.Index(name, "."); i > 0 {
		return name[:i], name[i+1:]
	}
	return defaultSchema, name
}

// IsNull reports whether a database value is NULL
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if val, ok := v.(driver.Valuer); ok {
		inner, err := val.Value()
		return err == nil && inner == nil
	}
	return false
}

// newTable builds a table from database records and flags the NULL cells
func newTable(columns []string, data [][]string, nulls [][2]int) *models.Table {
	table := models.NewTable(columns, data)
	for _, pos := range nulls {
		table.MarkNull(pos[0], pos[1])
	}
	return table
}

// FormatValue renders a database value as cell text
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return models.NullValue
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	case [16]byte:
		return uuid.UUID(val).String()
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		if inner == nil {
			return models.NullValue
		}
		return FormatValue(inner)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
