package source

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rebeliceyang/lazytable/internal/config"
	"github.com/rebeliceyang/lazytable/internal/logger"
	"github.com/rebeliceyang/lazytable/internal/models"
)

// SQLite reads a table from an SQLite database file
type SQLite struct {
	Path   string
	Table  string
	Config config.SourceConfig
}

// NewSQLite parses a sqlite://path?table=name URL
func NewSQLite(target string, cfg config.SourceConfig) (*SQLite, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SQLite URL: %w", err)
	}

	table, err := tableParam(u)
	if err != nil {
		return nil, err
	}

	path := u.Host + u.Path
	if path == "" {
		path = u.Opaque
	}
	if path == "" {
		return nil, fmt.Errorf("no database path in %q", target)
	}

	return &SQLite{Path: path, Table: table, Config: cfg}, nil
}

// Key returns the absolute database path plus the table
func (s *SQLite) Key() string {
	path := s.Path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return "sqlite://" + path + "?table=" + s.Table
}

// SelectSQL builds the SELECT used to read the table
func (s *SQLite) SelectSQL() (string, []any, error) {
	builder := sq.Select("*").From(quoteIdent(s.Table))
	if s.Config.RowLimit > 0 {
		builder = builder.Limit(uint64(s.Config.RowLimit))
	}
	return builder.ToSql()
}

// Load opens the database read-only and reads the table
func (s *SQLite) Load(ctx context.Context) (*models.Table, error) {
	log := logger.FromContext(ctx).WithComponent("source")

	if timeout := s.Config.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	db, err := sql.Open("sqlite3", "file:"+s.Path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer func() { _ = db.Close() }()

	query, args, err := s.SelectSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query table data: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var data [][]string
	var nulls [][2]int
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			if IsNull(v) {
				nulls = append(nulls, [2]int{len(data), i})
			}
			record[i] = FormatValue(v)
		}
		data = append(data, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table data: %w", err)
	}

	log.Infow("loaded SQLite table", "path", s.Path, "table", s.Table, "columns", len(columns), "rows", len(data))
	return newTable(columns, data, nulls), nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
