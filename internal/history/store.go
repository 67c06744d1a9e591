package history

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const timeLayout = "2006-01-02 15:04:05"

// Entry is one search query run against a source
type Entry struct {
	ID         int
	Source     string
	Query      string
	Matched    int
	Total      int
	ExecutedAt time.Time
}

// Store manages search history persistence
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database at path
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Add records a query. Repeating the latest query of a source refreshes
// that entry instead of adding a new one.
func (s *Store) Add(entry Entry) error {
	entry.Query = strings.TrimSpace(entry.Query)
	if entry.Query == "" {
		return nil
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now()
	}
	executedAt := entry.ExecutedAt.UTC().Format(timeLayout)

	var lastID int
	var lastQuery string
	err := s.db.QueryRow(`
		SELECT id, query FROM query_history
		WHERE source = ?
		ORDER BY id DESC
		LIMIT 1`, entry.Source).Scan(&lastID, &lastQuery)
	switch {
	case err == nil && lastQuery == entry.Query:
		_, err = s.db.Exec(`
			UPDATE query_history
			SET matched = ?, total = ?, executed_at = ?
			WHERE id = ?`,
			entry.Matched, entry.Total, executedAt, lastID)
		if err != nil {
			return fmt.Errorf("failed to update history entry: %w", err)
		}
		return nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to read latest history entry: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO query_history (source, query, matched, total, executed_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.Source,
		entry.Query,
		entry.Matched,
		entry.Total,
		executedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add history entry: %w", err)
	}
	return nil
}

// GetRecent retrieves the most recent history entries
func (s *Store) GetRecent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, source, query, matched, total, executed_at
		FROM query_history
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// Search finds history entries whose query contains text
func (s *Store) Search(text string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, source, query, matched, total, executed_at
		FROM query_history
		WHERE query LIKE ?
		ORDER BY id DESC
		LIMIT ?`, "%"+text+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// RecentQueries returns the distinct queries run against source, newest first
func (s *Store) RecentQueries(source string, limit int) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT query FROM query_history
		WHERE source = ?
		GROUP BY query
		ORDER BY MAX(id) DESC
		LIMIT ?`, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("failed to scan history query: %w", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// Prune keeps only the newest keep entries and returns how many were removed
func (s *Store) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.Exec(`
		DELETE FROM query_history
		WHERE id NOT IN (
			SELECT id FROM query_history ORDER BY id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var executedAt string

		err := rows.Scan(
			&e.ID,
			&e.Source,
			&e.Query,
			&e.Matched,
			&e.Total,
			&executedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		e.ExecutedAt = parseTime(executedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
