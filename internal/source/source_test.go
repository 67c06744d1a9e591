package source_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/rebeliceyang/lazytable/internal/config"
	"github.com/rebeliceyang/lazytable/internal/models"
	"github.com/rebeliceyang/lazytable/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func sourceConfig() config.SourceConfig {
	return config.GetDefaults().Source
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  string
		want    any
		wantErr error
	}{
		{name: "csv path", target: "data/people.csv", want: &source.CSV{}},
		{name: "postgres", target: "postgres://bob@db:5432/app?table=users", want: &source.Postgres{}},
		{name: "postgresql", target: "postgresql://bob@db/app?table=s.users", want: &source.Postgres{}},
		{name: "sqlite", target: "sqlite://app.db?table=users", want: &source.SQLite{}},
		{name: "postgres without table", target: "postgres://db/app", wantErr: source.ErrNoTable},
		{name: "sqlite without table", target: "sqlite://app.db", wantErr: source.ErrNoTable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := source.Open(tt.target, sourceConfig())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, src)
		})
	}

	_, err := source.Open("  ", sourceConfig())
	assert.Error(t, err)
}

func TestPostgres_Parse(t *testing.T) {
	t.Parallel()

	cfg := sourceConfig()
	cfg.RowLimit = 100

	pg, err := source.NewPostgres("postgres://bob:secret@db:5432/app?sslmode=disable&table=sales.orders", cfg)
	require.NoError(t, err)

	assert.Equal(t, "sales", pg.Schema)
	assert.Equal(t, "orders", pg.Table)
	assert.NotContains(t, pg.ConnString, "table=")
	assert.Contains(t, pg.ConnString, "sslmode=disable")
	assert.Equal(t, "postgres://bob@db:5432/app/sales.orders", pg.Key())
	assert.NotContains(t, pg.Key(), "secret")

	query, args, err := pg.SelectSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "sales"."orders" LIMIT 100`, query)
	assert.Empty(t, args)

	pg, err = source.NewPostgres("postgres://db/app?table=orders", cfg)
	require.NoError(t, err)
	assert.Equal(t, "public", pg.Schema)
}

func TestLookupPassword(t *testing.T) {
	t.Parallel()

	var gotService, gotUser string
	found := func(service, user string) (string, error) {
		gotService, gotUser = service, user
		return "hunter2", nil
	}

	password, err := source.LookupPassword(found, "bob", "db.local")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)
	assert.Equal(t, "lazytable", gotService)
	assert.Equal(t, "bob@db.local", gotUser)

	missing := func(string, string) (string, error) { return "", keyring.ErrNotFound }
	password, err = source.LookupPassword(missing, "bob", "db.local")
	require.NoError(t, err)
	assert.Empty(t, password)

	broken := func(string, string) (string, error) { return "", errors.New("dbus unavailable") }
	_, err = source.LookupPassword(broken, "bob", "db.local")
	assert.Error(t, err)
}

func TestCSV_Load(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "people.csv")
	content := "\ufeffname,age,joined\nAlice,30,2024-01-02\nBob,NULL,2023-05-06\nCarol,41\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := source.NewCSV(path, sourceConfig()).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, table.Columns, 3)
	assert.Equal(t, "name", table.Columns[0].Name)
	assert.Equal(t, models.ColumnTypeNumber, table.Columns[1].Type)
	assert.Equal(t, models.ColumnTypeDate, table.Columns[2].Type)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "", table.Rows[2].Cells[2].Value, "short rows are padded")
	assert.False(t, table.Rows[1].Cells[1].Null, "NULL text in a CSV is not a database NULL")
	assert.Equal(t, "NULL", table.Rows[1].Cells[1].FilterValue())
}

func TestCSV_LoadOptions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rows.tsv.gz")

	file, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(file)
	_, err = gz.Write([]byte("a\tb\n1\t2\n3\t4\n5\t6\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, file.Close())

	cfg := sourceConfig()
	cfg.Delimiter = "tab"
	cfg.RowLimit = 2

	table, err := source.NewCSV(path, cfg).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", table.Columns[1].Name)
	assert.Len(t, table.Rows, 2)

	_, err = source.NewCSV(filepath.Join(dir, "missing.csv"), cfg).Load(context.Background())
	assert.Error(t, err)
}

func TestSQLite_Load(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE "user list" (id INTEGER, name TEXT, score REAL, note BLOB);
		INSERT INTO "user list" VALUES (1, 'Alice', 9.5, NULL);
		INSERT INTO "user list" VALUES (2, 'Bob', 7, x'6869');
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src, err := source.Open("sqlite://"+path+"?table=user+list", sourceConfig())
	require.NoError(t, err)
	assert.Contains(t, src.Key(), "table=user list")

	table, err := src.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, table.Columns, 4)
	assert.Equal(t, []string{"id", "name", "score", "note"}, []string{
		table.Columns[0].Name, table.Columns[1].Name, table.Columns[2].Name, table.Columns[3].Name,
	})
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"1", "Alice", "9.5", "NULL"}, table.Rows[0].Values(table.Columns))
	assert.True(t, table.Rows[0].Cells[3].Null)
	assert.Equal(t, "", table.Rows[0].Cells[3].FilterValue())
	assert.False(t, table.Rows[1].Cells[3].Null)
	assert.Equal(t, "hi", table.Rows[1].Cells[3].Value)
	assert.Equal(t, models.ColumnTypeNumber, table.Columns[2].Type)
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "nil", value: nil, expected: "NULL"},
		{name: "bytes", value: []byte("abc"), expected: "abc"},
		{name: "int", value: int64(42), expected: "42"},
		{name: "float", value: 1.5, expected: "1.5"},
		{name: "bool", value: true, expected: "true"},
		{name: "date", value: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), expected: "2024-01-02"},
		{name: "timestamp", value: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), expected: "2024-01-02 03:04:05"},
		{name: "uuid bytes", value: [16]byte(id), expected: id.String()},
		{name: "json object", value: map[string]any{"a": 1}, expected: `{"a":1}`},
		{name: "json array", value: []any{"x", 2}, expected: `["x",2]`},
		{name: "valuer", value: sql.NullString{String: "v", Valid: true}, expected: "v"},
		{name: "null valuer", value: sql.NullString{}, expected: "NULL"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, source.FormatValue(tt.value))
		})
	}
}

func TestIsNull(t *testing.T) {
	t.Parallel()

	assert.True(t, source.IsNull(nil))
	assert.True(t, source.IsNull(sql.NullString{}))
	assert.False(t, source.IsNull(sql.NullString{String: "NULL", Valid: true}))
	assert.False(t, source.IsNull("NULL"))
	assert.False(t, source.IsNull(int64(0)))
}
