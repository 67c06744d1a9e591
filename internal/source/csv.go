package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/rebeliceyang/lazytable/internal/config"
	"github.com/rebeliceyang/lazytable/internal/logger"
	"github.com/rebeliceyang/lazytable/internal/models"
)

// CSV reads a table from a CSV file. The first record is the header.
// Files ending in .gz are decompressed.
type CSV struct {
	Path      string
	Delimiter rune
	RowLimit  int
}

// NewCSV creates a CSV source for path
func NewCSV(path string, cfg config.SourceConfig) *CSV {
	delimiter := ','
	if cfg.Delimiter == `\t` || cfg.Delimiter == "tab" {
		delimiter = '\t'
	} else if r, _ := utf8.DecodeRuneInString(cfg.Delimiter); r != utf8.RuneError {
		delimiter = r
	}
	return &CSV{Path: path, Delimiter: delimiter, RowLimit: cfg.RowLimit}
}

// Key returns the absolute file path
func (c *CSV) Key() string {
	if abs, err := filepath.Abs(c.Path); err == nil {
		return abs
	}
	return c.Path
}

// Load reads the file
func (c *CSV) Load(ctx context.Context) (*models.Table, error) {
	log := logger.FromContext(ctx).WithComponent("source")

	file, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	if strings.HasSuffix(strings.ToLower(c.Path), ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	table, err := c.read(ctx, r)
	if err != nil {
		return nil, err
	}

	log.Infow("loaded CSV", "path", c.Path, "columns", len(table.Columns), "rows", len(table.Rows))
	return table, nil
}

func (c *CSV) read(ctx context.Context, r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = c.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return models.NewTable(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for c.RowLimit <= 0 || len(rows) < c.RowLimit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, record)
	}

	return models.NewTable(header, rows), nil
}
