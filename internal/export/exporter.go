package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/rebeliceyang/lazytable/internal/models"
)

// ErrUnknownFormat is returned when the export path has no supported extension
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension, ignoring a trailing .gz
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(strings.ToLower(path), ".gz")))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Base(path))
	}
}

// ToCSV writes a header of column names followed by one record per row
func ToCSV(w io.Writer, cols []*models.Column, rows []*models.Row) error {
	writer := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Name
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		if err := writer.Write(row.Values(cols)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// ToJSON writes an indented array of objects keyed by column name.
// NULL cells are written as null.
func ToJSON(w io.Writer, cols []*models.Column, rows []*models.Row) error {
	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]any, len(cols))
		for _, col := range cols {
			cell := row.Cell(col)
			switch {
			case cell == nil:
				record[col.Name] = ""
			case cell.Null:
				record[col.Name] = nil
			default:
				record[col.Name] = cell.Value
			}
		}
		records = append(records, record)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to marshal rows to JSON: %w", err)
	}
	return nil
}

// ExportToCSV writes the rows to a CSV file
func ExportToCSV(path string, cols []*models.Column, rows []*models.Row) error {
	return writeFile(path, func(w io.Writer) error {
		return ToCSV(w, cols, rows)
	})
}

// ExportToJSON writes the rows to a JSON file
func ExportToJSON(path string, cols []*models.Column, rows []*models.Row) error {
	return writeFile(path, func(w io.Writer) error {
		return ToJSON(w, cols, rows)
	})
}

// ExportFile writes the rows in the format given by the path's extension
func ExportFile(path string, cols []*models.Column, rows []*models.Row) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == FormatJSON {
		return ExportToJSON(path, cols, rows)
	}
	return ExportToCSV(path, cols, rows)
}

// CSVString renders the rows as CSV text, for the clipboard
func CSVString(cols []*models.Column, rows []*models.Row) (string, error) {
	var b strings.Builder
	if err := ToCSV(&b, cols, rows); err != nil {
		return "", err
	}
	return b.String(), nil
}

// writeFile creates path with mode 0644 and gzips the output when path ends in .gz
func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		if err := write(file); err != nil {
			return err
		}
		return file.Close()
	}

	gz := gzip.NewWriter(file)
	gz.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := write(gz); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return file.Close()
}
