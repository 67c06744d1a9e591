package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/rebeliceyang/lazytable/internal/models"
)

func testTable() *models.Table {
	table := models.NewTable(
		[]string{"id", "name", "note"},
		[][]string{
			{"1", "Alice", "commas, quotes \"and\" special chars"},
			{"2", "Bob", ""},
		},
	)
	table.MarkNull(1, 2)
	return table
}

func TestExportToCSV(t *testing.T) {
	table := testTable()

	tmpDir := t.TempDir()
	csvPath := filepath.Join(tmpDir, "test.csv")

	if err := ExportToCSV(csvPath, table.Columns, table.Rows); err != nil {
		t.Fatalf("ExportToCSV failed: %v", err)
	}

	info, err := os.Stat(csvPath)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("Expected file permissions 0644, got %o", info.Mode().Perm())
	}

	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) != 3 { // header + 2 rows
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	expectedHeader := []string{"id", "name", "note"}
	if !slicesEqual(records[0], expectedHeader) {
		t.Errorf("Header mismatch.\nExpected: %v\nGot: %v", expectedHeader, records[0])
	}
	if records[1][2] != "commas, quotes \"and\" special chars" {
		t.Errorf("Expected quoted note to survive, got '%s'", records[1][2])
	}
	if records[2][2] != "NULL" {
		t.Errorf("Expected NULL to be written as-is, got '%s'", records[2][2])
	}
}

func TestExportToCSV_ColumnSubset(t *testing.T) {
	table := testTable()

	out, err := CSVString([]*models.Column{table.Columns[1]}, table.Rows)
	if err != nil {
		t.Fatalf("CSVString failed: %v", err)
	}

	expected := "name\nAlice\nBob\n"
	if out != expected {
		t.Errorf("Expected %q, got %q", expected, out)
	}
}

func TestToJSON_NullTextStaysText(t *testing.T) {
	table := models.NewTable([]string{"note"}, [][]string{{"NULL"}})

	var buf strings.Builder
	if err := ToJSON(&buf, table.Columns, table.Rows); err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var parsed []map[string]any
	if err := json.Unmarshal([]byte(buf.String()), &parsed); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if parsed[0]["note"] != "NULL" {
		t.Errorf("Expected literal NULL text to stay a string, got '%v'", parsed[0]["note"])
	}
}

func TestExportToJSON(t *testing.T) {
	table := testTable()

	tmpDir := t.TempDir()
	jsonPath := filepath.Join(tmpDir, "test.json")

	if err := ExportToJSON(jsonPath, table.Columns, table.Rows); err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}

	var parsed []map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if len(parsed) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(parsed))
	}
	if parsed[0]["name"] != "Alice" {
		t.Errorf("Expected name 'Alice', got '%v'", parsed[0]["name"])
	}
	if v, ok := parsed[1]["note"]; !ok || v != nil {
		t.Errorf("Expected NULL note to be null, got '%v'", v)
	}

	jsonStr := string(data)
	if !strings.Contains(jsonStr, "\n") {
		t.Error("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(jsonStr, "  ") {
		t.Error("JSON should be indented")
	}
}

func TestExportEmptyRows(t *testing.T) {
	table := testTable()
	tmpDir := t.TempDir()

	csvPath := filepath.Join(tmpDir, "empty.csv")
	if err := ExportToCSV(csvPath, table.Columns, nil); err != nil {
		t.Fatalf("ExportToCSV with no rows failed: %v", err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) != 1 { // Only header
		t.Errorf("Expected 1 record (header), got %d", len(records))
	}

	jsonPath := filepath.Join(tmpDir, "empty.json")
	if err := ExportToJSON(jsonPath, table.Columns, nil); err != nil {
		t.Fatalf("ExportToJSON with no rows failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("Expected empty array, got %q", string(data))
	}
}

func TestExportFile_Gzip(t *testing.T) {
	table := testTable()
	path := filepath.Join(t.TempDir(), "rows.csv.gz")

	if err := ExportFile(path, table.Columns, table.Rows); err != nil {
		t.Fatalf("ExportFile failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open export: %v", err)
	}
	defer func() { _ = file.Close() }()

	gz, err := gzip.NewReader(file)
	if err != nil {
		t.Fatalf("Export is not gzip: %v", err)
	}
	defer func() { _ = gz.Close() }()

	if gz.Name != "rows.csv" {
		t.Errorf("Expected gzip name 'rows.csv', got '%s'", gz.Name)
	}

	records, err := csv.NewReader(gz).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("Expected 3 records, got %d", len(records))
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "out.csv", want: FormatCSV},
		{path: "OUT.JSON", want: FormatJSON},
		{path: "out.json.gz", want: FormatJSON},
		{path: "out.csv.GZ", want: FormatCSV},
		{path: "out.xlsx", wantErr: true},
		{path: "out", wantErr: true},
		{path: "out.gz", wantErr: true},
	}

	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("%s: expected ErrUnknownFormat, got %v", tt.path, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.path, tt.want, got)
		}
	}
}

func TestExportFile_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.txt")

	err := ExportFile(path, nil, nil)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("Expected ErrUnknownFormat, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("No file should be created for an unknown format")
	}
}

// Helper function to compare slices
func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
