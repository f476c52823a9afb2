package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ReadCSV reads a headered CSV stream into a Table.
//
// Header and cell values are whitespace-trimmed, a UTF-8 BOM on the first
// header cell is stripped, and empty cells become nil (the missing-value
// marker). Short records are padded with nil; long records are truncated to
// the header width. All cells are read as strings; type coercion is a
// cleaning concern.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if err == io.EOF {
		return Table{}, fmt.Errorf("csv: empty input, no header")
	}
	if err != nil {
		return Table{}, fmt.Errorf("csv: read header: %w", err)
	}

	t := Table{Columns: make([]string, len(hdr))}
	for i, h := range hdr {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		t.Columns[i] = h
	}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return t, nil
		}
		line++
		if err != nil {
			return t, fmt.Errorf("csv: line %d: %w", line, err)
		}

		row := make([]any, len(t.Columns))
		for i := range t.Columns {
			if i >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[i])
			if v == "" {
				continue
			}
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
}

// ReadCSVFile reads a headered CSV file into a Table.
func ReadCSVFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteCSV writes the table as headered CSV. Missing values are written as
// empty cells; dates are written as calendar dates (2006-01-02).
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			rec[i] = FormatCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to path, creating parent directories.
func WriteCSVFile(path string, t Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// FormatCell renders a cell value for CSV output.
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprint(v)
	}
}
