package storage

import (
	"car-rental-scraper/models"
	"car-rental-scraper/utils"
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CSVWriter saves records to one CSV file, replacing whatever was there.
type CSVWriter struct {
	path    string
	columns []string
}

func NewCSVWriter(path string, columns []string) *CSVWriter {
	return &CSVWriter{path: path, columns: columns}
}

func (w *CSVWriter) Path() string {
	return w.path
}

// Write emits the header row and one row per record, in order. The header
// is written even when there are no records. Fields holding a comma, a
// quote or a line break are quoted, with inner quotes doubled.
func (w *CSVWriter) Write(records []models.Record) error {
	if len(w.columns) == 0 {
		return fmt.Errorf("csv %s: no columns", w.path)
	}
	if len(records) == 0 {
		utils.Warn("No records for %s, writing header only", w.path)
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create output dir: %w", err)
		}
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	if err := writeRow(writer, w.columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for i, r := range records {
		if err := writeRow(writer, r.Values(w.columns)); err != nil {
			return fmt.Errorf("csv row %d: %w", i+1, err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}

	utils.Success("Saved %d rows → %s", len(records), w.path)
	return nil
}

func writeRow(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quoteField(f)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// quoteField wraps a field in quotes only when it holds a comma, a quote or
// a line break; inner quotes are doubled. Everything else is written as is.
func quoteField(f string) string {
	if !strings.ContainsAny(f, ",\"\r\n") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}
