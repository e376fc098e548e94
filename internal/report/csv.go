// Package report writes the inventory CSV reports and renders run summaries.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Writer appends rows to a CSV report. The header is written once at
// creation, and every row is flushed and synced to disk immediately so an
// interrupted run still leaves a valid, readable report behind.
type Writer struct {
	path string
	f    *os.File
	w    *csv.Writer
	rows int
}

// NewWriter creates the report file, truncating any previous one, and writes
// the header row.
func NewWriter(path string, columns []string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating report file %s: %w", path, err)
	}
	w := &Writer{path: path, f: f, w: csv.NewWriter(f)}
	if err := w.write(columns); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header to %s: %w", path, err)
	}
	return w, nil
}

// WriteRow appends one record and syncs it to disk.
func (w *Writer) WriteRow(record []string) error {
	if err := w.write(record); err != nil {
		return fmt.Errorf("writing row to %s: %w", w.path, err)
	}
	w.rows++
	return nil
}

func (w *Writer) write(record []string) error {
	if err := w.w.Write(record); err != nil {
		return err
	}
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return err
	}
	return w.f.Sync()
}

// Rows reports how many data rows have been written, excluding the header.
func (w *Writer) Rows() int {
	return w.rows
}

// Path returns the report file path.
func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
