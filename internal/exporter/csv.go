package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"fteapp/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter exports tables as CSV
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // prepend a UTF-8 BOM for Excel
}

// WriteTable writes the header row and every data row of tbl to w
func (cw *CSVWriter) WriteTable(w io.Writer, tbl domain.Table, opts WriteOptions) error {
	if err := tbl.Validate(); err != nil {
		return fmt.Errorf("invalid table: %w", err)
	}

	stream, err := NewStreamWriter(w, tbl.Columns, opts.BOMPrefix)
	if err != nil {
		return err
	}

	for i, row := range tbl.Rows {
		if err := stream.WriteRow(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := stream.Flush(); err != nil {
		return err
	}

	cw.logger.Debug("table exported",
		slog.Int("columns", len(tbl.Columns)),
		slog.Int("rows", tbl.Len()))
	return nil
}

// WriteTableFile writes tbl to path, replacing any existing file
func (cw *CSVWriter) WriteTableFile(path string, tbl domain.Table, opts WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	if err := cw.WriteTable(file, tbl, opts); err != nil {
		file.Close()
		return err
	}

	cw.logger.Info("Wrote CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", tbl.Len()))
	return file.Close()
}

// StreamWriter writes rows of cells as CSV records
type StreamWriter struct {
	writer *csv.Writer
	width  int
}

// NewStreamWriter writes the optional BOM and the header, then returns a
// writer for the data rows
func NewStreamWriter(w io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	return &StreamWriter{writer: writer, width: len(headers)}, nil
}

// WriteRow writes one record. Rows are padded or truncated to the header width.
func (s *StreamWriter) WriteRow(cells []domain.Cell) error {
	record := make([]string, s.width)
	for i := 0; i < s.width && i < len(cells); i++ {
		record[i] = formatCell(cells[i])
	}
	return s.writer.Write(record)
}

// Flush writes any buffered data and reports the first write error
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}
