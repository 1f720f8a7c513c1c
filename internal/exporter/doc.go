// Package exporter writes domain tables as CSV.
//
// CSVWriter backs the "export.csv" download of every dashboard table and
// the fte-aggregate command line tool. Output can carry a UTF-8 BOM so
// Excel recognises the encoding when the file is opened directly.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteTable(os.Stdout, table, exporter.WriteOptions{})
//
// Rows are streamed through StreamWriter, which can also be used on its own
// when rows are produced incrementally.
package exporter
