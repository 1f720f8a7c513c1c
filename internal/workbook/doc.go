// Package workbook converts between xlsx worksheets and domain tables.
//
// The first row of a sheet is the header. Every following row becomes one
// table row, with cell kinds taken from the stored cell type and number
// format:
//
//   - blank cells and empty strings are missing
//   - numeric cells with a date number format are dates
//   - other numeric cells are numbers, parsed from the raw stored value
//   - boolean cells are booleans
//   - everything else is text
//
// Writing produces a single-sheet workbook with a bold header row, the
// same layout as the workbooks staff upload by hand. Reading back a
// written table yields an equal table.
//
// # Usage
//
//	codec := workbook.NewCodec()
//	tbl, err := codec.Read("data/optimal_fte.xlsx", "")
//	if err != nil {
//	    return err
//	}
//	err = codec.Write("data/optimal_fte.xlsx", tbl, "")
package workbook
