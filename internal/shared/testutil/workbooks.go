package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a fixture workbook. Rows[0] is the header.
// Values are written with excelize SetSheetRow, so nil leaves a blank cell.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WriteWorkbook writes a single-sheet workbook to dir/name and returns its path
func WriteWorkbook(t *testing.T, dir, name, sheet string, rows ...[]interface{}) string {
	t.Helper()
	return WriteSheets(t, dir, name, Sheet{Name: sheet, Rows: rows})
}

// WriteSheets writes a workbook with one worksheet per entry, in order
func WriteSheets(t *testing.T, dir, name string, sheets ...Sheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				t.Fatalf("rename sheet %q: %v", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("create sheet %q: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			ref, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			values := row
			if err := f.SetSheetRow(sheet.Name, ref, &values); err != nil {
				t.Fatalf("write row %d of %q: %v", r+1, sheet.Name, err)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook %s: %v", path, err)
	}
	return path
}

// WriteCorruptWorkbook writes bytes that are not a zip archive under an
// .xlsx name, so excelize fails to open it
func WriteCorruptWorkbook(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("this is not a workbook"), 0644); err != nil {
		t.Fatalf("write corrupt workbook: %v", err)
	}
	return path
}

// ActualSheetRows is a small cumulative summary: Chest appears twice,
// Neuro has no FTE and one row has no section.
func ActualSheetRows() [][]interface{} {
	return [][]interface{}{
		{"Section", "Rolling 12month FTE", "Notes"},
		{"Chest", 2.5, "a"},
		{"Chest", 1.0, nil},
		{"Neuro", nil, "pending"},
		{nil, 3.0, "orphan"},
	}
}
