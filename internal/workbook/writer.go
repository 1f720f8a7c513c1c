package workbook

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"fteapp/pkg/contracts/domain"
)

// Write encodes the table as a single-sheet workbook at path, replacing
// any existing file in full.
func (c *Codec) Write(path string, tbl domain.Table, sheet string) error {
	if err := tbl.Validate(); err != nil {
		return fmt.Errorf("invalid table: %w", err)
	}
	if sheet == "" {
		sheet = c.DefaultSheet
	}
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()

	if current := f.GetSheetName(0); current != sheet {
		if err := f.SetSheetName(current, sheet); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for j, name := range tbl.Columns {
		ref, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, ref, name); err != nil {
			return fmt.Errorf("failed to write header %q: %w", name, err)
		}
		if err := f.SetCellStyle(sheet, ref, ref, headerStyle); err != nil {
			return fmt.Errorf("failed to style header %q: %w", name, err)
		}
	}

	for i, row := range tbl.Rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := writeCell(f, sheet, ref, cell); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", ref, err)
			}
		}
	}

	// trailing all-missing rows leave no cells behind, so the used range
	// carries the row count
	last, err := excelize.CoordinatesToCellName(max(len(tbl.Columns), 1), len(tbl.Rows)+1)
	if err != nil {
		return err
	}
	if err := f.SetSheetDimension(sheet, "A1:"+last); err != nil {
		return fmt.Errorf("failed to set used range: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeCell(f *excelize.File, sheet, ref string, cell domain.Cell) error {
	switch cell.Kind {
	case domain.CellNumber:
		return f.SetCellFloat(sheet, ref, cell.Num, -1, 64)
	case domain.CellText:
		if cell.Str == "" {
			return nil
		}
		return f.SetCellStr(sheet, ref, cell.Str)
	case domain.CellBool:
		return f.SetCellBool(sheet, ref, cell.Flag)
	case domain.CellDate:
		return f.SetCellValue(sheet, ref, cell.Time.UTC())
	default:
		return nil
	}
}
