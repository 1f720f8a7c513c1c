package dataprocessing

import (
	"fteapp/pkg/contracts/domain"
)

// AggregateActual drops rows with a missing Section or FTE value and sums
// "Rolling 12month FTE" per Section. Sections keep their first-appearance
// order and are matched exactly, without trimming or case folding.
//
// A table lacking either column yields the empty actual schema table.
func AggregateActual(tbl domain.Table) domain.Table {
	return domain.ActualTable(AggregateActualRecords(tbl))
}

// AggregateActualRecords is AggregateActual returning typed records
func AggregateActualRecords(tbl domain.Table) []domain.ActualFTE {
	sectionIdx := tbl.ColumnIndex(domain.ColSection)
	fteIdx := tbl.ColumnIndex(domain.ColRolling12MonthFTE)
	if sectionIdx < 0 || fteIdx < 0 {
		return []domain.ActualFTE{}
	}

	out := []domain.ActualFTE{}
	index := make(map[string]int)

	for _, row := range tbl.Rows {
		if sectionIdx >= len(row) || fteIdx >= len(row) {
			continue
		}
		section, fte := row[sectionIdx], row[fteIdx]
		if section.IsMissing() || fte.IsMissing() {
			continue
		}
		value, ok := fte.Float()
		if !ok {
			continue
		}

		key := section.String()
		if i, seen := index[key]; seen {
			out[i].Rolling12MonthFTE += value
			continue
		}
		index[key] = len(out)
		out = append(out, domain.ActualFTE{Section: key, Rolling12MonthFTE: value})
	}

	return out
}
