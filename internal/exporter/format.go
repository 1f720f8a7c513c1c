package exporter

import (
	"time"

	"fteapp/pkg/contracts/domain"
)

// formatCell renders a cell for CSV output. Missing cells are empty and
// dates with a time component keep it in ISO form.
func formatCell(c domain.Cell) string {
	if c.Kind == domain.CellDate && !isMidnight(c.Time) {
		return c.Time.Format(time.RFC3339)
	}
	return c.String()
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
