package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fteapp/pkg/contracts/domain"
)

func TestCoerceGridValue(t *testing.T) {
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		hint domain.CellKind
		want domain.Cell
	}{
		{"empty", "", domain.CellText, domain.Missing()},
		{"blank", "   ", domain.CellNumber, domain.Missing()},
		{"number", "2.5", domain.CellNumber, domain.Number(2.5)},
		{"numeric text stays text", "007", domain.CellText, domain.Text("007")},
		{"exponent text stays text", "1e3", domain.CellText, domain.Text("1e3")},
		{"new row number", "2.5", domain.CellMissing, domain.Number(2.5)},
		{"edited date to number", "3", domain.CellDate, domain.Number(3)},
		{"negative number", "-1", domain.CellMissing, domain.Number(-1)},
		{"text", "Chest", domain.CellMissing, domain.Text("Chest")},
		{"date kept", "2025-07-01", domain.CellDate, domain.Date(day)},
		{"date with time", "2025-07-01 13:30:00", domain.CellDate, domain.Date(day.Add(13*time.Hour + 30*time.Minute))},
		{"date without hint", "2025-07-01", domain.CellText, domain.Text("2025-07-01")},
		{"bad date", "soon", domain.CellDate, domain.Text("soon")},
		{"bool kept", "true", domain.CellBool, domain.Bool(true)},
		{"bool without hint", "true", domain.CellText, domain.Text("true")},
		{"infinity is text", "Inf", domain.CellNumber, domain.Text("Inf")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceGridValue(tt.raw, tt.hint)
			assert.True(t, tt.want.Equal(got), "want %#v, got %#v", tt.want, got)
		})
	}
}

func TestGridTable(t *testing.T) {
	columns := []string{"Section", "Optimal FTE"}
	values := [][]string{
		{"Chest", "3"},
		{"Neuro"},
		{"", ""},
	}
	hints := [][]string{
		{"text", "number"},
	}

	tbl := GridTable(columns, values, hints)
	assert.NoError(t, tbl.Validate())
	assert.Equal(t, columns, tbl.Columns)
	assert.Equal(t, 3, tbl.Len())
	assert.True(t, tbl.Cell(0, "Optimal FTE").Equal(domain.Number(3)))
	assert.True(t, tbl.Cell(1, "Optimal FTE").IsMissing())
	assert.True(t, tbl.Cell(2, "Section").IsMissing())
}

func TestGridTableEmpty(t *testing.T) {
	tbl := GridTable(domain.OptimalSchema.Columns, nil, nil)
	assert.NotNil(t, tbl.Rows)
	assert.Equal(t, 0, tbl.Len())
}
