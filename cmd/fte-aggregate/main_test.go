package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fteapp/internal/config"
	"fteapp/internal/shared/testutil"
	"fteapp/pkg/contracts"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	actual := testutil.WriteWorkbook(t, dir, config.ActualWorkbookName, config.ActualSheetName,
		testutil.ActualSheetRows()...)
	optimal := testutil.WriteWorkbook(t, dir, config.OptimalWorkbookName, "Sheet1",
		[]interface{}{"Section", "Optimal FTE"},
		[]interface{}{"Chest", 4.0},
	)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:    "aggregate",
			args:    []string{"-file", actual, "-sheet", config.ActualSheetName},
			wantOut: "Section,Rolling 12month FTE\nChest,3.5\n",
		},
		{
			name:    "chart series",
			args:    []string{"-file", actual, "-sheet", config.ActualSheetName, "-optimal", optimal},
			wantOut: "Section,FTE Type,FTE\nChest,Rolling 12month FTE,3.5\nChest,Optimal FTE,4\n",
		},
		{
			name:    "missing workbook prints the header only",
			args:    []string{"-file", filepath.Join(dir, "absent.xlsx"), "-sheet", "x"},
			wantOut: "Section,Rolling 12month FTE\n",
		},
		{
			name:     "missing sheet fails",
			args:     []string{"-file", actual, "-sheet", "Summary"},
			wantCode: 1,
		},
		{
			name:    "list sheets",
			args:    []string{"-list-sheets", "-file", actual},
			wantOut: config.ActualSheetName + "\n",
		},
		{
			name:     "list sheets of missing workbook fails",
			args:     []string{"-list-sheets", "-file", filepath.Join(dir, "absent.xlsx")},
			wantCode: 1,
		},
		{
			name:    "version",
			args:    []string{"-version"},
			wantOut: "FTE Optimization Dashboard v" + contracts.Version + "\n",
		},
		{
			name:     "bad flag",
			args:     []string{"-nope"},
			wantCode: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			require.Equal(t, tt.wantCode, code, stderr.String())
			if tt.wantCode == 0 {
				assert.Equal(t, tt.wantOut, stdout.String())
			}
		})
	}
}

func TestRunWritesFile(t *testing.T) {
	dir := t.TempDir()
	actual := testutil.WriteWorkbook(t, dir, config.ActualWorkbookName, config.ActualSheetName,
		testutil.ActualSheetRows()...)
	out := filepath.Join(dir, "out", "totals.csv")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-file", actual, "-sheet", config.ActualSheetName, "-out", out, "-bom"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "\uFEFFSection,Rolling 12month FTE\nChest,3.5\n", string(data))
}
