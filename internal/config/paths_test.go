package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.BaseDir = base

	paths, err := NewPaths(cfg)
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
	assert.Equal(t, filepath.Join(base, "data", ActualWorkbookName), paths.ActualWorkbook)
	assert.Equal(t, filepath.Join(base, "data", OptimalWorkbookName), paths.OptimalWorkbook)
	assert.Equal(t, filepath.Join(base, "data", ForecastWorkbookName), paths.ForecastWorkbook)
	assert.Equal(t, ActualSheetName, paths.ActualSheet)
}

func TestNewPathsAbsoluteOverrides(t *testing.T) {
	base := t.TempDir()
	elsewhere := t.TempDir()

	cfg := Default()
	cfg.Paths.BaseDir = base
	cfg.Paths.DataDir = "."
	cfg.Workbooks.OptimalFile = filepath.Join(elsewhere, "targets.xlsx")

	paths, err := NewPaths(cfg)
	require.NoError(t, err)

	assert.Equal(t, base, paths.DataDir)
	assert.Equal(t, filepath.Join(base, ActualWorkbookName), paths.ActualWorkbook)
	assert.Equal(t, filepath.Join(elsewhere, "targets.xlsx"), paths.OptimalWorkbook)
}

func TestNewPathsDefaultsToWorkingDirectory(t *testing.T) {
	cfg := Default()
	paths, err := NewPaths(cfg)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, paths.BaseDir)
}

func TestEnsureDirectories(t *testing.T) {
	cfg := Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Paths.DataDir = "nested/data"

	paths, err := NewPaths(cfg)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	assert.DirExists(t, paths.DataDir)
	assert.DirExists(t, paths.LogsDir)
	assert.Equal(t, filepath.Join(paths.LogsDir, "web.log"), paths.GetLogPath("web.log"))
	assert.Equal(t, filepath.Join(paths.DataDir, "x.xlsx"), paths.GetDataPath("x.xlsx"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	assert.True(t, FileExists(path))
	assert.False(t, FileExists(filepath.Join(dir, "absent.txt")))
}
