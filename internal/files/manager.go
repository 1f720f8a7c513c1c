package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fteapp/internal/config"
	"fteapp/pkg/contracts/domain"
)

// WorkbookInfo describes one workbook in the data directory
type WorkbookInfo struct {
	Table   string    `json:"table,omitempty"`
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Sheet   string    `json:"sheet,omitempty"`
	Exists  bool      `json:"exists"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time,omitempty"`
}

// Manager resolves the dashboard's workbooks inside the data directory
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new data directory manager
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger.With(slog.String("component", "file_manager"))}
}

// DataDir returns the absolute data directory
func (m *Manager) DataDir() string {
	return m.paths.DataDir
}

// Workbook returns the file path and sheet backing a table. The sheet is
// empty for single-sheet workbooks.
func (m *Manager) Workbook(kind domain.TableKind) (path, sheet string) {
	switch kind {
	case domain.TableOptimal:
		return m.paths.OptimalWorkbook, ""
	case domain.TableForecast:
		return m.paths.ForecastWorkbook, ""
	default:
		return m.paths.ActualWorkbook, m.paths.ActualSheet
	}
}

// Describe stats the workbook backing a table
func (m *Manager) Describe(kind domain.TableKind) WorkbookInfo {
	path, sheet := m.Workbook(kind)
	info := describe(path)
	info.Table = string(kind)
	info.Sheet = sheet
	return info
}

// ListWorkbooks returns the three configured workbooks followed by any
// other .xlsx files found in the data directory, sorted by name
func (m *Manager) ListWorkbooks() ([]WorkbookInfo, error) {
	kinds := []domain.TableKind{domain.TableActual, domain.TableOptimal, domain.TableForecast}
	known := make(map[string]bool, len(kinds))

	out := make([]WorkbookInfo, 0, len(kinds))
	for _, kind := range kinds {
		info := m.Describe(kind)
		known[filepath.Clean(info.Path)] = true
		out = append(out, info)
	}

	entries, err := os.ReadDir(m.paths.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var extra []WorkbookInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".xlsx") || strings.HasPrefix(name, "~$") {
			continue
		}
		path := filepath.Join(m.paths.DataDir, name)
		if known[filepath.Clean(path)] {
			continue
		}
		extra = append(extra, describe(path))
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Name < extra[j].Name })

	m.logger.Debug("Listed workbooks",
		slog.String("data_dir", m.paths.DataDir),
		slog.Int("extra", len(extra)))
	return append(out, extra...), nil
}

// CheckWritable verifies that saves can create files in the data directory
func (m *Manager) CheckWritable() error {
	if err := os.MkdirAll(m.paths.DataDir, 0755); err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}

	probe, err := os.CreateTemp(m.paths.DataDir, ".write-check-*")
	if err != nil {
		return fmt.Errorf("data directory not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

func describe(path string) WorkbookInfo {
	info := WorkbookInfo{Name: filepath.Base(path), Path: path}
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		info.Exists = true
		info.Size = st.Size()
		info.ModTime = st.ModTime()
	}
	return info
}
