package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved locations of everything the dashboard touches.
// This is the single source of truth for file paths in the application.
type Paths struct {
	BaseDir string
	DataDir string
	LogsDir string

	ActualWorkbook   string
	ActualSheet      string
	OptimalWorkbook  string
	ForecastWorkbook string
}

// NewPaths resolves the configured locations into absolute paths
func NewPaths(cfg *Config) (*Paths, error) {
	base := cfg.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	dataDir := resolve(base, cfg.Paths.DataDir)

	return &Paths{
		BaseDir:          base,
		DataDir:          dataDir,
		LogsDir:          resolve(base, cfg.Paths.LogsDir),
		ActualWorkbook:   resolve(dataDir, cfg.Workbooks.ActualFile),
		ActualSheet:      cfg.Workbooks.ActualSheet,
		OptimalWorkbook:  resolve(dataDir, cfg.Workbooks.OptimalFile),
		ForecastWorkbook: resolve(dataDir, cfg.Workbooks.ForecastFile),
	}, nil
}

func resolve(base, p string) string {
	if p == "" {
		return base
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates the data and logs directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetDataPath returns the full path for a file in the data directory
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs where each workbook is expected
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Path resolution",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("actual_workbook", p.ActualWorkbook),
		slog.Bool("actual_exists", FileExists(p.ActualWorkbook)),
		slog.String("actual_sheet", p.ActualSheet),
		slog.String("optimal_workbook", p.OptimalWorkbook),
		slog.Bool("optimal_exists", FileExists(p.OptimalWorkbook)),
		slog.String("forecast_workbook", p.ForecastWorkbook),
		slog.Bool("forecast_exists", FileExists(p.ForecastWorkbook)))
}
