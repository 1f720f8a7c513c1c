package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"fteapp/internal/dataprocessing"
	"fteapp/internal/files"
	"fteapp/pkg/contracts/domain"
)

// Change events published after writes
const (
	EventTableSaved   = "table_saved"
	EventCacheCleared = "cache_cleared"
)

// TableLoader reads a table through the cache
type TableLoader interface {
	Load(ctx context.Context, path string, schema domain.Schema, sheet string) files.LoadResult
	Cache() files.Cache
}

// TableWriter overwrites a workbook with one sheet holding tbl
type TableWriter interface {
	Write(path string, tbl domain.Table, sheet string) error
}

// WorkbookLocator maps a table to its workbook and sheet
type WorkbookLocator interface {
	Workbook(kind domain.TableKind) (path, sheet string)
}

// Notifier pushes change events to connected browsers
type Notifier interface {
	Broadcast(ctx context.Context, eventType string, data interface{})
}

// SaveObserver receives save and cache telemetry. BusinessMetrics satisfies it.
type SaveObserver interface {
	RecordTableSave(ctx context.Context, table string, err error)
	RecordCacheClear(ctx context.Context, reason string)
}

// TableView is a loaded table with its load metadata
type TableView struct {
	Name      domain.TableKind `json:"name"`
	Title     string           `json:"title"`
	File      string           `json:"file"`
	Sheet     string           `json:"sheet,omitempty"`
	Columns   []string         `json:"columns"`
	Rows      [][]domain.Cell  `json:"rows"`
	Version   string           `json:"version"`
	Editable  bool             `json:"editable"`
	Missing   bool             `json:"missing"`
	Cached    bool             `json:"cached"`
	LoadError string           `json:"load_error,omitempty"`
}

// Table returns the view's columns and rows as a domain table
func (v TableView) Table() domain.Table {
	return domain.Table{Columns: v.Columns, Rows: v.Rows}
}

// OverviewView is everything the overview page shows
type OverviewView struct {
	Series     domain.SeriesSet `json:"series"`
	Warnings   []string         `json:"warnings"`
	LoadErrors []string         `json:"load_errors"`
	Sections   int              `json:"sections"`
}

// SaveResult describes a completed save
type SaveResult struct {
	Name    domain.TableKind `json:"name"`
	Version string           `json:"version"`
	Rows    int              `json:"rows"`
	Message string           `json:"message"`
	SavedAt time.Time        `json:"saved_at"`
}

// DashboardService implements the overview, load and save operations
type DashboardService struct {
	loader           TableLoader
	writer           TableWriter
	locator          WorkbookLocator
	notifier         Notifier
	observer         SaveObserver
	invalidateOnSave bool
	now              func() time.Time
	logger           *slog.Logger
}

// DashboardOption customizes a DashboardService
type DashboardOption func(*DashboardService)

// WithNotifier publishes table_saved and cache_cleared events
func WithNotifier(n Notifier) DashboardOption {
	return func(s *DashboardService) { s.notifier = n }
}

// WithSaveObserver records save and cache-clear telemetry
func WithSaveObserver(o SaveObserver) DashboardOption {
	return func(s *DashboardService) { s.observer = o }
}

// WithInvalidateOnSave clears the whole cache after every successful save
func WithInvalidateOnSave(enabled bool) DashboardOption {
	return func(s *DashboardService) { s.invalidateOnSave = enabled }
}

// NewDashboardService creates the service
func NewDashboardService(loader TableLoader, writer TableWriter, locator WorkbookLocator, logger *slog.Logger, opts ...DashboardOption) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DashboardService{
		loader:  loader,
		writer:  writer,
		locator: locator,
		now:     time.Now,
		logger:  logger.With(slog.String("service", "dashboard")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SuccessMessage is the confirmation shown after saving kind
func SuccessMessage(kind domain.TableKind) string {
	switch kind {
	case domain.TableOptimal:
		return "Optimal FTE values saved for all users."
	case domain.TableForecast:
		return "Forecast data saved for all users."
	default:
		return ""
	}
}

// LoadTable loads one of the three tables. The actual table is aggregated
// from the cumulative summary sheet.
func (s *DashboardService) LoadTable(ctx context.Context, kind domain.TableKind) (TableView, error) {
	if _, err := domain.ParseTableKind(string(kind)); err != nil {
		return TableView{}, fmt.Errorf("%w: %s", ErrTableNotFound, kind)
	}

	path, sheet := s.locator.Workbook(kind)
	schema := kind.Schema()
	if kind == domain.TableActual {
		schema = domain.ActualSourceSchema
	}

	res := s.loader.Load(ctx, path, schema, sheet)
	tbl := res.Table
	if kind == domain.TableActual {
		tbl = dataprocessing.AggregateActual(tbl)
	}

	view := TableView{
		Name:     kind,
		Title:    kind.Title(),
		File:     filepath.Base(path),
		Sheet:    sheet,
		Columns:  tbl.Columns,
		Rows:     tbl.Rows,
		Version:  dataprocessing.Fingerprint(tbl),
		Editable: kind.Editable(),
		Missing:  res.Missing,
		Cached:   res.Cached,
	}
	if res.Err != nil {
		view.LoadError = res.Err.Error()
		s.logger.WarnContext(ctx, "Table loaded with error",
			slog.String("table", string(kind)),
			slog.String("error", view.LoadError))
	}
	return view, nil
}

// Overview builds the chart series from the actual and optimal tables.
// Load errors never fail the overview; they are returned for display.
func (s *DashboardService) Overview(ctx context.Context) (OverviewView, error) {
	actual, err := s.LoadTable(ctx, domain.TableActual)
	if err != nil {
		return OverviewView{}, err
	}
	optimal, err := s.LoadTable(ctx, domain.TableOptimal)
	if err != nil {
		return OverviewView{}, err
	}

	view := OverviewView{
		Series:     dataprocessing.BuildChartSeries(actual.Table(), optimal.Table()),
		Warnings:   []string{},
		LoadErrors: []string{},
	}
	view.Sections = len(view.Series.Sections)

	for _, t := range []TableView{actual, optimal} {
		if t.LoadError != "" {
			view.LoadErrors = append(view.LoadErrors, t.LoadError)
		}
	}
	if view.Series.NoData {
		view.Warnings = append(view.Warnings, dataprocessing.UploadWarning)
	}

	s.logger.DebugContext(ctx, "Overview built",
		slog.Int("sections", view.Sections),
		slog.Bool("no_data", view.Series.NoData),
		slog.Int("load_errors", len(view.LoadErrors)))
	return view, nil
}

// SaveTable overwrites the workbook behind an editable table. Values are
// stored as given; only the table's shape is checked.
func (s *DashboardService) SaveTable(ctx context.Context, kind domain.TableKind, tbl domain.Table) (SaveResult, error) {
	if _, err := domain.ParseTableKind(string(kind)); err != nil {
		return SaveResult{}, fmt.Errorf("%w: %s", ErrTableNotFound, kind)
	}
	if !kind.Editable() {
		return SaveResult{}, fmt.Errorf("%w: %s", ErrTableReadOnly, kind)
	}
	if err := tbl.Validate(); err != nil {
		return SaveResult{}, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	tbl = tbl.Normalized()

	path, _ := s.locator.Workbook(kind)
	start := s.now()

	if err := s.writer.Write(path, tbl, ""); err != nil {
		s.recordSave(ctx, kind, err)
		s.logger.ErrorContext(ctx, "Table save failed",
			slog.String("table", string(kind)),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return SaveResult{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	s.recordSave(ctx, kind, nil)

	result := SaveResult{
		Name:    kind,
		Version: dataprocessing.Fingerprint(tbl),
		Rows:    tbl.Len(),
		Message: SuccessMessage(kind),
		SavedAt: start.UTC(),
	}

	s.logger.InfoContext(ctx, "Table saved",
		slog.String("table", string(kind)),
		slog.String("path", path),
		slog.Int("rows", result.Rows),
		slog.String("version", result.Version))

	if s.invalidateOnSave {
		s.clear(ctx, "save")
	}
	s.publish(ctx, EventTableSaved, map[string]interface{}{
		"table":   string(kind),
		"version": result.Version,
		"rows":    result.Rows,
	})

	return result, nil
}

// ClearCache drops every cached table and returns the stats afterwards
func (s *DashboardService) ClearCache(ctx context.Context, reason string) files.CacheStats {
	if reason == "" {
		reason = "manual"
	}
	s.clear(ctx, reason)
	return s.loader.Cache().Stats()
}

// CacheStats returns the loader cache statistics
func (s *DashboardService) CacheStats() files.CacheStats {
	return s.loader.Cache().Stats()
}

func (s *DashboardService) clear(ctx context.Context, reason string) {
	s.loader.Cache().Clear()
	if s.observer != nil {
		s.observer.RecordCacheClear(ctx, reason)
	}
	s.logger.InfoContext(ctx, "Cache cleared", slog.String("reason", reason))
	s.publish(ctx, EventCacheCleared, map[string]interface{}{"reason": reason})
}

func (s *DashboardService) recordSave(ctx context.Context, kind domain.TableKind, err error) {
	if s.observer != nil {
		s.observer.RecordTableSave(ctx, string(kind), err)
	}
}

func (s *DashboardService) publish(ctx context.Context, eventType string, data interface{}) {
	if s.notifier != nil {
		s.notifier.Broadcast(ctx, eventType, data)
	}
}
