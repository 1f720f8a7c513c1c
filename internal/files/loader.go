package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"

	"fteapp/pkg/contracts/domain"
)

// TableReader decodes one sheet of a workbook
type TableReader interface {
	Read(path, sheet string) (domain.Table, error)
}

// Observer receives load telemetry. BusinessMetrics satisfies it.
type Observer interface {
	RecordCacheLookup(ctx context.Context, hit bool)
	RecordTableLoad(ctx context.Context, table, result string, duration time.Duration)
}

// LoadError is a user-visible decode failure. The table falls back to its
// empty schema when one occurs.
type LoadError struct {
	Path  string
	Sheet string
	Err   error
}

func (e *LoadError) Error() string {
	name := filepath.Base(e.Path)
	if e.Sheet == "" {
		return fmt.Sprintf("Failed to load %s: %v", name, e.Err)
	}
	return fmt.Sprintf("Failed to load %s from %s: %v", e.Sheet, name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadResult is the outcome of Loader.Load. Table is never nil-columned.
type LoadResult struct {
	Table   domain.Table
	Path    string
	Sheet   string
	Missing bool
	Cached  bool
	Err     error
}

// Loader reads workbooks through a read-through cache
type Loader struct {
	reader   TableReader
	cache    Cache
	group    singleflight.Group
	logger   *slog.Logger
	observer Observer
}

// LoaderOption customizes a Loader
type LoaderOption func(*Loader)

// WithObserver attaches a telemetry observer
func WithObserver(o Observer) LoaderOption {
	return func(l *Loader) { l.observer = o }
}

// NewLoader creates a loader. A nil cache disables caching.
func NewLoader(reader TableReader, cache Cache, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if cache == nil {
		cache = &NopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		reader: reader,
		cache:  cache,
		logger: logger.With(slog.String("component", "loader")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Cache exposes the underlying store so callers can clear it
func (l *Loader) Cache() Cache { return l.cache }

// Load returns the table stored at path. A missing file yields the empty
// schema table without error. A decode failure yields the empty schema
// table with Err set; such failures are not cached.
func (l *Loader) Load(ctx context.Context, path string, schema domain.Schema, sheet string) LoadResult {
	key := CacheKey{Path: path, Sheet: sheet}

	if entry, ok := l.cache.Get(key); ok {
		l.recordLookup(ctx, true)
		l.logger.DebugContext(ctx, "Table served from cache",
			slog.String("key", key.String()),
			slog.Int("hit_count", entry.HitCount))
		return LoadResult{
			Table:   entry.Table.Clone(),
			Path:    path,
			Sheet:   sheet,
			Missing: entry.Missing,
			Cached:  true,
		}
	}
	l.recordLookup(ctx, false)

	v, _, _ := l.group.Do(key.String(), func() (interface{}, error) {
		return l.read(ctx, key, schema), nil
	})

	res := v.(LoadResult)
	res.Table = res.Table.Clone()
	return res
}

func (l *Loader) read(ctx context.Context, key CacheKey, schema domain.Schema) LoadResult {
	start := time.Now()
	res := LoadResult{Path: key.Path, Sheet: key.Sheet}

	if _, err := os.Stat(key.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Table = domain.EmptyTable(schema)
			res.Missing = true
			l.cache.Set(key, CacheEntry{Table: res.Table.Clone(), Missing: true})
			l.recordLoad(ctx, schema.Name, "missing", start)
			l.logger.InfoContext(ctx, "Workbook not found, using empty table",
				slog.String("path", key.Path),
				slog.Any("columns", schema.Columns))
			return res
		}
		return l.fail(ctx, res, schema, err, start)
	}

	tbl, err := l.reader.Read(key.Path, key.Sheet)
	if err != nil {
		return l.fail(ctx, res, schema, err, start)
	}
	if len(tbl.Columns) == 0 {
		// a sheet without a header row behaves like a fresh file
		tbl = domain.EmptyTable(schema)
	}

	res.Table = tbl
	l.cache.Set(key, CacheEntry{Table: tbl.Clone()})
	l.recordLoad(ctx, schema.Name, "success", start)
	l.logger.InfoContext(ctx, "Workbook loaded",
		slog.String("path", key.Path),
		slog.String("sheet", key.Sheet),
		slog.Int("rows", tbl.Len()),
		slog.Int("columns", len(tbl.Columns)),
		slog.Duration("duration", time.Since(start)))
	return res
}

func (l *Loader) fail(ctx context.Context, res LoadResult, schema domain.Schema, err error, start time.Time) LoadResult {
	loadErr := &LoadError{Path: res.Path, Sheet: res.Sheet, Err: err}
	res.Table = domain.EmptyTable(schema)
	res.Err = loadErr
	l.recordLoad(ctx, schema.Name, "error", start)
	l.logger.WarnContext(ctx, "Workbook could not be decoded",
		slog.String("path", res.Path),
		slog.String("sheet", res.Sheet),
		slog.String("error", err.Error()))
	return res
}

func (l *Loader) recordLookup(ctx context.Context, hit bool) {
	if l.observer != nil {
		l.observer.RecordCacheLookup(ctx, hit)
	}
}

func (l *Loader) recordLoad(ctx context.Context, table, result string, start time.Time) {
	if l.observer != nil {
		l.observer.RecordTableLoad(ctx, table, result, time.Since(start))
	}
}
