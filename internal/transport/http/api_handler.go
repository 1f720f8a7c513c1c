package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "fteapp/internal/errors"
	"fteapp/internal/exporter"
	"fteapp/internal/middleware"
	"fteapp/internal/services"
	"fteapp/pkg/contracts/domain"
)

type tableKindKey struct{}

// SaveTableRequest is the body of PUT /api/tables/{name}
type SaveTableRequest struct {
	Table   string          `json:"table,omitempty" validate:"omitempty,tablename"`
	Columns []string        `json:"columns" validate:"required,min=1,unique,dive,column"`
	Rows    [][]domain.Cell `json:"rows"`
}

// Bind implements render.Binder
func (req *SaveTableRequest) Bind(r *http.Request) error {
	if req.Rows == nil {
		req.Rows = [][]domain.Cell{}
	}
	return nil
}

// ClearCacheRequest is the optional body of POST /api/cache/clear
type ClearCacheRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=64"`
}

// APIHandler serves the JSON API under /api
type APIHandler struct {
	service      DashboardService
	validation   *middleware.ValidationMiddleware
	csv          *exporter.CSVWriter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(service DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *APIHandler {
	return &APIHandler{
		service:      service,
		validation:   middleware.NewValidationMiddleware(logger, errorHandler),
		csv:          exporter.NewCSVWriter(logger),
		logger:       logger.With(slog.String("handler", "api")),
		errorHandler: errorHandler,
	}
}

// Routes returns the API routes
func (h *APIHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/overview", h.GetOverview)

	r.Route("/tables/{name}", func(r chi.Router) {
		r.Use(h.TableCtx)
		r.Get("/", h.GetTable)
		r.With(
			middleware.ContentTypeValidator(h.errorHandler, "application/json"),
			h.validation.ValidateRequest,
		).Put("/", h.SaveTable)
		r.Get("/export.csv", h.ExportCSV)
	})

	r.Get("/cache/stats", h.GetCacheStats)
	r.With(h.validation.ValidateRequest).Post("/cache/clear", h.ClearCache)

	return r
}

// TableCtx resolves the {name} URL parameter to a table kind
func (h *APIHandler) TableCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		kind, err := domain.ParseTableKind(name)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.TableNotFound(name))
			return
		}
		ctx := context.WithValue(r.Context(), tableKindKey{}, kind)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tableKindFrom(ctx context.Context) domain.TableKind {
	kind, _ := ctx.Value(tableKindKey{}).(domain.TableKind)
	return kind
}

// GetOverview handles GET /api/overview
func (h *APIHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Overview(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}
	render.JSON(w, r, view)
}

// GetTable handles GET /api/tables/{name}. The version is sent as a strong
// ETag and If-None-Match is honored.
func (h *APIHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	kind := tableKindFrom(r.Context())

	view, err := h.service.LoadTable(r.Context(), kind)
	if err != nil {
		h.handleServiceError(w, r, string(kind), err)
		return
	}

	etag := quoteETag(view.Version)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), view.Version) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	render.JSON(w, r, view)
}

// SaveTable handles PUT /api/tables/{name}
func (h *APIHandler) SaveTable(w http.ResponseWriter, r *http.Request) {
	kind := tableKindFrom(r.Context())

	if !kind.Editable() {
		h.errorHandler.HandleError(w, r, apierrors.TableReadOnly(string(kind)))
		return
	}

	req := &SaveTableRequest{}
	if err := render.Bind(r, req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if req.Table != "" && req.Table != string(kind) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("table",
			fmt.Sprintf("body names table %q but the URL names %q", req.Table, kind)))
		return
	}

	tbl := domain.Table{Columns: req.Columns, Rows: req.Rows}
	result, err := h.service.SaveTable(r.Context(), kind, tbl)
	if err != nil {
		h.handleServiceError(w, r, string(kind), err)
		return
	}

	w.Header().Set("ETag", quoteETag(result.Version))
	render.JSON(w, r, result)
}

// ExportCSV handles GET /api/tables/{name}/export.csv
func (h *APIHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	kind := tableKindFrom(r.Context())

	view, err := h.service.LoadTable(r.Context(), kind)
	if err != nil {
		h.handleServiceError(w, r, string(kind), err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(kind)+".csv"))
	w.Header().Set("ETag", quoteETag(view.Version))

	opts := exporter.WriteOptions{BOMPrefix: r.URL.Query().Get("bom") == "1"}
	if err := h.csv.WriteTable(w, view.Table(), opts); err != nil {
		// headers are already sent
		h.logger.ErrorContext(r.Context(), "CSV export failed",
			slog.String("table", string(kind)),
			slog.String("error", err.Error()))
	}
}

// GetCacheStats handles GET /api/cache/stats
func (h *APIHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.CacheStats())
}

// ClearCache handles POST /api/cache/clear. The body is optional.
func (h *APIHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	req := &ClearCacheRequest{}
	if err := render.DecodeJSON(r.Body, req); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, h.service.ClearCache(r.Context(), req.Reason))
}

func (h *APIHandler) handleServiceError(w http.ResponseWriter, r *http.Request, table string, err error) {
	switch {
	case errors.Is(err, services.ErrTableNotFound):
		err = apierrors.TableNotFound(table)
	case errors.Is(err, services.ErrTableReadOnly):
		err = apierrors.TableReadOnly(table)
	case errors.Is(err, services.ErrInvalidTable):
		err = apierrors.InvalidRequestWithError(err)
	case errors.Is(err, services.ErrSaveFailed):
		err = apierrors.SaveFailed(table, err)
	}
	h.errorHandler.HandleError(w, r, err)
}

func quoteETag(version string) string {
	return `"` + version + `"`
}

// etagMatches reports whether an If-None-Match header names version.
// Weak validators compare equal to strong ones for GET.
func etagMatches(header, version string) bool {
	if header == "" || version == "" {
		return false
	}
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" {
			return true
		}
		tag = strings.TrimPrefix(tag, "W/")
		if strings.Trim(tag, `"`) == version {
			return true
		}
	}
	return false
}
