package http

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fteapp/internal/dataprocessing"
	apierrors "fteapp/internal/errors"
	"fteapp/internal/services"
	"fteapp/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page titles
const (
	OverviewTitle = "Actual vs Optimal FTE Overview"
	OptimalTitle  = "Enter/Edit Optimal FTE by Section"
	ForecastTitle = "FTE Forecast Tracker"
)

// Grid form actions
const (
	actionAddRow    = "add_row"
	actionRemoveRow = "remove_row"
	actionSave      = "save"
)

// maxGridRows bounds the rows count posted by a grid form
const maxGridRows = 10000

type navItem struct {
	Path  string
	Label string
}

var navigation = []navItem{
	{Path: "/overview", Label: "Overview"},
	{Path: "/optimal", Label: domain.TableOptimal.Title()},
	{Path: "/forecast", Label: domain.TableForecast.Title()},
}

type pageData struct {
	AppName  string
	Title    string
	Page     string
	Active   string
	Nav      []navItem
	Errors   []string
	Warnings []string
	Success  string
	Info     string
	Chart    *Chart
	Grid     *gridView
}

type gridCell struct {
	Value string
	Hint  string
}

type gridView struct {
	Path      string
	File      string
	Version   string
	SaveLabel string
	Summary   string
	Columns   []string
	Rows      [][]gridCell
}

func newGridView(kind domain.TableKind, file, version string, tbl domain.Table) *gridView {
	g := &gridView{
		Path:      "/" + string(kind),
		File:      file,
		Version:   version,
		SaveLabel: saveLabel(kind),
		Columns:   tbl.Columns,
		Rows:      make([][]gridCell, 0, len(tbl.Rows)),
	}
	if kind == domain.TableForecast {
		g.Summary = dataprocessing.SummarizeForecast(tbl).String()
	}
	for _, row := range tbl.Rows {
		cells := make([]gridCell, len(row))
		for j, c := range row {
			cells[j] = gridCell{Value: c.String(), Hint: c.Kind.String()}
		}
		g.Rows = append(g.Rows, cells)
	}
	return g
}

func saveLabel(kind domain.TableKind) string {
	if kind == domain.TableOptimal {
		return "Save Optimal FTE"
	}
	return "Save Forecast Data"
}

func pageTitle(kind domain.TableKind) string {
	if kind == domain.TableOptimal {
		return OptimalTitle
	}
	return ForecastTitle
}

// PagesHandler serves the HTML views
type PagesHandler struct {
	service      DashboardService
	appName      string
	overview     *template.Template
	table        *template.Template
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPagesHandler parses the embedded templates
func NewPagesHandler(service DashboardService, appName string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*PagesHandler, error) {
	overview, err := template.ParseFS(templateFS, "templates/layout.html", "templates/overview.html")
	if err != nil {
		return nil, fmt.Errorf("parse overview template: %w", err)
	}
	table, err := template.ParseFS(templateFS, "templates/layout.html", "templates/table.html")
	if err != nil {
		return nil, fmt.Errorf("parse table template: %w", err)
	}

	return &PagesHandler{
		service:      service,
		appName:      appName,
		overview:     overview,
		table:        table,
		logger:       logger.With(slog.String("handler", "pages")),
		errorHandler: errorHandler,
	}, nil
}

// Routes registers the page routes on r
func (h *PagesHandler) Routes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/overview", http.StatusFound)
	})
	r.Get("/overview", h.Overview)
	r.Get("/optimal", h.tableView(domain.TableOptimal))
	r.Post("/optimal", h.tableAction(domain.TableOptimal))
	r.Get("/forecast", h.tableView(domain.TableForecast))
	r.Post("/forecast", h.tableAction(domain.TableForecast))
	r.Post("/refresh", h.Refresh)
}

func (h *PagesHandler) newPage(title, page, active string) pageData {
	return pageData{
		AppName:  h.appName,
		Title:    title,
		Page:     page,
		Active:   active,
		Nav:      navigation,
		Errors:   []string{},
		Warnings: []string{},
	}
}

// Overview handles GET /overview
func (h *PagesHandler) Overview(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Overview(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data := h.newPage(OverviewTitle, "overview", "/overview")
	data.Errors = append(data.Errors, view.LoadErrors...)
	data.Warnings = append(data.Warnings, view.Warnings...)
	if r.URL.Query().Get("refreshed") == "1" {
		data.Info = "Data reloaded from disk."
	}
	chart := NewChart(view.Series)
	data.Chart = &chart

	h.render(w, r, h.overview, http.StatusOK, data)
}

func (h *PagesHandler) tableView(kind domain.TableKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.service.LoadTable(r.Context(), kind)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		data := h.newPage(pageTitle(kind), string(kind), "/"+string(kind))
		if view.LoadError != "" {
			data.Errors = append(data.Errors, view.LoadError)
		}
		if r.URL.Query().Get("refreshed") == "1" {
			data.Info = "Data reloaded from disk."
		}
		data.Grid = newGridView(kind, view.File, view.Version, view.Table())

		h.render(w, r, h.table, http.StatusOK, data)
	}
}

// tableAction handles a grid form post. Adding and removing rows only
// re-render the posted state; save writes it to the workbook.
func (h *PagesHandler) tableAction(kind domain.TableKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tbl, err := parseGridForm(r)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}

		data := h.newPage(pageTitle(kind), string(kind), "/"+string(kind))
		version := ""
		status := http.StatusOK

		switch {
		case r.PostForm.Get(actionRemoveRow) != "":
			i, err := strconv.Atoi(r.PostForm.Get(actionRemoveRow))
			if err != nil {
				h.errorHandler.HandleError(w, r, apierrors.ErrValidation(actionRemoveRow, "must be a row index"))
				return
			}
			tbl.RemoveRow(i)

		case r.PostForm.Get("action") == actionAddRow:
			tbl.AppendRow()

		case r.PostForm.Get("action") == actionSave:
			result, err := h.service.SaveTable(r.Context(), kind, tbl)
			if err != nil {
				status = saveErrorStatus(err)
				data.Errors = append(data.Errors, fmt.Sprintf("Failed to save %s: %v", kind.Title(), err))
				break
			}
			data.Success = result.Message
			version = result.Version

		default:
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("action", "unknown grid action"))
			return
		}

		data.Grid = newGridView(kind, "", version, tbl)
		h.render(w, r, h.table, status, data)
	}
}

func saveErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidTable):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTableReadOnly):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Refresh handles POST /refresh: clears the cache and returns to the page
// the button was pressed on
func (h *PagesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCache(r.Context(), "refresh")

	next := "/overview"
	if err := r.ParseForm(); err == nil {
		for _, item := range navigation {
			if item.Path == r.PostForm.Get("next") {
				next = item.Path
			}
		}
	}
	http.Redirect(w, r, next+"?refreshed=1", http.StatusSeeOther)
}

func (h *PagesHandler) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data pageData) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.ErrorContext(r.Context(), "Template execution failed",
			slog.String("page", data.Page),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.DebugContext(r.Context(), "Page write failed", slog.String("error", err.Error()))
	}
}

// parseGridForm rebuilds the posted grid. Inputs are named cell_<row>_<col>
// with the loaded cell kind in kind_<row>_<col>.
func parseGridForm(r *http.Request) (domain.Table, error) {
	if err := r.ParseForm(); err != nil {
		return domain.Table{}, err
	}

	columns := r.PostForm["column"]
	if len(columns) == 0 {
		return domain.Table{}, errors.New("grid has no columns")
	}
	rows, err := strconv.Atoi(r.PostForm.Get("rows"))
	if err != nil || rows < 0 || rows > maxGridRows {
		return domain.Table{}, fmt.Errorf("invalid rows count %q", r.PostForm.Get("rows"))
	}

	values := make([][]string, rows)
	hints := make([][]string, rows)
	for i := 0; i < rows; i++ {
		values[i] = make([]string, len(columns))
		hints[i] = make([]string, len(columns))
		for j := range columns {
			values[i][j] = r.PostForm.Get(fmt.Sprintf("cell_%d_%d", i, j))
			hints[i][j] = r.PostForm.Get(fmt.Sprintf("kind_%d_%d", i, j))
		}
	}
	return services.GridTable(columns, values, hints), nil
}
