package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "fteapp/internal/errors"
	"fteapp/internal/files"
	"fteapp/internal/services"
	"fteapp/pkg/contracts/domain"
)

func newAPIRouter(svc DashboardService) http.Handler {
	r := chi.NewRouter()
	r.Mount("/api", NewAPIHandler(svc, discardLogger(), newErrorHandler()).Routes())
	return r
}

func doRequest(h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestAPIHandler_GetTable(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("LoadTable", mock.Anything, domain.TableOptimal).Return(optimalView(), nil)
	router := newAPIRouter(svc)

	rec := doRequest(router, http.MethodGet, "/api/tables/optimal", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `"abc123"`, rec.Header().Get("ETag"))

	body := decodeBody(t, rec)
	assert.Equal(t, "optimal", body["name"])
	assert.Equal(t, "abc123", body["version"])
	assert.Equal(t, []interface{}{"Section", "Optimal FTE"}, body["columns"])
	assert.Equal(t, []interface{}{
		[]interface{}{"Chest", 3.0},
		[]interface{}{"Neuro", nil},
	}, body["rows"])

	svc.AssertExpectations(t)
}

func TestAPIHandler_GetTableNotModified(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("LoadTable", mock.Anything, domain.TableOptimal).Return(optimalView(), nil)
	router := newAPIRouter(svc)

	tests := []struct {
		name        string
		ifNoneMatch string
		want        int
	}{
		{"matching tag", `"abc123"`, http.StatusNotModified},
		{"weak tag", `W/"abc123"`, http.StatusNotModified},
		{"list", `"old", "abc123"`, http.StatusNotModified},
		{"stale tag", `"old"`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodGet, "/api/tables/optimal", "", "If-None-Match", tt.ifNoneMatch)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, `"abc123"`, rec.Header().Get("ETag"))
			if tt.want == http.StatusNotModified {
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}

func TestAPIHandler_LoadErrorIsReported(t *testing.T) {
	view := services.TableView{
		Name:      domain.TableForecast,
		Columns:   domain.ForecastSchema.Columns,
		Rows:      [][]domain.Cell{},
		LoadError: "Failed to load Sheet1 from fte_forecast.xlsx: zip: not a valid zip file",
	}
	svc := new(MockDashboardService)
	svc.On("LoadTable", mock.Anything, domain.TableForecast).Return(view, nil)

	rec := doRequest(newAPIRouter(svc), http.MethodGet, "/api/tables/forecast", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, view.LoadError, decodeBody(t, rec)["load_error"])
}

func TestAPIHandler_UnknownTable(t *testing.T) {
	svc := new(MockDashboardService)
	router := newAPIRouter(svc)

	for _, method := range []string{http.MethodGet, http.MethodPut} {
		t.Run(method, func(t *testing.T) {
			rec := doRequest(router, method, "/api/tables/payroll", `{"columns":["a"],"rows":[]}`)
			require.Equal(t, http.StatusNotFound, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, apierrors.CodeTableNotFound, body["error_code"])
			assert.Equal(t, apierrors.TypeTableNotFound, body["type"])
		})
	}
	svc.AssertNotCalled(t, "LoadTable", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "SaveTable", mock.Anything, mock.Anything, mock.Anything)
}

func TestAPIHandler_SaveTable(t *testing.T) {
	saved := services.SaveResult{
		Name:    domain.TableOptimal,
		Version: "def456",
		Rows:    1,
		Message: "Optimal FTE values saved for all users.",
		SavedAt: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
	}
	want := domain.Table{
		Columns: []string{"Section", "Optimal FTE"},
		Rows:    [][]domain.Cell{{domain.Text("Chest"), domain.Number(4.5)}},
	}

	svc := new(MockDashboardService)
	svc.On("SaveTable", mock.Anything, domain.TableOptimal, mock.MatchedBy(func(tbl domain.Table) bool {
		return tbl.Equal(want)
	})).Return(saved, nil)

	rec := doRequest(newAPIRouter(svc), http.MethodPut, "/api/tables/optimal",
		`{"columns":["Section","Optimal FTE"],"rows":[["Chest",4.5]]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `"def456"`, rec.Header().Get("ETag"))
	body := decodeBody(t, rec)
	assert.Equal(t, saved.Message, body["message"])
	assert.Equal(t, 1.0, body["rows"])
	svc.AssertExpectations(t)
}

func TestAPIHandler_SaveTableDates(t *testing.T) {
	day := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	svc := new(MockDashboardService)
	svc.On("SaveTable", mock.Anything, domain.TableForecast, mock.MatchedBy(func(tbl domain.Table) bool {
		return tbl.Cell(0, domain.ColEffectiveDate).Equal(domain.Date(day)) &&
			tbl.Cell(0, domain.ColSection).IsMissing()
	})).Return(services.SaveResult{Name: domain.TableForecast}, nil)

	body := `{"columns":["Radiologist","Type","Effective Date","FTE Change","Section"],
		"rows":[["Dr A","Hire",{"date":"2025-08-01T00:00:00Z"},0.5,null]]}`
	rec := doRequest(newAPIRouter(svc), http.MethodPut, "/api/tables/forecast", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestAPIHandler_SaveTableErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "derived table",
			path:       "/api/tables/actual",
			body:       `{"columns":["Section"],"rows":[]}`,
			wantStatus: http.StatusForbidden,
			wantCode:   apierrors.CodeTableReadOnly,
		},
		{
			name:       "invalid json",
			path:       "/api/tables/optimal",
			body:       `{"columns":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeInvalidRequest,
		},
		{
			name:       "no columns",
			path:       "/api/tables/optimal",
			body:       `{"columns":[],"rows":[]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeValidationFailed,
		},
		{
			name:       "duplicate columns",
			path:       "/api/tables/optimal",
			body:       `{"columns":["Section","Section"],"rows":[]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeValidationFailed,
		},
		{
			name:       "blank column",
			path:       "/api/tables/optimal",
			body:       `{"columns":["Section"," "],"rows":[]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeValidationFailed,
		},
		{
			name:       "body names another table",
			path:       "/api/tables/optimal",
			body:       `{"table":"forecast","columns":["Section"],"rows":[]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeValidationFailed,
		},
		{
			name:       "unsupported cell",
			path:       "/api/tables/optimal",
			body:       `{"columns":["Section"],"rows":[[{"x":1}]]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeInvalidRequest,
		},
		{
			name:       "ragged rows",
			path:       "/api/tables/optimal",
			body:       `{"columns":["Section","Optimal FTE"],"rows":[["Chest"]]}`,
			serviceErr: fmt.Errorf("%w: row 0 has 1 cells, want 2", services.ErrInvalidTable),
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeInvalidRequest,
		},
		{
			name:       "write failure",
			path:       "/api/tables/optimal",
			body:       `{"columns":["Section"],"rows":[["Chest"]]}`,
			serviceErr: fmt.Errorf("%w: %w", services.ErrSaveFailed, errors.New("permission denied")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apierrors.CodeSaveFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			if tt.serviceErr != nil {
				svc.On("SaveTable", mock.Anything, mock.Anything, mock.Anything).
					Return(services.SaveResult{}, tt.serviceErr)
			}

			rec := doRequest(newAPIRouter(svc), http.MethodPut, tt.path, tt.body)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeBody(t, rec)["error_code"])
			if tt.serviceErr == nil {
				svc.AssertNotCalled(t, "SaveTable", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAPIHandler_SaveTableRequiresJSON(t *testing.T) {
	svc := new(MockDashboardService)
	rec := doRequest(newAPIRouter(svc), http.MethodPut, "/api/tables/optimal",
		"columns=Section", "Content-Type", "application/x-www-form-urlencoded")

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	svc.AssertNotCalled(t, "SaveTable", mock.Anything, mock.Anything, mock.Anything)
}

func TestAPIHandler_ValidationDetailsUseJSONNames(t *testing.T) {
	svc := new(MockDashboardService)
	rec := doRequest(newAPIRouter(svc), http.MethodPut, "/api/tables/forecast", `{"rows":[]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"columns"`)
}

func TestAPIHandler_ExportCSV(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("LoadTable", mock.Anything, domain.TableOptimal).Return(optimalView(), nil)

	rec := doRequest(newAPIRouter(svc), http.MethodGet, "/api/tables/optimal/export.csv", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="optimal.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Section,Optimal FTE\nChest,3\nNeuro,\n", rec.Body.String())
}

func TestAPIHandler_Overview(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Overview", mock.Anything).Return(services.OverviewView{
		Series:     domain.SeriesSet{NoData: true},
		Warnings:   []string{"Upload 'FTE_analysis_AG.xlsx' to the /data folder."},
		LoadErrors: []string{},
	}, nil)

	rec := doRequest(newAPIRouter(svc), http.MethodGet, "/api/overview", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []interface{}{"Upload 'FTE_analysis_AG.xlsx' to the /data folder."}, body["warnings"])
	assert.Equal(t, true, body["series"].(map[string]interface{})["no_data"])
}

func TestAPIHandler_Cache(t *testing.T) {
	stats := files.CacheStats{Entries: 0, Clears: 1, TTLSeconds: 3600}

	t.Run("clear without body", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("ClearCache", mock.Anything, "").Return(stats)

		rec := doRequest(newAPIRouter(svc), http.MethodPost, "/api/cache/clear", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1.0, decodeBody(t, rec)["clears"])
		svc.AssertExpectations(t)
	})

	t.Run("clear with reason", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("ClearCache", mock.Anything, "upload").Return(stats)

		rec := doRequest(newAPIRouter(svc), http.MethodPost, "/api/cache/clear", `{"reason":"upload"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("stats", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("CacheStats").Return(files.CacheStats{Entries: 2, HitCount: 5, MissCount: 2})

		rec := doRequest(newAPIRouter(svc), http.MethodGet, "/api/cache/stats", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, 2.0, body["entries"])
		assert.Equal(t, 5.0, body["hit_count"])
	})
}

func TestEtagMatches(t *testing.T) {
	assert.True(t, etagMatches("*", "v1"))
	assert.True(t, etagMatches(`"v1"`, "v1"))
	assert.False(t, etagMatches("", "v1"))
	assert.False(t, etagMatches(`"v1"`, ""))
	assert.False(t, etagMatches(`"v2"`, "v1"))
}
