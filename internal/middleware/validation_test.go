package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "fteapp/internal/errors"
	"fteapp/internal/shared/testutil"
)

type saveRequest struct {
	Table   string   `json:"table" validate:"required,tablename"`
	Columns []string `json:"columns" validate:"required,min=1,unique,dive,column"`
}

func newValidation(t *testing.T) *ValidationMiddleware {
	logger, _ := testutil.NewTestLogger(t)
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidateStruct(t *testing.T) {
	v := newValidation(t)

	tests := []struct {
		name       string
		req        saveRequest
		wantFields []string
	}{
		{
			name: "valid",
			req:  saveRequest{Table: "optimal", Columns: []string{"Section", "Optimal FTE"}},
		},
		{
			name:       "unknown table",
			req:        saveRequest{Table: "payroll", Columns: []string{"Section"}},
			wantFields: []string{"table"},
		},
		{
			name:       "blank column",
			req:        saveRequest{Table: "forecast", Columns: []string{"Section", "  "}},
			wantFields: []string{"columns[1]"},
		},
		{
			name:       "duplicate columns",
			req:        saveRequest{Table: "forecast", Columns: []string{"Section", "Section"}},
			wantFields: []string{"columns"},
		},
		{
			name:       "missing everything",
			req:        saveRequest{},
			wantFields: []string{"table", "columns"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.req)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			var fields []string
			for _, fe := range details.Errors {
				fields = append(fields, fe.Field)
				assert.NotEmpty(t, fe.Message)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	v := newValidation(t)
	var body string
	h := v.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/tables/optimal", strings.NewReader(`{"columns":`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.CodeInvalidRequest, decode(t, rec)["error_code"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/tables/optimal", strings.NewReader(`{"rows":[]}`)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, `{"rows":[]}`, body)
}

func TestContentTypeValidator(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := ContentTypeValidator(apierrors.NewErrorHandler(logger, false), "application/json")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	req := httptest.NewRequest(http.MethodPut, "/api/tables/optimal", strings.NewReader("a,b"))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/api/tables/optimal", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tables/optimal", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
