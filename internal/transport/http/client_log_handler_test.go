package http

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	apierrors "fteapp/internal/errors"
	"fteapp/internal/shared/testutil"
)

func TestClientLogHandler(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewClientLogHandler(logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Post("/api/logs", h.Handle)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLevel  slog.Level
		wantMsg    string
	}{
		{
			name:       "warn entry",
			body:       `{"level":"warn","message":"websocket error","source":"optimal"}`,
			wantStatus: http.StatusAccepted,
			wantLevel:  slog.LevelWarn,
			wantMsg:    "websocket error",
		},
		{
			name:       "level defaults to info",
			body:       `{"message":"page loaded"}`,
			wantStatus: http.StatusAccepted,
			wantLevel:  slog.LevelInfo,
			wantMsg:    "page loaded",
		},
		{
			name:       "unknown level",
			body:       `{"level":"fatal","message":"boom"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing message",
			body:       `{"level":"info"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not json",
			body:       `level=info`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, http.MethodPost, "/api/logs", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantMsg != "" {
				testutil.AssertLogContains(t, logs, tt.wantLevel, tt.wantMsg)
			}
		})
	}
	assert.False(t, logs.ContainsMessage("boom"))
}
