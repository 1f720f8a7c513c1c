package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fteapp/internal/services"
	"fteapp/pkg/contracts"
)

func newHealthRouter(svc HealthService) http.Handler {
	h := NewHealthHandler(svc, discardLogger())
	r := chi.NewRouter()
	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.ReadinessCheck)
	r.Get("/livez", h.LivenessCheck)
	r.Get("/version", h.Version)
	return r
}

func TestHealthHandler(t *testing.T) {
	now := time.Now().UTC()
	svc := new(MockHealthService)
	svc.On("HealthCheck", mock.Anything).Return(services.HealthStatus{Status: "ok", Timestamp: now})
	svc.On("LivenessCheck", mock.Anything).Return(services.HealthStatus{Status: "alive", Timestamp: now})
	svc.On("Version").Return(contracts.VersionInfo{Version: "1.2.3"})
	router := newHealthRouter(svc)

	tests := []struct {
		path  string
		key   string
		value string
	}{
		{"/healthz", "status", "ok"},
		{"/livez", "status", "alive"},
		{"/version", "version", "1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := doRequest(router, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.value, decodeBody(t, rec)[tt.key])
		})
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   int
	}{
		{"ready", "ready", http.StatusOK},
		{"not ready", "not_ready", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockHealthService)
			svc.On("ReadinessCheck", mock.Anything).Return(services.HealthStatus{
				Status: tt.status,
				Services: map[string]services.ServiceHealth{
					"data": {Status: tt.status},
				},
			})

			rec := doRequest(newHealthRouter(svc), http.MethodGet, "/readyz", "")
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.status, decodeBody(t, rec)["status"])
		})
	}
}
