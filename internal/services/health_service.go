package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"fteapp/internal/files"
	"fteapp/pkg/contracts"
)

// DataDirectory is the part of files.Manager the health checks use
type DataDirectory interface {
	DataDir() string
	CheckWritable() error
	ListWorkbooks() ([]files.WorkbookInfo, error)
}

// ClientCounter reports connected websocket clients
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	data      DataDirectory
	hub       ClientCounter
	cache     files.Cache
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// NewHealthService creates a health service. hub and cache may be nil.
func NewHealthService(data DataDirectory, hub ClientCounter, cache files.Cache, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		data:      data,
		hub:       hub,
		cache:     cache,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck reports not_ready when the data directory cannot be
// written, since saves would fail
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
		Services: map[string]ServiceHealth{
			"data":      hs.checkData(),
			"workbooks": hs.checkWorkbooks(),
			"cache":     hs.checkCache(),
			"websocket": hs.checkWebSocket(),
		},
	}

	for name, svc := range status.Services {
		if svc.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "Readiness check failed",
				slog.String("check", name),
				slog.String("message", svc.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
	}
}

// Version returns build information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func (hs *HealthService) checkData() ServiceHealth {
	if err := hs.data.CheckWritable(); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Cannot write to data directory %s: %v", hs.data.DataDir(), err),
		}
	}
	return ServiceHealth{Status: "ready", Message: "Data directory is writable"}
}

// checkWorkbooks lists the workbooks. Missing workbooks are normal and do
// not affect readiness.
func (hs *HealthService) checkWorkbooks() ServiceHealth {
	infos, err := hs.data.ListWorkbooks()
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	present := 0
	for _, info := range infos {
		if info.Table != "" && info.Exists {
			present++
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d of 3 workbooks present", present),
		Details: infos,
	}
}

func (hs *HealthService) checkCache() ServiceHealth {
	if hs.cache == nil {
		return ServiceHealth{Status: "ready", Message: "Cache disabled"}
	}
	return ServiceHealth{Status: "ready", Details: hs.cache.Stats()}
}

func (hs *HealthService) checkWebSocket() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{Status: "ready", Message: "WebSocket hub not configured"}
	}
	return ServiceHealth{
		Status:  "ready",
		Details: map[string]int{"clients": hs.hub.ClientCount()},
	}
}
