package http

import (
	"context"

	"fteapp/internal/files"
	"fteapp/internal/services"
	"fteapp/pkg/contracts"
	"fteapp/pkg/contracts/domain"
)

// DashboardService is what the API and page handlers need from the service layer
type DashboardService interface {
	Overview(ctx context.Context) (services.OverviewView, error)
	LoadTable(ctx context.Context, kind domain.TableKind) (services.TableView, error)
	SaveTable(ctx context.Context, kind domain.TableKind, tbl domain.Table) (services.SaveResult, error)
	ClearCache(ctx context.Context, reason string) files.CacheStats
	CacheStats() files.CacheStats
}

// HealthService is what the health handler needs
type HealthService interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() contracts.VersionInfo
}

var (
	_ DashboardService = (*services.DashboardService)(nil)
	_ HealthService    = (*services.HealthService)(nil)
)
