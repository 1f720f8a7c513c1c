package http

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	apierrors "fteapp/internal/errors"
	"fteapp/internal/files"
	"fteapp/internal/services"
	"fteapp/pkg/contracts"
	"fteapp/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Overview(ctx context.Context) (services.OverviewView, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.OverviewView), args.Error(1)
}

func (m *MockDashboardService) LoadTable(ctx context.Context, kind domain.TableKind) (services.TableView, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(services.TableView), args.Error(1)
}

func (m *MockDashboardService) SaveTable(ctx context.Context, kind domain.TableKind, tbl domain.Table) (services.SaveResult, error) {
	args := m.Called(ctx, kind, tbl)
	return args.Get(0).(services.SaveResult), args.Error(1)
}

func (m *MockDashboardService) ClearCache(ctx context.Context, reason string) files.CacheStats {
	args := m.Called(ctx, reason)
	return args.Get(0).(files.CacheStats)
}

func (m *MockDashboardService) CacheStats() files.CacheStats {
	args := m.Called()
	return args.Get(0).(files.CacheStats)
}

// MockHealthService is a mock implementation of HealthService
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() contracts.VersionInfo {
	return m.Called().Get(0).(contracts.VersionInfo)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(discardLogger(), false)
}

func optimalView() services.TableView {
	return services.TableView{
		Name:    domain.TableOptimal,
		Title:   domain.TableOptimal.Title(),
		File:    "optimal_fte.xlsx",
		Columns: []string{domain.ColSection, domain.ColOptimalFTE},
		Rows: [][]domain.Cell{
			{domain.Text("Chest"), domain.Number(3)},
			{domain.Text("Neuro"), domain.Missing()},
		},
		Version:  "abc123",
		Editable: true,
	}
}
