package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"fteapp/internal/config"
	apierrors "fteapp/internal/errors"
	"fteapp/internal/files"
	"fteapp/internal/infrastructure"
	customMiddleware "fteapp/internal/middleware"
	"fteapp/internal/services"
	handlers "fteapp/internal/transport/http"
	"fteapp/internal/workbook"
	ws "fteapp/internal/websocket"
	"fteapp/pkg/contracts"
	"fteapp/pkg/contracts/domain"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	WebSocketHub  *ws.Hub
	Services      *ServiceContainer

	logSink   *infrastructure.LogSink
	listener  net.Listener
	serverErr chan error
	stopOnce  sync.Once
	stopErr   error
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Files     *files.Manager
	Loader    *files.Loader
	Cache     files.Cache
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// Option customizes an Application
type Option func(*Application)

// WithLogger replaces the configured log sink. Tests use it to keep output quiet.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) { a.Logger = logger }
}

// NewApplication loads the configuration and builds the application
func NewApplication(opts ...Option) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return New(cfg, opts...)
}

// New wires every component for cfg
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	app := &Application{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}

	paths, err := config.NewPaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	app.Paths = paths

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	if app.Logger == nil {
		logCfg := cfg.Logging
		if !filepath.IsAbs(logCfg.FilePath) {
			logCfg.FilePath = filepath.Join(paths.BaseDir, logCfg.FilePath)
		}
		sink, err := infrastructure.InitializeLogger(logCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		app.logSink = sink
		app.Logger = sink.Logger
	}

	app.Logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))
	paths.LogPathResolution(app.Logger)

	otelCfg := infrastructure.DefaultOTelConfig()
	if cfg.Observability.ServiceName != "" {
		otelCfg.ServiceName = cfg.Observability.ServiceName
	}
	if cfg.Observability.TraceExporter != "" {
		otelCfg.TraceExporter = cfg.Observability.TraceExporter
	}
	otelCfg.EnableMetrics = cfg.Observability.EnableMetrics

	providers, err := infrastructure.InitializeOTel(otelCfg, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	app.OTelProviders = providers

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	app.Metrics = metrics

	app.initializeServices()
	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}
	app.createServer()

	return app, nil
}

// initializeServices builds the cache, loader, hub and services
func (a *Application) initializeServices() {
	var cache files.Cache = &files.NopCache{}
	if a.Config.Cache.Enabled {
		cache = files.NewMemoryCache(a.Config.Cache.TTL)
	}

	codec := workbook.NewCodec()
	loader := files.NewLoader(codec, cache, a.Logger, files.WithObserver(a.Metrics))
	manager := files.NewManager(a.Paths, a.Logger)

	hub := ws.NewHub(a.Logger,
		ws.WithKeepalive(a.Config.WebSocket.PingPeriod, a.Config.WebSocket.PongWait),
		ws.WithMeter(a.OTelProviders.Meter))
	hub.Start()
	a.WebSocketHub = hub

	dashboard := services.NewDashboardService(loader, codec, manager, a.Logger,
		services.WithNotifier(hub),
		services.WithSaveObserver(a.Metrics),
		services.WithInvalidateOnSave(a.Config.Cache.InvalidateOnSave))

	for _, kind := range []domain.TableKind{domain.TableActual, domain.TableOptimal, domain.TableForecast} {
		info := manager.Describe(kind)
		if !info.Exists {
			a.Logger.Warn("Workbook not found, the table starts empty",
				slog.String("table", string(kind)),
				slog.String("path", info.Path))
		}
	}

	a.Services = &ServiceContainer{
		Files:     manager,
		Loader:    loader,
		Cache:     cache,
		Dashboard: dashboard,
		Health:    services.NewHealthService(manager, hub, cache, a.Logger),
	}
}

// setupRouter configures all routes and middleware
func (a *Application) setupRouter() error {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	pages, err := handlers.NewPagesHandler(a.Services.Dashboard, config.AppName, a.Logger, errorHandler)
	if err != nil {
		return err
	}

	r := chi.NewRouter()

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// websocket upgrades must not pass through the timeout or body limit
	wsHandler := ws.NewHandler(a.WebSocketHub, ws.HandlerConfig{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		AllowedOrigins:  a.Config.Security.AllowedOrigins,
	}, a.Logger)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", wsHandler)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(errorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				ExposedHeaders: []string{"ETag", "X-Request-ID"},
				MaxAge:         300,
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				errorHandler,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.MaxBodyBytes(a.Config.Security.MaxBodyBytes))
		if a.Config.Server.RequestTimeout > 0 {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, errorHandler))
		}

		a.setupHealthRoutes(r)
		a.setupAPIRoutes(r, errorHandler)
		pages.Routes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
	return nil
}

func (a *Application) setupHealthRoutes(r chi.Router) {
	health := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	r.Get("/healthz", health.HealthCheck)
	r.Get("/readyz", health.ReadinessCheck)
	r.Get("/livez", health.LivenessCheck)
	r.Get("/version", health.Version)
}

func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler) {
	api := handlers.NewAPIHandler(a.Services.Dashboard, a.Logger, errorHandler).Routes()
	api.Post("/logs", handlers.NewClientLogHandler(a.Logger, errorHandler).Handle)

	r.With(render.SetContentType(render.ContentTypeJSON)).Mount("/api", api)
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Start binds the listen address and serves in the background. Bind
// errors are returned; later server errors are reported by Run.
func (a *Application) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln
	a.serverErr = make(chan error, 1)

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			a.serverErr <- err
		}
		close(a.serverErr)
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", "http://"+ln.Addr().String()),
		slog.String("build", contracts.GetVersionString()),
		slog.String("data_dir", a.Paths.DataDir),
		slog.Bool("cache_enabled", a.Config.Cache.Enabled),
		slog.Bool("invalidate_on_save", a.Config.Cache.InvalidateOnSave))
	return nil
}

// Addr returns the bound address once Start has run
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Stop shuts the server down, then the hub, cache and telemetry. Only the
// first call does anything.
func (a *Application) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() { a.stopErr = a.stop(ctx) })
	return a.stopErr
}

func (a *Application) stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.WebSocketHub.Stop()

	if mc, ok := a.Services.Cache.(*files.MemoryCache); ok {
		mc.Stop()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")

	if err := a.logSink.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}
	return errors.Join(errs...)
}

// Run starts the application and blocks until SIGINT or SIGTERM, or until
// the server fails
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Received interrupt signal")
	case err, ok := <-a.serverErr:
		if ok {
			serveErr = err
		}
	}

	if err := a.Stop(context.Background()); err != nil {
		return errors.Join(serveErr, err)
	}
	return serveErr
}
