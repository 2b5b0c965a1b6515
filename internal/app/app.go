package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/marcojr93/cntrackerv1/internal/calendar"
	"github.com/marcojr93/cntrackerv1/internal/config"
	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
	"github.com/marcojr93/cntrackerv1/internal/files"
	"github.com/marcojr93/cntrackerv1/internal/infrastructure"
	customMiddleware "github.com/marcojr93/cntrackerv1/internal/middleware"
	"github.com/marcojr93/cntrackerv1/internal/register"
	"github.com/marcojr93/cntrackerv1/internal/services"
	handlers "github.com/marcojr93/cntrackerv1/internal/transport/http"
	"github.com/marcojr93/cntrackerv1/internal/validation"
	"github.com/marcojr93/cntrackerv1/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Register      *register.Store
	Dashboard     *services.DashboardService
	Health        *services.HealthService
	ErrorHandler  *apierrors.ErrorHandler

	closeLog func() error
}

// NewApplication builds the application from cfg, or from config.Load when
// cfg is nil
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}

	logger, closeLog, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a, err := newApplication(cfg, logger)
	if err != nil {
		closeLog()
		return nil, err
	}
	a.closeLog = closeLog
	return a, nil
}

// newApplication wires every component around an existing logger
func newApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("version", contracts.GetVersionString()),
		slog.String("register_path", cfg.Register.Path),
		slog.String("layout", cfg.Register.Layout))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices creates the register store and the services, then
// performs the initial register load
func (a *Application) initializeServices() error {
	loadOpts, err := a.Config.LoadOptions()
	if err != nil {
		return err
	}

	validator := validation.NewFileValidator(a.Logger)
	if err := validator.ValidateOutputDirectory(a.Config.Register.UploadDir); err != nil {
		a.Logger.Warn("upload directory unavailable, uploads will fail",
			slog.String("dir", a.Config.Register.UploadDir),
			slog.String("error", err.Error()))
	}

	store, err := register.NewStore(register.Options{
		Source:    a.Config.Register.Path,
		Load:      loadOpts,
		Uploads:   files.NewManager(a.Config.Register.UploadDir, a.Logger),
		Validator: validator,
		Tracer:    a.OTelProviders.Tracer,
		Metrics:   a.Metrics,
		Logger:    a.Logger,
	})
	if err != nil {
		return err
	}
	a.Register = store

	catalog := calendar.NewCatalog(a.Config.Calendar.Years)
	a.Dashboard = services.NewDashboardService(store, catalog, a.OTelProviders.Tracer, a.Metrics, a.Logger)
	a.Health = services.NewHealthService(store, a.Logger)

	// a missing register is not fatal: it can still be uploaded
	if _, err := store.Reload(context.Background()); err != nil {
		a.Logger.Warn("initial register load failed",
			slog.String("source", a.Config.Register.Path),
			slog.String("error", err.Error()))
	}

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.RequestID)
		r.Use(customMiddleware.RealIP)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	requestValidator := customMiddleware.NewRequestValidator(a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(a.Dashboard, requestValidator, a.ErrorHandler, a.Logger)
		r.Mount("/dashboard", dashboardHandler.DashboardRoutes())
		r.Mount("/map", dashboardHandler.MapRoutes())
		r.Mount("/calendar", dashboardHandler.CalendarRoutes())

		registerHandler := handlers.NewRegisterHandler(a.Register, a.Config.Register.MaxUploadBytes, a.ErrorHandler, a.Logger)
		r.Mount("/register", registerHandler.Routes())
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.Address(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run serves HTTP until ctx is cancelled or an interrupt arrives, then
// shuts down gracefully
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		a.Logger.InfoContext(ctx, "HTTP server listening", slog.String("address", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			a.Stop(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received shutdown signal")
	}

	return a.Stop(context.Background())
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")

	if a.closeLog != nil {
		if err := a.closeLog(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
		a.closeLog = nil
	}
	return errors.Join(errs...)
}
