package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"flexipayslip/internal/domain/draft"
	"flexipayslip/internal/domain/render"
	"flexipayslip/internal/platform/config"
	cryptoutil "flexipayslip/internal/platform/crypto"
	"flexipayslip/internal/platform/db"
	"flexipayslip/internal/platform/jobs"
	"flexipayslip/internal/platform/metrics"
	paysliphandler "flexipayslip/internal/transport/http/handlers/payslip"
	"flexipayslip/internal/transport/http/middleware"
)

// jsonBodyBytes caps non-upload request bodies.
const jsonBodyBytes = 1 << 20

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	DB      *pgxpool.Pool
	Drafts  *draft.Service
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Router  http.Handler
}

func Run() {
	cfg := config.Load()
	logger := NewLogger(cfg)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Serve(ctx); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

// NewLogger builds the JSON logger in the ECS shape the request logger
// emits, at the configured level.
func NewLogger(cfg config.Config) *slog.Logger {
	format := httplog.SchemaECS.Concise(cfg.Environment != "production")
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       parseLevel(cfg.LogLevel),
		ReplaceAttr: format.ReplaceAttr,
	})
	return slog.New(handler).With(
		slog.String("app", "flexipayslip"),
		slog.String("env", cfg.Environment),
	)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New wires stores, services and the router. Drafts live in memory unless
// DATABASE_URL is set.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}

	var store draft.StoreAPI = draft.NewMemoryStore()
	if cfg.UsesDatabase() {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		app.DB = pool
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		sealer, err := cryptoutil.New(cfg.DataEncryptionKey)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("encryption key: %w", err)
		}
		if !sealer.Configured() {
			logger.Warn("draft payloads are stored unencrypted; set DATA_ENCRYPTION_KEY")
		}
		store = draft.NewStore(pool, sealer)
	}

	app.Drafts = draft.NewService(store, cfg.DefaultTheme)
	app.Jobs = jobs.New(app.Drafts, cfg, app.Metrics, logger)
	app.Router = app.routes()
	return app, nil
}

func (a *App) routes() http.Handler {
	cfg := a.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(a.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	router.Use(chimw.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", middleware.RequestIDHeader, "X-Payslip-Degraded"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production", cfg.AllowedOrigins))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(a.Metrics))
	}
	router.Use(middleware.BodyLimit(min(jsonBodyBytes, cfg.MaxBodyBytes), cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.ExpensiveRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if a.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := a.DB.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		payslipHandler := paysliphandler.NewHandler(a.Drafts, render.NewEngine(a.Logger), a.Metrics, a.Logger, cfg.MaxBodyBytes)
		payslipHandler.RegisterRoutes(r)
	})

	return router
}

// Serve starts the background jobs and the HTTP listener, and shuts both
// down when ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	a.Jobs.Start(jobCtx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("payslip server listening", "addr", a.Config.Addr, "database", a.Config.UsesDatabase())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		cancelJobs()
		a.Jobs.Wait()
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	cancelJobs()
	a.Jobs.Wait()
	return err
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
