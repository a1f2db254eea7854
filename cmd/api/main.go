package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrisdamba/skybooker/internal/api"
	"github.com/chrisdamba/skybooker/internal/client"
	"github.com/chrisdamba/skybooker/internal/flow"
	"github.com/chrisdamba/skybooker/internal/generator"
	"github.com/chrisdamba/skybooker/internal/ports"
	"github.com/chrisdamba/skybooker/internal/repository"
	"github.com/chrisdamba/skybooker/internal/service"
	"github.com/chrisdamba/skybooker/internal/session"
	"github.com/chrisdamba/skybooker/pkg/config"
	"github.com/chrisdamba/skybooker/pkg/health"
	"github.com/chrisdamba/skybooker/pkg/logger"
	"github.com/chrisdamba/skybooker/pkg/metrics"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
)

type App struct {
	config  *config.Config
	log     *logger.ZapLogger
	metrics *metrics.Metrics
	server  *http.Server
	db      *pgxpool.Pool
	store   *session.Store
	cancel  context.CancelFunc
}

func NewApp(cfg *config.Config, log *logger.ZapLogger) *App {
	return &App{
		config:  cfg,
		log:     log,
		metrics: metrics.NewMetrics(cfg.App.MetricsNamespace),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.setupDatabase(ctx); err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}

	if err := a.setupServer(); err != nil {
		return fmt.Errorf("server setup failed: %w", err)
	}

	return nil
}

func (a *App) setupDatabase(ctx context.Context) error {
	if !a.config.Database.Enabled() {
		a.log.Warn("POSTGRES_HOST not set, booking ledger disabled")
		return nil
	}

	config, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := repository.NewBookingRepository(pool).EnsureSchema(ctx); err != nil {
		pool.Close()
		return err
	}

	a.db = pool
	a.log.Info("booking ledger connected", "host", a.config.Database.Host, "database", a.config.Database.Name)
	return nil
}

func (a *App) setupServer() error {
	a.store = session.NewStore(
		session.WithLogger(a.log.With("component", "sessions")),
		session.WithSweepHook(func(_, remaining int) {
			a.metrics.ActiveSessions.Set(float64(remaining))
		}),
	)

	services := a.setupServices()
	router := a.setupRouter(services)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Accept", api.AdminKeyHeader},
	})

	a.server = &http.Server{
		Addr:         a.config.Server.Address,
		Handler:      corsHandler.Handler(router),
		WriteTimeout: a.config.Server.WriteTimeout,
		ReadTimeout:  a.config.Server.ReadTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	return nil
}

type Services struct {
	BookingService ports.BookingService
}

func (a *App) setupServices() Services {
	var repo ports.BookingRepository
	if a.db != nil {
		repo = repository.NewBookingRepository(a.db)
	}

	return Services{
		BookingService: service.NewBookingService(a.store, a.setupGenerator(), repo,
			service.WithLogger(a.log.With("component", "booking")),
			service.WithMetrics(a.metrics),
			service.WithAdminKey(a.config.App.AdminKey),
			service.WithFlowOptions(flow.WithPaymentDelay(a.config.Flow.PaymentDelay)),
		),
	}
}

func (a *App) setupGenerator() ports.ItineraryGenerator {
	if a.config.Inventory.BaseURL != "" {
		a.log.Info("using inventory service", "url", a.config.Inventory.BaseURL)
		return client.NewInventoryClient(client.WithBaseURL(a.config.Inventory.BaseURL))
	}
	a.log.Info("using simulated inventory", "delay", a.config.Flow.SearchDelay)
	return generator.NewRandom(generator.WithDelay(a.config.Flow.SearchDelay))
}

func (a *App) setupRouter(services Services) http.Handler {
	router := mux.NewRouter()
	v1 := router.PathPrefix("/v1").Subrouter()

	var checks []health.Check
	if a.db != nil {
		checks = append(checks, health.Check{Name: "ledger", Ping: a.db.Ping})
	}
	v1.HandleFunc("/health", health.HealthGet(health.Options{
		Version:  a.config.App.Version,
		Sessions: a.store.Len,
		Checks:   checks,
	})).Methods(http.MethodGet)

	api.RegisterRoutes(v1, services.BookingService)

	router.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)

	return router
}

func (a *App) Run(ctx context.Context) error {
	janitorCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	go a.store.Run(janitorCtx, a.config.Session.TTL, a.config.Session.SweepInterval)

	serverErrors := make(chan error, 1)

	go func() {
		a.log.Info("starting server", "address", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-shutdown:
		a.log.Info("starting graceful shutdown")
		return a.Shutdown(ctx)
	case <-ctx.Done():
		return a.Shutdown(ctx)
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.cancel != nil {
		a.cancel()
	}

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if a.db != nil {
		a.db.Close()
	}

	a.log.Info("server stopped")
	return nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("failed to load configuration", "error", err)
	}

	log := logger.NewLogger(cfg.App.LogLevel)
	defer log.Sync()

	app := NewApp(cfg, log)
	if err := app.Initialize(ctx); err != nil {
		log.Fatal("failed to initialize application", "error", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("application error", "error", err)
		os.Exit(1)
	}
}
