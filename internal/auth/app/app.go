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
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/backend"
	httpapi "github.com/aussiebroadwan/tokengate/internal/auth/http"
	"github.com/aussiebroadwan/tokengate/internal/auth/service"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/aussiebroadwan/tokengate/internal/auth/store/cache"
	"github.com/aussiebroadwan/tokengate/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/tokengate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tokengate/internal/auth/tenant"
	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
	"github.com/google/uuid"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the token service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        store.Store
	gateway   *backend.Gateway
	tenants   *tenant.Index
	refresher *tenant.Refresher

	// Services
	tokenService        *service.TokenService
	validationService   *service.ValidationService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if cfg.InstanceUUID == "" {
		cfg.InstanceUUID = uuid.NewString()
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initTenants(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initBackends(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.refresher.Start()
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"instance_uuid", app.cfg.InstanceUUID,
		"backends", app.gateway.Names(),
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.stopWorkers()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.stopWorkers()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) stopWorkers() {
	app.housekeepingService.Stop()
	app.refresher.Stop()
}

// initDatabase opens the configured store, applies migrations and optionally
// puts the token cache in front of it.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.StoreDriver {
	case "sqlite":
		db, err = sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	case "postgres":
		if app.cfg.DatabaseURL == "" {
			return errors.New("AUTH_DATABASE_URL is required for the postgres driver")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.StoreDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied successfully", "driver", app.cfg.StoreDriver)

	if app.cfg.TokenCache {
		cached, err := cache.New(db, cache.Config{
			MaxEntries:  app.cfg.TokenCacheSize,
			MaxLifetime: app.cfg.MaxExpiration,
		})
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to initialize token cache: %w", err)
		}
		app.logger.Info("token cache enabled", "max_entries", app.cfg.TokenCacheSize)
		db = cached
	}

	app.db = db
	return nil
}

// initTenants applies the optional tenant seed and loads the index once so
// the service starts with a complete view of the tenant forest.
func (app *Application) initTenants() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if app.cfg.TenantsFile != "" {
		seed, err := LoadTenantSeed(app.cfg.TenantsFile)
		if err != nil {
			return err
		}
		err = app.db.WithTx(ctx, func(tx store.Tx) error {
			for _, t := range seed {
				if err := tx.Tenants().Upsert(ctx, t); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to seed tenants: %w", err)
		}
		app.logger.Info("tenant seed applied", "tenants", len(seed))
	}

	app.tenants = tenant.NewIndex(nil)
	app.refresher = tenant.NewRefresher(app.tenants, app.db.Tenants(), app.logger, app.cfg.TenantRefreshInterval)
	if err := app.refresher.Load(ctx); err != nil {
		return fmt.Errorf("failed to load tenants: %w", err)
	}
	return nil
}

func (app *Application) initBackends() error {
	reg, err := LoadBackends(app.cfg.BackendsFile)
	if err != nil {
		return fmt.Errorf("failed to load backends: %w", err)
	}

	retries := uint64(max(app.cfg.BackendRetries, 0))
	app.gateway = backend.NewGateway(reg, app.cfg.BackendTimeout, retries)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Store:             app.db,
		Gateway:           app.gateway,
		DefaultBackend:    app.cfg.DefaultBackend,
		DefaultExpiration: app.cfg.DefaultExpiration,
		MaxExpiration:     app.cfg.MaxExpiration,
		Now:               time.Now,
	}

	app.validationService = &service.ValidationService{
		Store:   app.db,
		Tenants: app.tenants,
		Now:     time.Now,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.RefreshRetention = app.cfg.RefreshTokenRetention
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.cfg.InstanceUUID,
		app.db,
		app.refresher,
		app.logger,
	)

	// Wire services to router
	router.TokenService = app.tokenService
	router.ValidationService = app.validationService
	router.BackendNames = app.gateway.Names
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
