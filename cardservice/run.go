// Package cardservice is the composition root for the card service HTTP
// server. It owns dependency construction, startup health gating, and
// graceful shutdown.
package cardservice

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cardkeep/cardkeep/internal/api"
	"github.com/cardkeep/cardkeep/internal/config"
	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/health"
	"github.com/cardkeep/cardkeep/internal/logger"
	"github.com/cardkeep/cardkeep/internal/remote"
	"github.com/cardkeep/cardkeep/internal/services"
	"github.com/cardkeep/cardkeep/internal/store"
	"github.com/cardkeep/cardkeep/internal/store/postgres"
	"github.com/cardkeep/cardkeep/internal/store/sqlite"
)

// Run starts the card service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("cardkeep-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Bool("remote_configured", cfg.RemoteURL != "").
		Msg("Card service starting")

	ctx, stop := newServerContext()
	defer stop()

	bus := events.NewBus()
	st, db, err := openStore(cfg, bus)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}
	defer func() { _ = db.Close() }()

	// An empty remote URL means this process is the authoritative side and
	// services operate purely on the local store.
	var gw remote.Gateway
	if cfg.RemoteURL != "" {
		gw = remote.NewClient(cfg.RemoteURL).
			WithTimeout(time.Duration(cfg.RemoteTimeoutSecs) * time.Second)
	}

	deps := buildServices(st, gw, log)
	svcHealth := startHealthCheckers(ctx, cfg, log, st)
	deps.Health = svcHealth
	router := api.NewRouter(deps)

	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// openStore builds the store adapter selected by configuration and applies
// the schema.
func openStore(cfg *config.Config, bus *events.Bus) (store.Store, *sql.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlite.EnsureSchema(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlite.New(db, bus), db, nil
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.New(db, bus), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

func buildServices(st store.Store, gw remote.Gateway, log zerolog.Logger) api.Deps {
	cardSvc := services.NewCardService(st, gw, log)
	return api.Deps{
		Cards:     cardSvc,
		Tags:      services.NewTagService(st, gw, log),
		Templates: services.NewTemplateService(st, cardSvc, gw, log),
		Users:     services.NewUserService(st, gw, log),
		Stats:     services.NewStatsService(st, log),
	}
}

// startHealthCheckers starts component checkers and the service aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := 2 * time.Second
	interval := time.Duration(cfg.HealthIntervalSecs) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health window in
// seconds, interval*2 with a minimum of 60.
func calculateStartupHealthTimeout(healthIntervalSecs int) int {
	timeout := healthIntervalSecs * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup
// window expires. Checkers start unhealthy and need one probe cycle.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSecs)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a context cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
