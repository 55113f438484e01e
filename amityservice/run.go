// Package amityservice wires configuration, storage, auth, health checking
// and the HTTP router into a runnable service.
package amityservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/api"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/auth"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/config"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/events"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/health"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/logger"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/notify"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store/memstore"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store/postgres"
)

// Run starts the Amity HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("amity-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("http_port", cfg.HTTPPort).
		Bool("dev_mode", cfg.DevMode).
		Msg("Amity service starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := newStore(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store unavailable")
		return err
	}

	az, err := newAuthorizer(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Authorizer unavailable")
		return err
	}

	bus := events.NewBus(1024)

	// In-process bridge: domain events become outbox rows. Delivery runs in
	// the separate notifier-worker binary.
	bridge := notify.NewBridge(st, bus, log)
	go bridge.Run(ctx)

	svcHealth := startHealthCheckers(ctx, cfg, log, st)

	router := api.NewRouter(api.Deps{
		Store:      st,
		Authorizer: az,
		Bus:        bus,
		Health:     svcHealth,
		Log:        log,
	})

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

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

// newStore opens Postgres, or an in-memory store in dev mode without a DSN.
func newStore(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	if cfg.PostgresDSN == "" {
		if !cfg.DevMode {
			return nil, fmt.Errorf("AMITY_POSTGRES_DSN is required outside dev mode")
		}
		log.Warn().Msg("no Postgres DSN; using in-memory store (data is not persisted)")
		return memstore.New(), nil
	}
	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(db); err != nil {
		return nil, err
	}
	return postgres.NewWithDB(db), nil
}

func newAuthorizer(cfg *config.Config) (auth.Authorizer, error) {
	if cfg.DevMode {
		return auth.NewMockAuthorizer(), nil
	}
	return auth.NewSignedTokenAuthorizer(cfg.AuthSecret)
}

func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	var checkers []health.HealthChecker
	if pinger, ok := st.(health.HealthPinger); ok {
		storeChecker := health.NewPingChecker("store", pinger, log, probeTimeout)
		go storeChecker.Start(ctx, interval)
		checkers = append(checkers, storeChecker)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}
