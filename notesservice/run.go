// Package notesservice boots the notes backend: configuration, store and
// object-store wiring, health checking, and the HTTP server lifecycle.
package notesservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/salem-notes/notes-backend/internal/api"
	"github.com/salem-notes/notes-backend/internal/auth"
	"github.com/salem-notes/notes-backend/internal/blob"
	"github.com/salem-notes/notes-backend/internal/config"
	"github.com/salem-notes/notes-backend/internal/core/identity"
	"github.com/salem-notes/notes-backend/internal/core/note"
	"github.com/salem-notes/notes-backend/internal/health"
	"github.com/salem-notes/notes-backend/internal/logger"
	"github.com/salem-notes/notes-backend/internal/store"
	"github.com/salem-notes/notes-backend/internal/store/postgres"
	"github.com/salem-notes/notes-backend/internal/store/sqlite"
)

// Run starts the notes service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("notes-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	// Root context cancelled on SIGINT/SIGTERM.
	ctx, stop := newServerContext()
	defer stop()

	st, objects, verifier, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}

	attachments := blob.NewLifecycle(objects)
	noteSvc := note.NewService(st, attachments)
	resolver := identity.NewResolver(st)

	svcHealth := startHealthCheckers(ctx, cfg, log, st, objects)

	router := api.NewRouter(api.RouterDeps{
		Notes:             noteSvc,
		Verifier:          verifier,
		Resolver:          resolver,
		IsHealthy:         svcHealth.IsHealthy,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
	})

	// Block startup until dependencies report healthy; fail fast otherwise.
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

// initDependencies constructs the store, the object store, and the token
// verifier selected by configuration, failing fast when any is unreachable.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, blob.ObjectStore, auth.Verifier, error) {
	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store unavailable")
		return nil, nil, nil, err
	}

	objects, err := blob.NewMinioStore(ctx, blob.MinioConfig{
		Endpoint:  cfg.ObjectStoreEndpoint,
		AccessKey: cfg.ObjectStoreAccessKey,
		SecretKey: cfg.ObjectStoreSecretKey,
		Bucket:    cfg.ObjectStoreBucket,
		UseSSL:    cfg.ObjectStoreUseSSL,
	})
	if err != nil {
		log.Error().Stack().Err(err).Msg("Object store unavailable")
		return nil, nil, nil, err
	}

	verifier, err := newVerifier(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Token verifier unavailable")
		return nil, nil, nil, err
	}

	return st, objects, verifier, nil
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("DB_DRIVER postgres requires POSTGRES_DSN")
		}
		db, err := postgres.Bootstrap(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return postgres.NewWithDB(db), nil
	case "sqlite":
		return sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

func newVerifier(ctx context.Context, cfg *config.Config, log zerolog.Logger) (auth.Verifier, error) {
	if cfg.AuthMode == "oidc" {
		return auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer)
	}
	log.Warn().Msg("static dev verifier active; do not use outside local development")
	return auth.NewStaticVerifier(), nil
}

// startHealthCheckers starts component checkers and the service aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, objects blob.ObjectStore) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	objectChecker := blob.NewHealthChecker(objects, log, probeTimeout)
	go objectChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker, objectChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
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

// startupHealthTimeout is interval*2 with a 60 second floor, giving checkers
// time to finish their first probe cycle.
func startupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup
// window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := startupHealthTimeout(cfg.HealthIntervalSeconds)
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

func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
