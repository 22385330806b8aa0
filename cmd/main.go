package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/birthprofile/internal/adapters/ephemeris"
	"github.com/okian/birthprofile/internal/adapters/http/api"
	"github.com/okian/birthprofile/internal/adapters/http/site"
	"github.com/okian/birthprofile/internal/adapters/http/swagger"
	"github.com/okian/birthprofile/internal/adapters/mq/queue"
	"github.com/okian/birthprofile/internal/adapters/mq/worker"
	app "github.com/okian/birthprofile/internal/app"
	"github.com/okian/birthprofile/internal/config"
	"github.com/okian/birthprofile/pkg/logger"
	"github.com/okian/birthprofile/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// Use stderr since the logger may not be available
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logOpts := []logger.Option{logger.WithFormat(cfg.LogFormat)}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOpts = append(logOpts, logger.WithWriters(os.Stdout, f))
	}
	if err := logger.Init(logOpts...); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}

	metrics.SetEnabled(cfg.MetricsEnabled)
	go metrics.RunSystemSampler(ctx)

	// Workers outlive ctx so in-flight batches finish during shutdown.
	pool := newPool(cfg, svc, log)
	pool.Start(context.WithoutCancel(ctx))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, pool, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("house_system", cfg.HouseSystem),
			logger.Int("bodies", len(svc.Bodies())),
			logger.Int("workers", pool.Size()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the diagnosis service from cfg.
func newService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	hs, err := ephemeris.ParseHouseSystem(cfg.HouseSystem)
	if err != nil {
		return nil, fmt.Errorf("invalid house system: %w", err)
	}
	builder := ephemeris.New(
		ephemeris.WithHouseSystem(hs),
		ephemeris.WithDataPath(cfg.EphemerisPath),
	)
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithChartBuilder(builder),
	), nil
}

// newPool builds the batch worker pool over svc.
func newPool(cfg *config.Config, svc *app.Service, log logger.Logger) *worker.Pool {
	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.QueueSize))
	return worker.NewPool(cfg.WorkerCount, q, svc, worker.WithLogger(log.Named("batch")))
}

// newHandler registers every route and wraps the mux in the middleware chain.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, pool *worker.Pool, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	apiServer := api.NewServer(svc,
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithLogger(log.Named("api")),
		api.WithBatch(pool, cfg.BatchMaxItems),
	)
	apiServer.Register(ctx, mux)

	return api.Chain(mux, log.Named("http"), cfg.CORSOrigins)
}
