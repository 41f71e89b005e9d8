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

	"github.com/okian/concentration/internal/adapters/http/api"
	"github.com/okian/concentration/internal/adapters/http/site"
	"github.com/okian/concentration/internal/adapters/http/swagger"
	app "github.com/okian/concentration/internal/app"
	"github.com/okian/concentration/internal/config"
	"github.com/okian/concentration/pkg/logger"
	"github.com/okian/concentration/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Only the custom registry is exposed; keep runtime collectors out of the default one.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

// run serves the game API until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		return fmt.Errorf("log format: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go metrics.Default().RunSystemSampler(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		// Event streams hold their connection open, so writes carry their
		// own deadlines instead of a server-wide WriteTimeout.
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newService maps configuration onto service options.
func newService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	alphabet, err := cfg.Alphabet()
	if err != nil {
		return nil, fmt.Errorf("symbols: %w", err)
	}
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithAlphabet(alphabet),
		app.WithMismatchDelay(cfg.MismatchDelay()),
		app.WithVolume(cfg.Volume),
		app.WithMismatchVariants(cfg.MismatchVariants),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDispatcherCount(cfg.DispatcherCount),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxGames(cfg.MaxGames),
		app.WithIdleTTL(cfg.IdleTTL()),
		app.WithSubscriberBuffer(cfg.SubscriberBuffer),
	), nil
}

// newMux registers the API, the docs and the board page.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater refreshes the service gauges until ctx ends.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats publishes active games as a side effect.
			_ = svc.GetStats()
		}
	}
}
