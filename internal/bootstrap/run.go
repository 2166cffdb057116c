package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/gitwithsonu015/campus-sos/config"
)

// RunConfig groups dependencies for the service runtime.
type RunConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// Run starts the HTTP server and blocks until a shutdown signal is received
// or the server fails. On SIGINT/SIGTERM the server drains in-flight requests
// and the broadcast hub closes its subscriber streams.
func Run(ctx context.Context, cfg RunConfig) error {
	if cfg.Config == nil || cfg.Services == nil {
		return errors.New("run config requires AppConfig and services")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := NewHTTPServer(HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})

	group, groupCtx := errgroup.WithContext(signalCtx)

	group.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: groupCtx,
			Server:  server,
			Timeout: cfg.Config.HTTP.ShutdownTimeout,
			Logger:  logger,
		}); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}

		if err := cfg.Services.Hub.Close(); err != nil {
			return fmt.Errorf("close broadcast hub: %w", err)
		}
		if err := cfg.Services.Metrics.Close(); err != nil {
			return fmt.Errorf("close metrics client: %w", err)
		}
		return nil
	})

	return group.Wait()
}
