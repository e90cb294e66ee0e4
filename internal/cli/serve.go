package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"healthplots/internal/config"
	"healthplots/internal/infrastructure"
	"healthplots/internal/services"
	transport "healthplots/internal/transport/http"
)

func serveCmd(configFile *string) *cobra.Command {
	var addr string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run summary, charts and metrics over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, paths, logger, err := setup(*configFile, func(cfg *config.Config) error {
				if addr != "" {
					cfg.Server.Addr = addr
				}
				return nil
			})
			if err != nil {
				return err
			}
			defer infrastructure.CloseLogFile()

			handler, shutdown, err := newServerHandler(cfg, paths, logger)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
			}
			srv := &http.Server{
				Handler:      handler,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", ln.Addr())
			return runServer(cmd.Context(), srv, ln, cfg.Server.ShutdownTimeout, logger)
		},
	}

	c.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return c
}

// newServerHandler creates the output directories and builds the API
// handler with its own metrics registry. The returned func flushes and stops
// telemetry.
func newServerHandler(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (http.Handler, func(context.Context) error, error) {
	if err := paths.EnsureDirectories(); err != nil {
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, paths.TraceFile, registry, logger)
	if err != nil {
		return nil, nil, err
	}

	handler, err := transport.NewRouter(transport.RouterDeps{
		Health:   services.NewHealthService(config.AppVersion, paths, logger),
		Results:  services.NewResultsService(paths, logger),
		Gatherer: registry,
		OTel:     providers,
		Server:   cfg.Server,
		Logger:   logger,
	})
	if err != nil {
		providers.Shutdown(context.Background())
		return nil, nil, err
	}
	return handler, providers.Shutdown, nil
}

// runServer serves on ln until ctx is done, then shuts srv down within
// timeout.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "Server started", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.InfoContext(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.InfoContext(shutdownCtx, "Server stopped")
	return nil
}
