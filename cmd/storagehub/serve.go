package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/storagesync/internal/config"
	"github.com/vango-dev/storagesync/internal/errors"
	"github.com/vango-dev/storagesync/pkg/wsbus"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the event hub",
		Long: `Run the event hub.

The hub accepts WebSocket clients and relays every storage event
a client publishes to all other clients. It also serves /healthz
and Prometheus metrics at /metrics.

Examples:
  storagehub serve
  storagehub serve --addr=:8080
  storagehub serve --config=storagehub.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return errors.FromError(err, "S401")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, ln, newLogger(cfg, cmd.ErrOrStderr()))
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

// hubConfig maps the file configuration onto the hub's.
func hubConfig(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) wsbus.HubConfig {
	return wsbus.HubConfig{
		Path:             cfg.Path,
		HandshakeTimeout: cfg.HandshakeTimeout.Std(),
		ReadTimeout:      cfg.ReadTimeout.Std(),
		WriteTimeout:     cfg.WriteTimeout.Std(),
		PingInterval:     cfg.PingInterval.Std(),
		SendQueueSize:    cfg.SendQueue,
		MaxMessageSize:   cfg.MaxMessageBytes,
		MetricsNamespace: cfg.MetricsNamespace,
		Registry:         reg,
		Logger:           logger,
	}
}

// runServe serves the hub on ln until ctx is done, then disconnects clients
// and shuts the server down.
func runServe(ctx context.Context, cfg *config.Config, ln net.Listener, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hub := wsbus.NewHub(hubConfig(cfg, logger, reg))
	srv := &http.Server{
		Handler:           hub,
		ReadHeaderTimeout: cfg.HandshakeTimeout.Std(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("storagehub listening",
		"addr", ln.Addr().String(),
		"path", cfg.Path)

	select {
	case err := <-errCh:
		hub.Close()
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.FromError(err, "S401")
	case <-ctx.Done():
	}

	logger.Info("storagehub shutting down", "clients", hub.Len())

	// WebSocket connections are hijacked, so Shutdown does not wait for them.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.FromError(err, "S401")
	}
	return nil
}
