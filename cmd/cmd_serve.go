package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/proofscore/internal/adapters/http/api"
	"github.com/okian/proofscore/internal/adapters/http/swagger"
	service "github.com/okian/proofscore/internal/app"
	"github.com/okian/proofscore/pkg/logger"
	"github.com/okian/proofscore/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCommand(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring HTTP API",
		Long: `Serve the scoring HTTP API until SIGINT or SIGTERM.

Routes:
  POST /validate      score one record or an array of records
  GET  /stats         service counters
  GET  /healthz       Prometheus metrics
  GET  /openapi.yaml  OpenAPI document
  GET  /api-docs      rendered API docs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", c.cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", c.cfg.Addr, err)
			}
			return c.serve(ctx, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides the addr setting")
	return cmd
}

// serve runs the API on ln until ctx is done, then drains the service.
func (c *cli) serve(ctx context.Context, ln net.Listener) error {
	if err := metrics.RegisterRuntimeCollectors(); err != nil {
		c.log.Warn(ctx, "runtime collectors not registered", logger.Error(err))
	}

	svc := service.New(
		service.WithLogger(c.log.Named("service")),
		service.WithWorkerCount(c.cfg.WorkerCount),
		service.WithQueueSize(c.cfg.QueueSize),
		service.WithScoringOptions(c.scoringOptions()...),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		c.log.Info(ctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			c.log.Error(ctx, "server shutdown failed", logger.Error(err))
		}
		if err := svc.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("service shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	c.log.Info(ctx, "server stopped")
	return err
}
