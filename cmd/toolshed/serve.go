package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/toolshed"
	"github.com/aretw0/toolshed/internal/cli"
	"github.com/aretw0/toolshed/internal/config"
	api "github.com/aretw0/toolshed/pkg/adapters/http"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/observability"
	"github.com/aretw0/toolshed/pkg/ports"
	"github.com/aretw0/toolshed/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the session API over HTTP. Every session keeps its own UI state,
persisted after each operation in the configured store (memory, redis or sqlite).
Snapshot diffs are streamed to clients over Server-Sent Events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}
		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}

func serve(parent context.Context, cfg config.Config, logger *slog.Logger) error {
	sc := cli.NewSignalContext(parent)
	defer sc.Cancel()

	cat, err := cli.BuildCatalog(cfg.Catalog, logger)
	if err != nil {
		return err
	}
	persistence, err := cli.BuildStore(cfg.Store)
	if err != nil {
		return err
	}
	defer persistence.Close()

	streams := api.NewStreamManager()
	hooks := []domain.LifecycleHooks{observability.LogHooks(logger), streams.Hooks()}
	apiOpts := []api.Option{api.WithCatalog(cat), api.WithLogger(logger), api.WithStreams(streams)}
	if cfg.HTTP.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}
		hooks = append(hooks, metrics.Hooks())
		apiOpts = append(apiOpts, api.WithMetrics(reg))
	}

	ctlOpts := append(cli.ControllerOptions(cfg, cat, logger), toolshed.WithLifecycleHooks(domain.ChainHooks(hooks...)))
	mgrOpts := []session.Option{
		session.WithControllerOptions(ctlOpts...),
		session.WithLogger(logger),
		session.WithMaxLive(cfg.Session.MaxLive),
		session.WithIdleTimeout(cfg.Session.IdleTimeout.Duration),
	}
	if persistence.Locker != nil {
		mgrOpts = append(mgrOpts, session.WithLocker(persistence.Locker))
	}
	mgr := session.NewManager(persistence.Store, mgrOpts...)
	defer mgr.Close()

	g, ctx := errgroup.WithContext(sc)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewHandler(mgr, apiOpts...),
		ReadHeaderTimeout: 10 * time.Second,
		// event streams end with the server context
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		logger.Info("toolshed server listening",
			"addr", srv.Addr,
			"store", cfg.Store.Driver,
			"catalog", cfg.Catalog.Source,
			"version", toolshed.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		if sig := sc.Signal(); sig != nil {
			logger.Info("shutting down", "signal", sig.String())
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout.Duration)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", cfg.HTTP.ShutdownTimeout.Duration, "error", err)
			return srv.Close()
		}
		return nil
	})

	if w, ok := cat.(ports.Watchable); ok && cfg.Catalog.Watch {
		g.Go(func() error {
			return watchCatalog(ctx, w, logger)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("toolshed server stopped")
	return nil
}

// watchCatalog blocks until ctx is done. The catalog swaps its own content;
// this only keeps the watcher alive and reports changes.
func watchCatalog(ctx context.Context, w ports.Watchable, logger *slog.Logger) error {
	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch catalog: %w", err)
	}
	logger.Info("watching catalog for changes")
	for range changes {
		logger.Debug("catalog change applied")
	}
	return nil
}
