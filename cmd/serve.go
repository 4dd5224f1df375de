package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/okian/storefront/internal/adapters/catalog"
	"github.com/okian/storefront/internal/adapters/http/api"
	"github.com/okian/storefront/internal/adapters/http/site"
	"github.com/okian/storefront/internal/adapters/http/swagger"
	app "github.com/okian/storefront/internal/app"
	"github.com/okian/storefront/internal/config"
	"github.com/okian/storefront/internal/domain/product"
	"github.com/okian/storefront/pkg/logger"
	"github.com/okian/storefront/pkg/metrics"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, locale, err := setup(ctx)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return serve(ctx, cfg, locale)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, locale language.Tag) error {
	log := logger.Get()

	var seed []product.Product
	if cfg.CatalogPath != "" {
		products, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			return err
		}
		seed = products
		log.Info(ctx, "catalog loaded", logger.String("path", cfg.CatalogPath), logger.Int("products", len(products)))
	}

	svc := newService(cfg, locale, seed)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()
	if cfg.AdminPassword == "" {
		log.Warn(ctx, "admin_password not set; admin login is disabled")
	}

	router := mux.NewRouter()
	api.NewServer(svc, svc.Gate(), svc).Register(ctx, router)
	swagger.Register(ctx, router)
	site.Register(ctx, router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(gctx, "server shutdown failed", logger.Error(err))
			return err
		}
		return nil
	})
	g.Go(func() error {
		runMetricsUpdater(gctx, metrics.RefreshInterval(), svc)
		return nil
	})

	err := g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

func newService(cfg *config.Config, locale language.Tag, seed []product.Product) *app.Service {
	return app.New(
		app.WithLogger(logger.Get()),
		app.WithEnginePath(cfg.EnginePath),
		app.WithQueueSize(cfg.EngineQueueSize),
		app.WithLocale(locale),
		app.WithResponseTimeout(cfg.ResponseTimeout()),
		app.WithStrictSend(cfg.StrictSend),
		app.WithAdminPassword(cfg.AdminPassword),
		app.WithSessionTTL(cfg.AdminSessionTTL()),
		app.WithMaxSessions(cfg.AdminMaxSessions),
		app.WithCatalog(seed),
	)
}

// runMetricsUpdater refreshes system and service gauges until ctx ends.
func runMetricsUpdater(ctx context.Context, interval time.Duration, svc *app.Service) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
			svc.RefreshGauges()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
