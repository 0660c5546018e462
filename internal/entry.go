// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/starford/menusitemap/internal/api"
	"github.com/starford/menusitemap/internal/metrics"
	"github.com/starford/menusitemap/internal/provider"
	"github.com/starford/menusitemap/internal/sitemap"
	"github.com/starford/menusitemap/internal/siteservice"
	"github.com/starford/menusitemap/internal/snapshot"
	"github.com/starford/menusitemap/internal/sse"
)

// runtime is the wired dependency graph shared by the server and the
// one-shot commands.
type runtime struct {
	cfg      *Config
	logger   *slog.Logger
	store    *provider.Store
	syncer   *snapshot.Syncer
	svc      *siteservice.Service
	registry *prom.Registry
}

func newApplication(opts []Option) (*application, error) {
	app := &application{
		version: "dev",
		out:     os.Stdout,
		logOut:  os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// wire opens the store and builds the service. onChange receives snapshot
// events; it may be nil.
func (a *application) wire(ctx context.Context, logger *slog.Logger, onChange snapshot.EventCallback) (*runtime, error) {
	cfg := a.config

	store, err := provider.Open(ctx, cfg.Database.ProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logger, store: store}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Enabled {
		rt.registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(rt.registry)
	}

	if cfg.Snapshots.Enabled() {
		dir, err := snapshot.OpenDir(cfg.Snapshots.Dir)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("init snapshots: %w", err)
		}
		rt.syncer = snapshot.NewSyncer(store, dir, logger, recorder)
	}

	gen := sitemap.NewGenerator(store, cfg.Sitemap.Options(),
		sitemap.WithRecorder(recorder),
		sitemap.WithLogger(logger),
	)
	rt.svc = siteservice.NewService(gen, rt.syncer, onChange)
	return rt, nil
}

// initialSync imports the snapshot directory once. Failures are logged; the
// store keeps whatever it held before.
func (rt *runtime) initialSync(ctx context.Context, cb snapshot.EventCallback) {
	if rt.syncer == nil {
		return
	}
	report, err := rt.syncer.Sync(ctx, cb)
	if err != nil {
		rt.logger.Warn("initial sync failed", slog.String("error", err.Error()))
		return
	}
	rt.logger.Info("initial sync complete",
		slog.Int("imported", len(report.Imported)),
		slog.Int("removed", len(report.Removed)),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("failed", len(report.Failed)))
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("base_url", cfg.Site.BaseURL),
		slog.String("db_driver", cfg.Database.Driver),
		slog.String("snapshots_dir", cfg.Snapshots.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	rt, err := app.wire(ctx, logger, broker.PublishSnapshotEvent)
	if err != nil {
		return err
	}
	defer rt.store.Close()

	rt.initialSync(ctx, nil)

	httpServer := &http.Server{
		Addr:         cfg.App.HTTP.Address(),
		Handler:      rt.router(broker),
		ReadTimeout:  cfg.App.HTTP.ReadTimeout,
		WriteTimeout: cfg.App.HTTP.WriteTimeout,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start snapshot watcher with SSE callback.
	if rt.syncer != nil && cfg.Snapshots.Watch {
		g.Go(func() error {
			if err := rt.syncer.Watch(gCtx, broker.PublishSnapshotEvent); err != nil {
				logger.Error("snapshot watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// router builds the public handler: the sitemap interceptor in front of
// health, metrics and the admin API.
func (rt *runtime) router(broker *sse.Broker) http.Handler {
	cfg := rt.cfg

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.SitemapInterceptor(rt.svc, cfg.Site.BaseURL, cfg.Sitemap.APITrigger()))

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := rt.store.Ping(r.Context()); err != nil {
			rt.logger.Warn("readiness check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	if rt.registry != nil {
		r.Handle(cfg.Metrics.Path, metrics.Handler(rt.registry))
	}

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(rt.svc, api.RouterConfig{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		BaseURL:     cfg.Site.BaseURL,
	}, broker))

	return r
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
