package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mmuslimabdulj/navsocket/internal/config"
	httpHandler "github.com/mmuslimabdulj/navsocket/internal/delivery/http"
	"github.com/mmuslimabdulj/navsocket/internal/delivery/ws"
	"github.com/mmuslimabdulj/navsocket/internal/middleware"
	"github.com/mmuslimabdulj/navsocket/internal/observability"
	"github.com/mmuslimabdulj/navsocket/internal/route"
	"github.com/mmuslimabdulj/navsocket/internal/usecase"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.port != "" {
		cfg.Port = opts.port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	collab, err := buildCollaborators(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer collab.close()

	metrics := observability.NewMetrics()

	nav := usecase.NewNavigator(usecase.NewTripTable(), collab.paths, collab.recorder, logger.With("component", "navigator"))
	nav.SetTimeout(cfg.RouteTimeout)
	nav.SetMetrics(metrics)

	hub := ws.NewHub()
	hub.SetMetrics(metrics)

	gateway := ws.NewGateway(hub, nav, logger.With("component", "gateway"))
	gateway.SetLocationsScope(cfg.LocationsScope)
	gateway.SetMetrics(metrics)

	handler := httpHandler.NewHandler(hub, gateway, nav, collab.history, cfg, logger.With("component", "http"))

	apiLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAPI, int(cfg.RateLimitAPI)*2)
	defer apiLimiter.Stop()
	wsLimiter := middleware.NewIPRateLimiter(cfg.RateLimitWS, int(cfg.RateLimitWS)*2)
	defer wsLimiter.Stop()

	mux := http.NewServeMux()

	// Page routes
	mux.Handle("/", middleware.NoCache(http.HandlerFunc(handler.HandleStatus)))
	mux.Handle("/healthz", middleware.NoCache(http.HandlerFunc(handler.HandleHealth)))
	mux.Handle("/metrics", promhttp.Handler())

	// WebSocket route with rate limiting
	mux.HandleFunc("/ws", middleware.RateLimitFunc(wsLimiter, handler.HandleWebSocket))

	// API routes with rate limiting
	mux.Handle("/api/trips", middleware.NoCache(middleware.RateLimitMiddleware(apiLimiter)(http.HandlerFunc(handler.HandleTripHistory))))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.SecurityHeaders(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("navsocket listening",
			"addr", "http://localhost:"+cfg.Port,
			"trip_store", cfg.TripStore,
			"route_service", cfg.RouteServiceURL != "",
			"locations_scope", cfg.LocationsScope)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited gracefully")
	return nil
}

// collaborators are the route & trip service adapters picked by config
type collaborators struct {
	paths    usecase.PathFinder
	recorder usecase.TripRecorder
	history  httpHandler.TripLister
	closers  []io.Closer
}

func (c *collaborators) close() {
	for _, closer := range c.closers {
		closer.Close()
	}
}

func buildCollaborators(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*collaborators, error) {
	collab := &collaborators{}

	if cfg.RouteServiceURL != "" {
		client := route.NewHTTPClient(cfg.RouteServiceURL, cfg.RouteTimeout)
		collab.paths = client
		if cfg.TripStore == "http" {
			collab.recorder = client
		}
	} else {
		logger.Warn("no route service configured, using straight-line paths")
		collab.paths = route.StraightLine{}
	}

	if cfg.TripStore == "sqlite" {
		store, err := route.OpenSQLite(ctx, cfg.TripDBPath)
		if err != nil {
			return nil, fmt.Errorf("open trip store: %w", err)
		}
		collab.recorder = store
		collab.history = store
		collab.closers = append(collab.closers, store)
	}

	return collab, nil
}

// newLogger builds the slog logger; silent and off discard everything
func newLogger(cfg *config.Config) *slog.Logger {
	var out io.Writer = os.Stdout
	level := slog.LevelInfo

	switch strings.ToLower(cfg.LogLevel) {
	case "silent", "off":
		out = io.Discard
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}
