package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
	"github.com/goliatone/go-apidash/components/dashboard/gorouter"
	"github.com/goliatone/go-apidash/pkg/config"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Addr      string `help:"Override server.addr."`
	Transport string `help:"Override server.transport (chi or fiber)."`
}

func (c *serveCmd) Run(ctx context.Context, g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	if c.Transport != "" {
		cfg.Server.Transport = c.Transport
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.start(ctx); err != nil {
		return err
	}
	group, ctx := errgroup.WithContext(ctx)
	switch cfg.Server.Transport {
	case config.TransportFiber:
		// go-router has no SSE route; the page streams over /ws instead.
		controller, err := a.controller(dashboard.LiveWebSocket)
		if err != nil {
			return err
		}
		if err := a.serveFiber(ctx, group, controller); err != nil {
			return err
		}
	default:
		controller, err := a.controller(dashboard.LiveSSE)
		if err != nil {
			return err
		}
		a.serveHTTP(ctx, group, "dashboard", cfg.Server.Addr, a.chiHandler(controller, cfg.Server.MetricsAddr == ""))
	}
	if addr := cfg.Server.MetricsAddr; addr != "" {
		metrics := chi.NewRouter()
		metrics.Get("/metrics", a.metrics.Handler().ServeHTTP)
		a.serveHTTP(ctx, group, "metrics", addr, metrics)
	}
	return group.Wait()
}

// chiHandler mounts the dashboard under the configured base path.
func (a *app) chiHandler(controller *dashboard.Controller, withMetrics bool) http.Handler {
	handlers := a.executor().NewHandlers(controller, a.broadcast)
	handlers.Logger = &a.logger
	if withMetrics {
		handlers.Metrics = a.metrics.Handler()
	}

	root := chi.NewRouter()
	root.Use(requestLogger(a.logger))
	base := strings.TrimRight(a.cfg.Server.BasePath, "/")
	if base == "" {
		base = "/"
	}
	root.Mount(base, handlers.Routes())
	return root
}

func (a *app) serveHTTP(ctx context.Context, group *errgroup.Group, name, addr string, handler http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger := a.logger.With().Str("listener", name).Str("addr", addr).Logger()
	group.Go(func() error {
		logger.Info().Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("apidash: %s listener: %w", name, err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
}

func (a *app) serveFiber(ctx context.Context, group *errgroup.Group, controller *dashboard.Controller) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        a.executor(),
		Broadcast:  a.broadcast,
		BasePath:   a.cfg.Server.BasePath,
	}); err != nil {
		return fmt.Errorf("apidash: register routes: %w", err)
	}
	if a.cfg.Server.MetricsAddr == "" {
		a.logger.Warn().Msg("fiber transport exposes /metrics only through server.metrics_addr")
	}

	addr := a.cfg.Server.Addr
	logger := a.logger.With().Str("listener", "dashboard").Str("addr", addr).Logger()
	group.Go(func() error {
		logger.Info().Str("transport", config.TransportFiber).Msg("listening")
		if err := server.Serve(addr); err != nil {
			return fmt.Errorf("apidash: dashboard listener: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down")
		return server.Shutdown(shutdownCtx)
	})
	return nil
}

// requestLogger logs one line per request. Streaming endpoints log when the
// client disconnects.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(started)).
				Msg("request")
		})
	}
}
