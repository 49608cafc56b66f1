package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
	"github.com/goliatone/go-apidash/components/dashboard/httpapi"
	"github.com/goliatone/go-apidash/pkg/config"
	"github.com/goliatone/go-apidash/pkg/credentials"
	"github.com/goliatone/go-apidash/pkg/logging"
	"github.com/goliatone/go-apidash/pkg/observability"
)

const serviceName = "apidash"

// load resolves the configuration and logger for a command run.
func (g *Globals) load() (config.Config, zerolog.Logger, error) {
	var opts []config.Option
	if g.Config != "" {
		opts = append(opts, config.WithConfigFile(g.Config))
	}
	if g.EnvFile != "" {
		opts = append(opts, config.WithEnvFile(g.EnvFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	logger, err := logging.New(cfg.Logging, serviceName, nil)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

// app holds one fully wired dashboard.
type app struct {
	cfg       config.Config
	logger    zerolog.Logger
	store     dashboard.CredentialStore
	service   *dashboard.Service
	boot      *dashboard.Bootstrap
	broadcast *dashboard.BroadcastHook
	metrics   *observability.Metrics
	telemetry dashboard.Telemetry
	closers   []io.Closer
}

func newApp(cfg config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    logger,
		broadcast: dashboard.NewBroadcastHook(),
		metrics:   observability.NewMetrics(),
	}
	a.metrics.TrackSubscribers(a.broadcast)
	a.telemetry = observability.Multi{observability.NewLogTelemetry(logger), a.metrics}

	store, err := a.openStore()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	endpoints := cfg.Endpoints
	widgets := cfg.Dashboard.Widgets
	var doc *dashboard.WidgetManifestDocument
	if path := cfg.Dashboard.Manifest; path != "" {
		doc, err = dashboard.ReadManifest(path)
		if err != nil {
			a.Close()
			return nil, err
		}
		if doc.Endpoints != nil {
			endpoints = endpoints.Override(*doc.Endpoints)
		}
		if len(widgets) == 0 {
			widgets = doc.Order()
		}
	}

	client := dashboard.NewHTTPClient(dashboard.HTTPConfig{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
	})
	registry := dashboard.NewDefaultRegistry(dashboard.ProviderDeps{
		Client:      client,
		Endpoints:   endpoints,
		Credentials: store,
	})
	if doc != nil {
		if err := registry.LoadManifestDocument(doc); err != nil {
			a.Close()
			return nil, err
		}
		logger.Info().Str("manifest", doc.Source).Int("widgets", len(doc.Widgets)).Msg("manifest applied")
	}

	a.service = dashboard.NewService(dashboard.Options{
		Providers:   registry,
		Credentials: store,
		RefreshHook: dashboard.RefreshHooks{a.broadcast, observability.NewLogHook(logger)},
		Telemetry:   a.telemetry,
		Logger:      &a.logger,
		Widgets:     widgets,
	})
	a.boot = dashboard.NewBootstrap(a.service)
	return a, nil
}

func (a *app) openStore() (dashboard.CredentialStore, error) {
	path := a.cfg.Storage.CredentialsPath
	if path == "" {
		return dashboard.NewInMemoryCredentialStore(), nil
	}
	store, err := credentials.Open(path)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store)
	a.logger.Debug().Str("path", path).Msg("credential store opened")
	return store, nil
}

// start binds the triggers and fires the initial loads.
func (a *app) start(ctx context.Context) (*dashboard.InitialLoads, error) {
	loads, err := a.boot.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("apidash: start dashboard: %w", err)
	}
	return loads, nil
}

// controller builds the page controller; live picks the update channel the
// page subscribes to.
func (a *app) controller(live string) (*dashboard.Controller, error) {
	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("apidash: load templates: %w", err)
	}
	var cache dashboard.RegionCache
	if ttl := a.cfg.Dashboard.RegionCacheTTL; ttl > 0 {
		cache = dashboard.NewFragmentCache(ttl)
	}
	return dashboard.NewController(dashboard.ControllerOptions{
		Service:   a.service,
		Bootstrap: a.boot,
		Renderer:  renderer,
		Cache:     cache,
		Title:     a.cfg.Dashboard.Title,
		BasePath:  a.cfg.Server.BasePath,
		Live:      live,
	}), nil
}

func (a *app) executor() *httpapi.CommandExecutor {
	return httpapi.NewCommandExecutor(a.service, a.boot, a.telemetry)
}

// Close stops the broadcast hook and releases the credential store.
func (a *app) Close() error {
	a.broadcast.Close()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
