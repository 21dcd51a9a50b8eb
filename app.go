// Package agentstudio wires chat clients, tools, persistence and tracing into
// the studio service.
package agentstudio

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/Desarso/agentstudio/common_tools"
	applog "github.com/Desarso/agentstudio/logger"
	"github.com/Desarso/agentstudio/stores"
	"github.com/Desarso/agentstudio/studio"
)

// App holds every long-lived component built from a Config.
type App struct {
	Config   *Config
	Logger   *zap.Logger
	Store    stores.MessageStore // nil with store type "none"
	Traces   stores.TraceStore   // nil with store type "none"
	Registry *studio.Registry
	Tools    *common_tools.ToolRegistry
	Agent    *Agent
	Delegate *studio.Delegate

	tracerProvider *sdktrace.TracerProvider
}

// AppOption customizes NewApp.
type AppOption func(*appOptions)

type appOptions struct {
	httpClient *http.Client
}

// WithToolHTTPClient sets the HTTP client HTTP-backed tools use.
func WithToolHTTPClient(client *http.Client) AppOption {
	return func(o *appOptions) { o.httpClient = client }
}

// NewApp opens the store, registers the configured clients and tools, and
// installs the global tracer provider.
func NewApp(cfg *Config, logger *zap.Logger, opts ...AppOption) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger = applog.OrNop(logger)
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Config: cfg, Logger: logger}

	if cfg.Store.Type != "" && cfg.Store.Type != StoreTypeNone {
		store, err := stores.NewStore(&cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		traces, err := stores.NewGORMTraceStore(store.DB())
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("open trace store: %w", err)
		}
		app.Store = store
		app.Traces = traces
	}

	registry, err := BuildRegistry(cfg, app.Store, logger)
	if err != nil {
		app.closeStore()
		return nil, err
	}
	app.Registry = registry

	app.Tools = common_tools.NewToolRegistry(logger.Named("tools"))
	if _, err := app.Tools.Configure(cfg.ToolEnvironment(), common_tools.Dependencies{
		JSON:       common_tools.NewJsonParseTool(),
		HTTPClient: o.httpClient,
		Logger:     logger,
	}); err != nil {
		app.closeStore()
		return nil, err
	}
	app.Agent = NewAgent(app.Tools, logger.Named("agent"))
	if len(cfg.AllowedTools) > 0 {
		app.Agent.Approver = AllowList(cfg.AllowedTools...)
	}

	app.tracerProvider = sdktrace.NewTracerProvider()
	otel.SetTracerProvider(app.tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	delegateOpts := []studio.DelegateOption{
		studio.WithLogger(logger.Named("studio")),
		studio.WithTracer(app.tracerProvider.Tracer("github.com/Desarso/agentstudio/studio")),
	}
	if app.Traces != nil {
		delegateOpts = append(delegateOpts, studio.WithTraceStore(app.Traces))
	}
	if app.Store != nil {
		delegateOpts = append(delegateOpts, studio.WithConversationStore(app.Store))
	}
	app.Delegate = studio.NewDelegate(registry, delegateOpts...)

	return app, nil
}

// Close flushes the tracer provider and closes the store.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *App) closeStore() {
	if a.Store != nil {
		_ = a.Store.Close()
	}
}
