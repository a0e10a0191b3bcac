package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/relaygrid/internal/api"
	"github.com/vk/relaygrid/internal/catalog"
	"github.com/vk/relaygrid/internal/ctxlog"
	"github.com/vk/relaygrid/internal/events"
	"github.com/vk/relaygrid/internal/filestore"
	"github.com/vk/relaygrid/internal/hostcatalog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	ctx    context.Context
	config *Config

	host    *hostcatalog.Registry
	store   *filestore.Store
	catalog *catalog.Catalog
	events  *events.Broadcaster
	api     *api.Server

	httpServer *http.Server
	addr       string
	ready      chan struct{}
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, store and catalog.
func NewApp(outW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	store, err := filestore.New(cfg.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open descriptor store: %w", err)
	}
	logger.Debug("Descriptor store opened.", "dir", store.Root())

	host := hostcatalog.New()
	opts := []catalog.Option{
		catalog.WithStore(store),
		catalog.WithClassPrefix(cfg.ClassPrefix),
	}

	var broadcaster *events.Broadcaster
	if cfg.EventsEnabled {
		broadcaster = events.New(ctx)
		opts = append(opts, catalog.WithNotifier(broadcaster))
		logger.Debug("Event broadcaster enabled.", "path", events.Path)
	}

	cat := catalog.New(host, opts...)

	return &App{
		outW:    outW,
		logger:  logger,
		ctx:     ctx,
		config:  cfg,
		host:    host,
		store:   store,
		catalog: cat,
		events:  broadcaster,
		api:     api.New(cat, host, cfg.Prefix),
		ready:   make(chan struct{}),
	}, nil
}

// Catalog returns the application's catalog. This is primarily for testing.
func (a *App) Catalog() *catalog.Catalog { return a.catalog }

// Host returns the host catalog mirror.
func (a *App) Host() *hostcatalog.Registry { return a.host }

// Ready is closed once Run is serving HTTP.
func (a *App) Ready() <-chan struct{} { return a.ready }

// Addr returns the address the HTTP server listens on. It is only valid
// after Ready is closed.
func (a *App) Addr() string { return a.addr }

// Handler builds the root HTTP handler: health check, API routes and, when
// enabled, the socket.io endpoint.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)
	a.api.Register(mux)
	if a.events != nil {
		mux.Handle(events.Path, a.events.Handler())
	}
	return mux
}
