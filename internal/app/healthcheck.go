package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/vk/relaygrid/internal/ctxlog"
)

const shutdownTimeout = 5 * time.Second

// healthHandler reports liveness.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path, "nodes", a.catalog.Len())
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startServer binds the listener and serves the root handler in a
// goroutine. Serve errors other than a graceful close are sent on the
// returned channel.
func (a *App) startServer() (<-chan error, error) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Configuring HTTP server.")

	ln, err := net.Listen("tcp", a.config.Listen)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", a.config.Listen, err)
	}
	a.addr = ln.Addr().String()

	baseCtx := context.WithoutCancel(a.ctx)
	a.httpServer = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🌐 HTTP server starting", "address", a.addr, "api_prefix", a.api.Prefix())
		// Serve returns http.ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed unexpectedly", "error", err)
			errCh <- err
		}
		close(errCh)
	}()
	return errCh, nil
}

func (a *App) closeServer() error {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Closing HTTP server...")

	if a.httpServer == nil {
		logger.Debug("HTTP server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(a.ctx), shutdownTimeout)
	defer cancel()

	logger.Info("🛑 Shutting down HTTP server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}

	logger.Debug("HTTP server shut down gracefully.")
	return nil
}
