package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/relaygrid/internal/ctxlog"
	"github.com/vk/relaygrid/internal/storewatch"
)

// Run restores persisted descriptors, seeds missing defaults, and serves
// HTTP until ctx is cancelled. It must only be called once.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	loaded := a.catalog.ReloadAll(ctx)
	seeded := a.catalog.EnsureDefaults(ctx, a.config.Seeds)
	a.logger.Info("Catalog ready.", "loaded", loaded, "seeded", seeded, "nodes", a.catalog.Len())

	serveErr, err := a.startServer()
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if a.config.WatchStore {
		var opts []storewatch.Option
		if a.config.StoreResync != "" {
			opts = append(opts, storewatch.WithResync(a.config.StoreResync))
		}
		w := storewatch.New(a.store, a.catalog, opts...)
		watchErr := make(chan error, 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := w.Run(watchCtx)
			if err != nil {
				a.logger.Error("Store watcher stopped.", "error", err)
			}
			watchErr <- err
		}()

		// A watcher that cannot start does not block serving.
		select {
		case <-w.Ready():
		case <-watchErr:
		}
	}

	close(a.ready)
	a.logger.Info("🚀 relaygrid is up.")

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Debug("Shutdown requested.")
	case err, ok := <-serveErr:
		if ok && err != nil {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	stopWatch()
	wg.Wait()
	if err := a.closeServer(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to shut down http server: %w", err)
	}
	if a.events != nil {
		a.events.Close()
	}

	a.logger.Info("🏁 relaygrid stopped.")
	return runErr
}
