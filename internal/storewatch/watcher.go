// Package storewatch keeps the catalog in step with descriptor documents
// edited on disk while the server runs.
//
// File writes and creations under the store's group directories are
// debounced per path and re-imported with ReloadOne; the catalog skips
// documents identical to what it already holds, so the watcher's view of
// the catalog's own writes is harmless. Removals are ignored: deleting a
// node is an API operation. An optional cron schedule re-checks every
// stored document as a safety net for missed events.
package storewatch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/vk/relaygrid/internal/ctxlog"
	"github.com/vk/relaygrid/internal/descriptor"
)

// DefaultDebounce is how long a path must be quiet before it is reloaded.
const DefaultDebounce = 100 * time.Millisecond

// Store locates descriptor documents.
type Store interface {
	GroupDir(group descriptor.Group) string
	IDFromPath(p string) (descriptor.Group, string, bool)
	ListIDs(ctx context.Context, group descriptor.Group) []string
}

// Reloader re-imports one stored descriptor.
type Reloader interface {
	ReloadOne(ctx context.Context, group descriptor.Group, id string) bool
}

// Watcher watches a store and feeds changes to a Reloader.
type Watcher struct {
	store    Store
	reloader Reloader
	debounce time.Duration
	resync   string

	ready     chan struct{}
	readyOnce sync.Once

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithResync enables a periodic full re-check on a cron schedule, e.g.
// "@every 5m" or "*/10 * * * *".
func WithResync(schedule string) Option {
	return func(w *Watcher) { w.resync = schedule }
}

// ValidateSchedule reports whether schedule is a valid resync schedule.
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid resync schedule %q: %w", schedule, err)
	}
	return nil
}

// New creates a watcher. Nothing is watched until Run is called.
func New(store Store, reloader Reloader, opts ...Option) *Watcher {
	w := &Watcher{
		store:    store,
		reloader: reloader,
		debounce: DefaultDebounce,
		ready:    make(chan struct{}),
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Ready is closed once Run has registered its watches.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches the store until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("component", "storewatch")

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	for _, g := range descriptor.Groups {
		dir := w.store.GroupDir(g)
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logger.Debug("Watching store directory.", "dir", dir)
	}

	if w.resync != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(w.resync, func() {
			if n := w.Resync(ctx); n > 0 {
				logger.Info("Periodic resync re-imported descriptors.", "count", n)
			}
		}); err != nil {
			return fmt.Errorf("invalid resync schedule %q: %w", w.resync, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Debug("Periodic store resync scheduled.", "schedule", w.resync)
	}

	w.readyOnce.Do(func() { close(w.ready) })
	logger.Info("👀 Watching descriptor store for changes.")
	defer w.stopPending()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Store watcher stopping.")
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			group, id, ok := w.store.IDFromPath(event.Name)
			if !ok {
				continue
			}
			w.schedule(ctx, filepath.Clean(event.Name), group, id)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)
		}
	}
}

// schedule (re)arms the debounce timer of one path.
func (w *Watcher) schedule(ctx context.Context, path string, group descriptor.Group, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if w.reloader.ReloadOne(ctx, group, id) {
			ctxlog.FromContext(ctx).Info("Descriptor changed on disk, reloaded.", "group", group, "id", id)
		}
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// Resync re-checks every stored document and returns how many were
// re-imported.
func (w *Watcher) Resync(ctx context.Context) int {
	n := 0
	for _, g := range descriptor.Groups {
		for _, id := range w.store.ListIDs(ctx, g) {
			if w.reloader.ReloadOne(ctx, g, id) {
				n++
			}
		}
	}
	return n
}
