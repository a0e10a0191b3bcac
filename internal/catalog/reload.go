package catalog

import (
	"context"

	"github.com/vk/relaygrid/internal/ctxlog"
	"github.com/vk/relaygrid/internal/descriptor"
)

// ReloadAll registers every descriptor found in the store without writing
// it back. Calling it again re-registers the same entries, leaving the
// catalog unchanged. It returns the number of descriptors registered.
func (c *Catalog) ReloadAll(ctx context.Context) int {
	logger := ctxlog.FromContext(ctx)
	if c.store == nil {
		logger.Debug("No store configured, nothing to reload.")
		return 0
	}

	var loaded []*Entry
	c.mu.Lock()
	for _, g := range descriptor.Groups {
		for _, id := range c.store.ListIDs(ctx, g) {
			d, ok := c.store.Load(ctx, g, id)
			if !ok {
				logger.Warn("Skipping unreadable stored descriptor.", "group", g, "id", id)
				continue
			}
			entry, err := c.commitLocked(ctx, d, false)
			if err != nil {
				logger.Error("Failed to register stored descriptor.", "group", g, "id", id, "error", err)
				continue
			}
			loaded = append(loaded, entry)
		}
	}
	c.mu.Unlock()

	for _, e := range loaded {
		c.notify(ctx, EventCreated, e)
	}
	logger.Info("Loaded persisted dynamic nodes.", "count", len(loaded))
	return len(loaded)
}

// ReloadOne re-imports a single stored descriptor. It reports false when
// the document is unreadable or identical to the committed entry.
func (c *Catalog) ReloadOne(ctx context.Context, group descriptor.Group, id string) bool {
	if c.store == nil {
		return false
	}
	logger := ctxlog.FromContext(ctx)

	// The document is read under the write lock so a concurrent Delete
	// cannot remove it between the read and the commit.
	c.mu.Lock()
	d, ok := c.store.Load(ctx, group, id)
	if !ok {
		c.mu.Unlock()
		return false
	}
	if current, exists := c.entries[d.Key()]; exists && current.Descriptor.Equal(d) {
		c.mu.Unlock()
		logger.Debug("Stored descriptor unchanged, skipping reload.", "key", d.Key())
		return false
	}
	entry, err := c.commitLocked(ctx, d, false)
	c.mu.Unlock()
	if err != nil {
		logger.Error("Failed to reload stored descriptor.", "key", d.Key(), "error", err)
		return false
	}

	c.notify(ctx, EventCreated, entry)
	return true
}

// EnsureDefaults registers and persists each seed whose key is not yet
// committed. Seeds already present, for example because they were reloaded
// from the store, are left alone. It returns the number of seeds created.
func (c *Catalog) EnsureDefaults(ctx context.Context, seeds []*descriptor.Descriptor) int {
	logger := ctxlog.FromContext(ctx)

	var created []*Entry
	c.mu.Lock()
	for _, d := range seeds {
		if _, exists := c.entries[d.Key()]; exists {
			continue
		}
		entry, err := c.commitLocked(ctx, d, true)
		if err != nil {
			logger.Error("Failed to register default node.", "key", d.Key(), "error", err)
			continue
		}
		created = append(created, entry)
	}
	c.mu.Unlock()

	for _, e := range created {
		c.notify(ctx, EventCreated, e)
	}
	if len(created) > 0 {
		logger.Info("Default nodes created.", "count", len(created))
	}
	return len(created)
}
