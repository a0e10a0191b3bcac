package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/relaygrid/internal/adapter"
	"github.com/vk/relaygrid/internal/ctxlog"
	"github.com/vk/relaygrid/internal/descriptor"
)

// ErrNotFound is returned when no entry exists for a (group, id) pair.
var ErrNotFound = errors.New("node not found")

// HostCatalog is the host engine's type listing. The catalog keeps it in
// step with its own entries.
type HostCatalog interface {
	Upsert(key string, a *adapter.Adapter, displayName string) error
	Remove(key string) error
}

// Store persists descriptors. Implementations log their own failures and
// report them as false or absent results.
type Store interface {
	Save(ctx context.Context, d *descriptor.Descriptor) bool
	Load(ctx context.Context, group descriptor.Group, id string) (*descriptor.Descriptor, bool)
	Delete(ctx context.Context, group descriptor.Group, id string) bool
	ListIDs(ctx context.Context, group descriptor.Group) []string
}

// EventKind names a committed catalog change.
type EventKind string

const (
	EventCreated EventKind = "node_created"
	EventDeleted EventKind = "node_deleted"
)

// Event describes one committed change.
type Event struct {
	Kind        EventKind `json:"kind"`
	ID          string    `json:"id"`
	Group       string    `json:"group"`
	ClassName   string    `json:"class_name"`
	DisplayName string    `json:"display_name"`
}

// Notifier receives committed changes.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Entry is one committed descriptor and the adapter built from it.
type Entry struct {
	Descriptor *descriptor.Descriptor
	Adapter    *adapter.Adapter
}

// Key returns the entry's qualified key.
func (e *Entry) Key() string { return e.Descriptor.Key() }

// CreateRequest carries the operator's definition of a descriptor.
type CreateRequest struct {
	// ID is generated when empty.
	ID    string
	Group string
	// Fields maps field names to type tags in declaration order.
	Fields *descriptor.Fields
	// DisplayName defaults to a group-specific label when empty.
	DisplayName string
	// Persist writes the descriptor to the store after it is committed.
	Persist bool
}

// Catalog holds the committed entries.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	host        HostCatalog
	store       Store
	notifier    Notifier
	classPrefix string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithStore enables write-through persistence and reloading.
func WithStore(s Store) Option {
	return func(c *Catalog) { c.store = s }
}

// WithNotifier registers a receiver for committed changes.
func WithNotifier(n Notifier) Option {
	return func(c *Catalog) { c.notifier = n }
}

// WithClassPrefix sets the prefix of host class names.
func WithClassPrefix(prefix string) Option {
	return func(c *Catalog) { c.classPrefix = prefix }
}

// New creates an empty catalog mirrored into host.
func New(host HostCatalog, opts ...Option) *Catalog {
	c := &Catalog{
		entries:     make(map[string]*Entry),
		host:        host,
		classPrefix: adapter.DefaultClassPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create compiles and commits a descriptor, replacing any entry already
// registered under the same (group, id).
func (c *Catalog) Create(ctx context.Context, req CreateRequest) (*Entry, error) {
	d, err := c.compile(req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	entry, err := c.commitLocked(ctx, d, req.Persist)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	c.notify(ctx, EventCreated, entry)
	return entry, nil
}

func (c *Catalog) compile(req CreateRequest) (*descriptor.Descriptor, error) {
	group, err := descriptor.ParseGroup(req.Group)
	if err != nil {
		return nil, err
	}
	id := req.ID
	if id == "" {
		id = descriptor.NewID()
	}
	if err := descriptor.ValidateID(id); err != nil {
		return nil, err
	}
	name := req.DisplayName
	if name == "" {
		name = group.DefaultDisplayName(id)
	}
	return &descriptor.Descriptor{
		ID:          id,
		Group:       group,
		Fields:      descriptor.Compile(req.Fields),
		DisplayName: name,
	}, nil
}

// commitLocked builds the adapter and installs it in the host catalog and
// then in the local map. A host failure leaves both untouched. The caller
// holds the write lock.
func (c *Catalog) commitLocked(ctx context.Context, d *descriptor.Descriptor, persist bool) (*Entry, error) {
	logger := ctxlog.FromContext(ctx)
	entry := &Entry{
		Descriptor: d,
		Adapter:    adapter.Build(d, adapter.WithClassPrefix(c.classPrefix)),
	}
	key := d.Key()

	if err := c.host.Upsert(key, entry.Adapter, d.DisplayName); err != nil {
		return nil, fmt.Errorf("register %s in host catalog: %w", key, err)
	}
	_, replaced := c.entries[key]
	c.entries[key] = entry

	if persist && c.store != nil {
		if !c.store.Save(ctx, d) {
			logger.Warn("Descriptor registered but not persisted.", "key", key)
		}
	}

	logger.Info("Node registered.", "key", key, "class_name", entry.Adapter.ClassName(), "display_name", d.DisplayName, "fields", len(d.Fields), "replaced", replaced)
	return entry, nil
}

// Get returns the committed entry for (group, id).
func (c *Catalog) Get(ctx context.Context, group, id string) (*Entry, error) {
	g, err := descriptor.ParseGroup(group)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	entry, ok := c.entries[descriptor.QualifiedKey(g, id)]
	c.mu.RUnlock()

	if !ok {
		ctxlog.FromContext(ctx).Debug("Node lookup missed.", "group", g, "id", id)
		return nil, fmt.Errorf("node with ID %s in group %s: %w", id, g, ErrNotFound)
	}
	return entry, nil
}

// Delete removes (group, id) from the local map, the host catalog and the
// store. It reports false when no entry was registered. Host and store
// failures are logged; the remaining steps still run.
func (c *Catalog) Delete(ctx context.Context, group, id string) (bool, error) {
	g, err := descriptor.ParseGroup(group)
	if err != nil {
		return false, err
	}
	logger := ctxlog.FromContext(ctx)
	key := descriptor.QualifiedKey(g, id)

	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		logger.Warn("Attempted to delete a node that does not exist.", "key", key)
		return false, nil
	}
	delete(c.entries, key)
	if err := c.host.Remove(key); err != nil {
		logger.Error("Failed to remove node from host catalog.", "key", key, "error", err)
	}
	if c.store != nil && descriptor.ValidateID(id) == nil {
		if !c.store.Delete(ctx, g, id) {
			logger.Warn("Node removed but its stored document was not deleted.", "key", key)
		}
	}
	c.mu.Unlock()

	logger.Info("Node deleted.", "key", key, "display_name", entry.Descriptor.DisplayName)
	c.notify(ctx, EventDeleted, entry)
	return true, nil
}

// List returns the entries of one group, or of all groups when group is
// empty, sorted by qualified key.
func (c *Catalog) List(ctx context.Context, group string) ([]*Entry, error) {
	var filter descriptor.Group
	if group != "" {
		g, err := descriptor.ParseGroup(group)
		if err != nil {
			return nil, err
		}
		filter = g
	}

	c.mu.RLock()
	entries := make([]*Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if filter == "" || e.Descriptor.Group == filter {
			entries = append(entries, e)
		}
	}
	c.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key() < entries[j].Key() })
	return entries, nil
}

// Keys returns the committed qualified keys, sorted.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Len returns the number of committed entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Catalog) notify(ctx context.Context, kind EventKind, e *Entry) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(ctx, Event{
		Kind:        kind,
		ID:          e.Descriptor.ID,
		Group:       string(e.Descriptor.Group),
		ClassName:   e.Adapter.ClassName(),
		DisplayName: e.Descriptor.DisplayName,
	})
}
