// Package catalog is the authoritative in-memory registry of dynamic
// descriptors.
//
// Every committed entry is mirrored into a HostCatalog under the same
// qualified key, so the host's type listing and the catalog never disagree
// once a mutation has returned. Persistence and change notification are
// optional collaborators: the catalog writes through to a Store when a
// create asks for it, and tells a Notifier after each committed change.
//
// # Concurrency Model
//
// A single sync.RWMutex guards the entry map. Mutations (Create, Delete,
// ReloadAll, ReloadOne, EnsureDefaults) hold the write lock across the host
// mirror update, the local map update and the store write, so no reader
// ever observes one mapping without the other. Readers (Get, List, Keys)
// take the read lock. Notifications are delivered after the lock has been
// released.
package catalog
