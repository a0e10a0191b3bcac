// Package hostcatalog is the in-process stand-in for the host engine's type
// catalog: a class mapping and a display-name mapping keyed by qualified key.
//
// The catalog package owns when entries appear and disappear here; this
// package only stores them and answers the host-facing questions (what
// types exist, what do they accept, run one).
package hostcatalog

import (
	"fmt"
	"sort"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/relaygrid/internal/adapter"
)

// Registry holds the host-visible types.
type Registry struct {
	mu           sync.RWMutex
	classes      map[string]*adapter.Adapter
	displayNames map[string]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		classes:      make(map[string]*adapter.Adapter),
		displayNames: make(map[string]string),
	}
}

// Upsert installs or replaces the type registered under key.
func (r *Registry) Upsert(key string, a *adapter.Adapter, displayName string) error {
	if key == "" {
		return fmt.Errorf("host catalog key cannot be empty")
	}
	if a == nil {
		return fmt.Errorf("host catalog entry %s has no adapter", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[key] = a
	r.displayNames[key] = displayName
	return nil
}

// Remove drops the type registered under key. Removing an absent key is a
// no-op.
func (r *Registry) Remove(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.classes, key)
	delete(r.displayNames, key)
	return nil
}

// Lookup returns the adapter registered under key.
func (r *Registry) Lookup(key string) (*adapter.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.classes[key]
	return a, ok
}

// DisplayName returns the display name registered under key.
func (r *Registry) DisplayName(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.displayNames[key]
	return name, ok
}

// Keys returns the registered keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.classes))
	for k := range r.classes {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Invoke runs the adapter registered under key.
func (r *Registry) Invoke(key string, inputs map[string]cty.Value) ([]cty.Value, error) {
	a, ok := r.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("no host type registered under %s", key)
	}
	return a.Execute(inputs), nil
}

// ObjectInfo describes one host type the way the host's node listing does.
type ObjectInfo struct {
	Input        adapter.InputTypes `json:"input"`
	Output       []string           `json:"output"`
	OutputIsList []bool             `json:"output_is_list"`
	OutputName   []string           `json:"output_name"`
	Name         string             `json:"name"`
	DisplayName  string             `json:"display_name"`
	Description  string             `json:"description"`
	Category     string             `json:"category"`
	OutputNode   bool               `json:"output_node"`
}

// ObjectInfo lists every registered type keyed by class name, in class
// name order.
func (r *Registry) ObjectInfo() *orderedmap.OrderedMap[string, ObjectInfo] {
	r.mu.RLock()
	infos := make([]ObjectInfo, 0, len(r.classes))
	for key, a := range r.classes {
		infos = append(infos, describe(a, r.displayNames[key]))
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	listing := orderedmap.New[string, ObjectInfo](len(infos))
	for _, info := range infos {
		listing.Set(info.Name, info)
	}
	return listing
}

func describe(a *adapter.Adapter, displayName string) ObjectInfo {
	returns := a.ReturnTypes()
	return ObjectInfo{
		Input:        a.InputTypes(),
		Output:       returns,
		OutputIsList: make([]bool, len(returns)),
		OutputName:   a.ReturnNames(),
		Name:         a.ClassName(),
		DisplayName:  displayName,
		Description:  displayName,
		Category:     a.Category(),
		OutputNode:   a.Sink(),
	}
}
