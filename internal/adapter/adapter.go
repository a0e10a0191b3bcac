// Package adapter synthesizes the executable pass-through unit bound to a
// descriptor.
//
// There is one Adapter type for every descriptor. It holds the compiled
// field list and relabels whatever values it receives into named, typed
// output slots, falling back to the type default for anything missing.
// Adapters of the "out" group are additionally flagged as sinks so the host
// engine always schedules them.
package adapter

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/relaygrid/internal/descriptor"
)

// DefaultClassPrefix is prepended to qualified keys to form host class names.
const DefaultClassPrefix = "relaygrid"

// Adapter is the executable unit of a descriptor.
type Adapter struct {
	desc      *descriptor.Descriptor
	className string
}

// Option configures Build.
type Option func(*Adapter)

// WithClassPrefix overrides DefaultClassPrefix.
func WithClassPrefix(prefix string) Option {
	return func(a *Adapter) {
		if prefix != "" {
			a.className = prefix + "_" + a.desc.Key()
		}
	}
}

// Build creates the adapter for a compiled descriptor. The descriptor must
// not be modified afterwards.
func Build(d *descriptor.Descriptor, opts ...Option) *Adapter {
	a := &Adapter{
		desc:      d,
		className: DefaultClassPrefix + "_" + d.Key(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute emits, for every field in declaration order, the supplied input
// of that name or the field's default when none was supplied.
func (a *Adapter) Execute(inputs map[string]cty.Value) []cty.Value {
	outputs := make([]cty.Value, len(a.desc.Fields))
	for i, f := range a.desc.Fields {
		if v, ok := inputs[f.Name]; ok {
			outputs[i] = v
			continue
		}
		outputs[i] = f.Default
	}
	return outputs
}

// Descriptor returns the descriptor the adapter was built from.
func (a *Adapter) Descriptor() *descriptor.Descriptor { return a.desc }

// Key returns the qualified key of the adapter's descriptor.
func (a *Adapter) Key() string { return a.desc.Key() }

// ClassName is the host-visible type name of the adapter.
func (a *Adapter) ClassName() string { return a.className }

// Sink reports whether the host must treat the adapter as an output node.
func (a *Adapter) Sink() bool { return a.desc.Group.Sink() }

// Category is the host menu category.
func (a *Adapter) Category() string { return a.desc.Group.Category() }

// ReturnNames lists output slot names in order.
func (a *Adapter) ReturnNames() []string { return a.desc.FieldNames() }

// ReturnTypes lists output slot type tags in order.
func (a *Adapter) ReturnTypes() []string {
	types := make([]string, len(a.desc.Fields))
	for i, f := range a.desc.Fields {
		types[i] = f.Type.String()
	}
	return types
}
