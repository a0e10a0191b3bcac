package adapter

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vk/relaygrid/internal/descriptor"
	"github.com/vk/relaygrid/internal/fieldtype"
)

// InputTypes is the adapter's input contract in the shape host engines
// expect: every field is a required input, keyed by name, in field order.
type InputTypes struct {
	Required *orderedmap.OrderedMap[string, InputSpec] `json:"required"`
}

// InputSpec describes one input. It encodes as a two element array,
// `["INT", {"default": 0, "min": ..., "max": ...}]`.
type InputSpec struct {
	Type    fieldtype.Type
	Options InputOptions
}

// InputOptions are the per-input widget options.
type InputOptions struct {
	Default   any      `json:"default"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Multiline *bool    `json:"multiline,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s InputSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Type.String(), s.Options})
}

// InputTypes builds the adapter's input contract.
func (a *Adapter) InputTypes() InputTypes {
	required := orderedmap.New[string, InputSpec](len(a.desc.Fields))
	for _, f := range a.desc.Fields {
		required.Set(f.Name, inputSpec(f))
	}
	return InputTypes{Required: required}
}

func inputSpec(f descriptor.FieldSchema) InputSpec {
	opts := InputOptions{Default: descriptor.GoDefault(f.Type)}
	if lo, hi, ok := f.Type.Bounds(); ok {
		opts.Min, opts.Max = &lo, &hi
	}
	if f.Type == fieldtype.String {
		multiline := false
		opts.Multiline = &multiline
	}
	return InputSpec{Type: f.Type, Options: opts}
}
