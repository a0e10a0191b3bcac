package descriptor

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/relaygrid/internal/fieldtype"
)

// Fields is an ordered mapping of field name to type tag, as written by an
// operator.
type Fields = orderedmap.OrderedMap[string, string]

// NewFields builds a Fields map from name/tag pairs given in order.
func NewFields(pairs ...string) *Fields {
	fields := orderedmap.New[string, string]()
	for i := 0; i+1 < len(pairs); i += 2 {
		fields.Set(pairs[i], pairs[i+1])
	}
	return fields
}

// FieldSchema is one compiled field of a descriptor.
type FieldSchema struct {
	Name    string
	Type    fieldtype.Type
	Default cty.Value
}

// Descriptor is the compiled definition of one dynamic adapter.
type Descriptor struct {
	ID          string
	Group       Group
	Fields      []FieldSchema
	DisplayName string
}

// Compile turns an ordered name → tag mapping into field schemas. It never
// fails: unknown tags compile to STRING, and a nil or empty map yields no
// fields.
func Compile(fields *Fields) []FieldSchema {
	compiled := make([]FieldSchema, 0, fields.Len())
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		typ := fieldtype.Parse(pair.Value)
		compiled = append(compiled, FieldSchema{
			Name:    pair.Key,
			Type:    typ,
			Default: typ.Default(),
		})
	}
	return compiled
}

// Key returns the descriptor's qualified key.
func (d *Descriptor) Key() string {
	return QualifiedKey(d.Group, d.ID)
}

// Inputs renders the field list back into an ordered name → canonical tag map.
func (d *Descriptor) Inputs() *Fields {
	inputs := orderedmap.New[string, string](len(d.Fields))
	for _, f := range d.Fields {
		inputs.Set(f.Name, f.Type.String())
	}
	return inputs
}

// FieldNames returns the field names in declaration order.
func (d *Descriptor) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// Equal reports whether two descriptors carry the same identity, display
// name and field list.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.ID != other.ID || d.Group != other.Group || d.DisplayName != other.DisplayName {
		return false
	}
	if len(d.Fields) != len(other.Fields) {
		return false
	}
	for i := range d.Fields {
		a, b := d.Fields[i], other.Fields[i]
		if a.Name != b.Name || a.Type != b.Type || !a.Default.RawEquals(b.Default) {
			return false
		}
	}
	return true
}
