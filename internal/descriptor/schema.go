package descriptor

import (
	"encoding/json"
	"strconv"

	"github.com/invopop/jsonschema"

	"github.com/vk/relaygrid/internal/fieldtype"
)

// JSONSchema describes the descriptor's input contract as a JSON Schema
// object. Properties keep field order; every property carries its default.
func (d *Descriptor) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	for _, f := range d.Fields {
		props.Set(f.Name, fieldSchema(f))
	}
	return &jsonschema.Schema{
		Version:              jsonschema.Version,
		ID:                   jsonschema.ID("urn:relaygrid:" + d.Key()),
		Title:                d.DisplayName,
		Type:                 "object",
		Properties:           props,
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

func fieldSchema(f FieldSchema) *jsonschema.Schema {
	s := &jsonschema.Schema{Default: GoDefault(f.Type)}
	switch f.Type {
	case fieldtype.Int:
		s.Type = "integer"
		s.Minimum = json.Number(strconv.Itoa(fieldtype.IntMin))
		s.Maximum = json.Number(strconv.Itoa(fieldtype.IntMax))
	case fieldtype.Float:
		s.Type = "number"
		s.Minimum = json.Number(strconv.FormatFloat(fieldtype.FloatMin, 'g', -1, 64))
		s.Maximum = json.Number(strconv.FormatFloat(fieldtype.FloatMax, 'g', -1, 64))
	case fieldtype.Boolean:
		s.Type = "boolean"
	default:
		s.Type = "string"
	}
	return s
}

// GoDefault returns the default of a field type as a plain Go value, for
// JSON payloads.
func GoDefault(t fieldtype.Type) any {
	switch t {
	case fieldtype.Int:
		return 0
	case fieldtype.Float:
		return 0.0
	case fieldtype.Boolean:
		return false
	default:
		return ""
	}
}
