package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// DecodeInputs converts raw JSON input values into cty values, dispatching on
// each field's declared type. Names that are not fields are ignored and JSON
// nulls count as not supplied.
func (a *Adapter) DecodeInputs(raw map[string]json.RawMessage) (map[string]cty.Value, error) {
	inputs := make(map[string]cty.Value, len(raw))
	for _, f := range a.desc.Fields {
		msg, ok := raw[f.Name]
		if !ok {
			continue
		}
		v, err := ctyjson.Unmarshal(msg, f.Type.CtyType())
		if err != nil {
			return nil, fmt.Errorf("input '%s' is not a valid %s: %w", f.Name, f.Type, err)
		}
		if v.IsNull() {
			continue
		}
		inputs[f.Name] = v
	}
	return inputs, nil
}

// EncodeOutputs converts Execute results into JSON values.
func EncodeOutputs(values []cty.Value) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(values))
	for i, v := range values {
		b, err := ctyjson.Marshal(v, v.Type())
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}
