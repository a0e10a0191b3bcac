package descriptor

import (
	"fmt"
)

// Record is the persisted form of a descriptor, one JSON document per file:
//
//	{"id": "t1", "group": "in", "inputs": {"text": "STRING"}, "name": "Text"}
type Record struct {
	ID     string  `json:"id"`
	Group  string  `json:"group"`
	Inputs *Fields `json:"inputs"`
	Name   string  `json:"name"`
}

// Record converts the descriptor to its persisted form.
func (d *Descriptor) Record() Record {
	return Record{
		ID:     d.ID,
		Group:  string(d.Group),
		Inputs: d.Inputs(),
		Name:   d.DisplayName,
	}
}

// FromRecord compiles a persisted record back into a descriptor.
func FromRecord(r Record) (*Descriptor, error) {
	group, err := ParseGroup(r.Group)
	if err != nil {
		return nil, err
	}
	if err := ValidateID(r.ID); err != nil {
		return nil, fmt.Errorf("record for group %s: %w", group, err)
	}
	name := r.Name
	if name == "" {
		name = group.DefaultDisplayName(r.ID)
	}
	return &Descriptor{
		ID:          r.ID,
		Group:       group,
		Fields:      Compile(r.Inputs),
		DisplayName: name,
	}, nil
}
