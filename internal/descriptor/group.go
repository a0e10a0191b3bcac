package descriptor

import (
	"errors"
	"fmt"
)

// Group partitions descriptors into entry ("in") and exit ("out") adapters.
type Group string

const (
	GroupIn  Group = "in"
	GroupOut Group = "out"
)

// Groups lists the valid groups in reload order.
var Groups = []Group{GroupIn, GroupOut}

// ErrInvalidGroup is returned for any group other than "in" or "out".
var ErrInvalidGroup = errors.New("invalid group")

// ParseGroup validates a raw group string.
func ParseGroup(s string) (Group, error) {
	switch Group(s) {
	case GroupIn, GroupOut:
		return Group(s), nil
	}
	return "", fmt.Errorf("%w: %q, only 'in' or 'out' are supported", ErrInvalidGroup, s)
}

// Sink reports whether adapters of this group are terminal nodes to the host.
func (g Group) Sink() bool {
	return g == GroupOut
}

// Category is the host-facing menu category of adapters in this group.
func (g Group) Category() string {
	if g == GroupOut {
		return "workflow/output"
	}
	return "workflow/input"
}

// DefaultDisplayName is used when a descriptor is created without a name.
func (g Group) DefaultDisplayName(id string) string {
	if g == GroupOut {
		return "Dynamic output " + id
	}
	return "Dynamic input " + id
}
