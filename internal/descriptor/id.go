package descriptor

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ErrInvalidID is returned for ids that cannot safely name a stored file.
var ErrInvalidID = errors.New("invalid id")

const maxIDLength = 128

// NewID generates a short random id: the first 8 hex digits of a random UUID.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// ValidateID rejects empty ids and ids that could escape a group directory.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidID)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%w: id longer than %d bytes", ErrInvalidID, maxIDLength)
	}
	if id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	for _, r := range id {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains a path separator or control character", ErrInvalidID, id)
		}
	}
	return nil
}

// QualifiedKey is the single identity of a descriptor across the catalog, the
// host catalog and the file store.
func QualifiedKey(group Group, id string) string {
	return string(group) + "_" + id
}
