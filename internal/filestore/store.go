// Package filestore persists descriptors as one JSON document per file:
// `<root>/<group>/<id>.json`.
//
// The store is a durability aid for the in-memory catalog, not a source of
// truth for it. Every I/O failure is logged and reported as a false or
// absent result; nothing is returned as an error past New.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/relaygrid/internal/ctxlog"
	"github.com/vk/relaygrid/internal/descriptor"
	"github.com/vk/relaygrid/internal/fsutil"
)

const ext = ".json"

// Store is a filesystem-backed descriptor store.
type Store struct {
	root string
}

// New creates the store, creating root and one directory per group.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("store root cannot be empty")
	}
	for _, g := range descriptor.Groups {
		if err := os.MkdirAll(filepath.Join(root, string(g)), 0o750); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	return &Store{root: filepath.Clean(root)}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// GroupDir returns the directory holding a group's documents.
func (s *Store) GroupDir(group descriptor.Group) string {
	return filepath.Join(s.root, string(group))
}

// path derives the document path of (group, id) and verifies it stays in
// the group directory.
func (s *Store) path(group descriptor.Group, id string) (string, error) {
	if _, err := descriptor.ParseGroup(string(group)); err != nil {
		return "", err
	}
	if err := descriptor.ValidateID(id); err != nil {
		return "", err
	}
	dir := s.GroupDir(group)
	p := filepath.Clean(filepath.Join(dir, id+ext))
	if !strings.HasPrefix(p, dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal detected for id %q", id)
	}
	return p, nil
}

// Save writes the descriptor's document, replacing any previous one.
func (s *Store) Save(ctx context.Context, d *descriptor.Descriptor) bool {
	logger := ctxlog.FromContext(ctx).With("group", d.Group, "id", d.ID)

	p, err := s.path(d.Group, d.ID)
	if err != nil {
		logger.Error("Failed to save descriptor.", "error", err)
		return false
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.Record()); err != nil {
		logger.Error("Failed to encode descriptor.", "error", err)
		return false
	}

	if err := writeFileAtomic(p, buf.Bytes()); err != nil {
		logger.Error("Failed to save descriptor.", "path", p, "error", err)
		return false
	}
	logger.Debug("Descriptor saved.", "path", p)
	return true
}

// Load reads one descriptor. The group and id of the path win over those
// recorded in the document.
func (s *Store) Load(ctx context.Context, group descriptor.Group, id string) (*descriptor.Descriptor, bool) {
	logger := ctxlog.FromContext(ctx).With("group", group, "id", id)

	p, err := s.path(group, id)
	if err != nil {
		logger.Error("Failed to load descriptor.", "error", err)
		return nil, false
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false
		}
		logger.Error("Failed to read descriptor.", "path", p, "error", err)
		return nil, false
	}

	var rec descriptor.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		logger.Error("Failed to decode descriptor.", "path", p, "error", err)
		return nil, false
	}
	if (rec.ID != "" && rec.ID != id) || (rec.Group != "" && rec.Group != string(group)) {
		logger.Warn("Descriptor document disagrees with its location, using the location.", "path", p, "recorded_id", rec.ID, "recorded_group", rec.Group)
	}
	rec.ID, rec.Group = id, string(group)

	d, err := descriptor.FromRecord(rec)
	if err != nil {
		logger.Error("Failed to compile stored descriptor.", "path", p, "error", err)
		return nil, false
	}
	return d, true
}

// Delete removes a descriptor's document. A missing document is not a failure.
func (s *Store) Delete(ctx context.Context, group descriptor.Group, id string) bool {
	logger := ctxlog.FromContext(ctx).With("group", group, "id", id)

	p, err := s.path(group, id)
	if err != nil {
		logger.Error("Failed to delete descriptor.", "error", err)
		return false
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		logger.Error("Failed to delete descriptor.", "path", p, "error", err)
		return false
	}
	logger.Debug("Descriptor document removed.", "path", p)
	return true
}

// ListIDs returns the ids stored for a group, sorted.
func (s *Store) ListIDs(ctx context.Context, group descriptor.Group) []string {
	dir := s.GroupDir(group)
	stems, err := fsutil.ListStems(dir, ext)
	if err != nil {
		if !os.IsNotExist(err) {
			ctxlog.FromContext(ctx).Error("Failed to list stored descriptors.", "dir", dir, "error", err)
		}
		return nil
	}

	ids := stems[:0]
	for _, id := range stems {
		if descriptor.ValidateID(id) == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// IDFromPath maps a document path inside the store back to (group, id).
func (s *Store) IDFromPath(p string) (descriptor.Group, string, bool) {
	rel, err := filepath.Rel(s.root, filepath.Clean(p))
	if err != nil {
		return "", "", false
	}
	dir, file := filepath.Split(rel)
	group, err := descriptor.ParseGroup(strings.TrimSuffix(dir, string(os.PathSeparator)))
	if err != nil || !strings.HasSuffix(file, ext) {
		return "", "", false
	}
	id := strings.TrimSuffix(file, ext)
	if descriptor.ValidateID(id) != nil {
		return "", "", false
	}
	return group, id, true
}

func writeFileAtomic(p string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(p), filepath.Base(p)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o640); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, p)
}
