// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var errNoExtension = errors.New("extension must not be empty")

// FindFilesByExtension recursively searches rootPath for files ending with
// extension and returns their paths in lexical order. Hidden directories
// such as .git are not descended into.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		return nil, errNoExtension
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ListStems returns the names, without extension, of the regular files
// directly inside dir that end with extension, sorted. Subdirectories are
// not searched.
func ListStems(dir string, extension string) ([]string, error) {
	if extension == "" {
		return nil, errNoExtension
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var stems []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, extension) {
			continue
		}
		if stem := strings.TrimSuffix(name, extension); stem != "" {
			stems = append(stems, stem)
		}
	}
	sort.Strings(stems)
	return stems, nil
}
