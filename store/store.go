// Package store writes update artifacts under an output root.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store writes JSON and binary artifacts below a root directory,
// creating parent directories as needed.
type Store struct {
	root   string
	indent bool
}

// New creates a Store rooted at dir. When indent is set, JSON artifacts
// are written with 4-space indentation.
func New(dir string, indent bool) *Store {
	return &Store{root: dir, indent: indent}
}

// Root returns the output root directory.
func (s *Store) Root() string {
	return s.root
}

// WriteJSON marshals v and writes it to relpath + ".json".
func (s *Store) WriteJSON(relpath string, v any) error {
	var (
		data []byte
		err  error
	)
	if s.indent {
		data, err = json.MarshalIndent(v, "", "    ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", relpath, err)
	}

	return s.write(relpath+".json", data)
}

// WriteFile writes raw bytes to relpath. The extension is the caller's.
func (s *Store) WriteFile(relpath string, data []byte) error {
	return s.write(relpath, data)
}

func (s *Store) write(relpath string, data []byte) error {
	path := filepath.Join(s.root, filepath.FromSlash(relpath))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", relpath, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", relpath, err)
	}
	return nil
}
