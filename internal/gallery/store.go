package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists the gallery as a single JSON artifact. Commits write
// to a temp file in the same directory and rename over the previous file,
// so readers always observe either the old or the new gallery in full.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed gallery store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the committed gallery. Returns ErrNoGallery when the file does
// not exist yet.
func (s *FileStore) Load(ctx context.Context) (*Gallery, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoGallery
		}
		return nil, fmt.Errorf("read gallery file: %w", err)
	}

	var g Gallery
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse gallery file: %w", err)
	}
	return &g, nil
}

// Commit atomically replaces the committed gallery.
func (s *FileStore) Commit(ctx context.Context, g *Gallery) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode gallery: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create gallery directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".gallery-*.json")
	if err != nil {
		return fmt.Errorf("create temp gallery file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp gallery file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp gallery file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace gallery file: %w", err)
	}
	return nil
}
