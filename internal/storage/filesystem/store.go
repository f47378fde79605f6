// Package filesystem backs the key-value store with one JSON file per key
// under a data directory, the closest native equivalent of the browser's
// local storage the original tool persisted into.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avdeev/apilab/internal/storage"
)

// Store is a file-per-key KV store.
type Store struct {
	basePath string
}

// New creates the data directory if needed and returns a store over it.
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Get reads the blob for key. Returns storage.ErrNotFound for absent keys.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.keyPath(key))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set writes the blob for key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := os.WriteFile(s.keyPath(key), value, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob for key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.keyPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op for the filesystem backend.
func (s *Store) Close() error {
	return nil
}

func (s *Store) keyPath(key string) string {
	// Keys are fixed identifiers, but sanitize anyway so a key can never
	// escape the data directory.
	safe := strings.ReplaceAll(key, string(filepath.Separator), "_")
	return filepath.Join(s.basePath, safe+".json")
}

var _ storage.KV = (*Store)(nil)
