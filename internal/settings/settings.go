// Package settings provides the durable key-value store used for small
// pieces of cross-restart state: the migration progress cursor and the
// active-backend flag.
//
// Values are strings; absent keys read as the empty string rather than an
// error. The file-backed implementation writes through a temp-file rename
// so a crash mid-write never leaves a truncated file behind.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the durable key-value contract consumed by the migration
// manager and the backend facade.
type Store interface {
	// Get returns the value for key, or "" if the key was never set.
	Get(key string) (string, error)

	// Set durably persists value under key.
	Set(key, value string) error
}

// FileStore is a Store backed by a single JSON file.
type FileStore struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// OpenFile opens (or creates) a file-backed store at path. The parent
// directory is created if needed.
func OpenFile(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	fs := &FileStore{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path) //nolint:gosec // Path is derived from app config
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := json.Unmarshal(data, &fs.values); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return fs, nil
}

// Get returns the value for key, or "" if unset.
func (fs *FileStore) Get(key string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.values[key], nil
}

// Set persists value under key, replacing the file atomically.
func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.values[key] = value

	data, err := json.MarshalIndent(fs.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

// Get returns the value for key, or "" if unset.
func (ms *MemStore) Get(key string) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.values[key], nil
}

// Set stores value under key.
func (ms *MemStore) Set(key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.values[key] = value
	return nil
}
