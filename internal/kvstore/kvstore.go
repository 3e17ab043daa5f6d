// Package kvstore is the durable key-value persistence layer used for the
// auth session. It mirrors the getItem/setItem/removeItem storage surface the
// consumers were written against.
package kvstore

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrNotFound is returned by GetItem when the key has never been set or has
// been removed.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a minimal durable key-value API.
type Store interface {
	GetItem(key string) ([]byte, error)
	SetItem(key string, value []byte) error
	RemoveItem(key string) error
}

// FileStore persists each key as one file inside a directory. Writes go
// through a temp file and rename so a crash never leaves a torn value.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore creates a store rooted at dir on the provided filesystem.
// Tests typically pass afero.NewMemMapFs().
func NewFileStore(fsys afero.Fs, dir string) (*FileStore, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{fs: fsys, dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// GetItem returns the stored value for key, or ErrNotFound.
func (s *FileStore) GetItem(key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// SetItem stores value under key, replacing any previous value.
func (s *FileStore) SetItem(key string, value []byte) error {
	target := s.path(key)
	tmp := target + ".tmp"

	if err := afero.WriteFile(s.fs, tmp, value, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *FileStore) RemoveItem(key string) error {
	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
