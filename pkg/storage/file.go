package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps each record in <dir>/<key>.json.
type FileStore struct {
	Dir      string
	MaxBytes int
}

func NewFileStore(dir string, maxBytes int) *FileStore {
	return &FileStore{Dir: dir, MaxBytes: maxBytes}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func (s *FileStore) Read(key string) ([]byte, error) {
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotExist
	}
	return b, err
}

func (s *FileStore) Write(key string, data []byte) error {
	if err := checkQuota(key, data, s.MaxBytes); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Write to a sibling temp file and rename so a crash never leaves a
	// truncated record behind.
	f, err := os.CreateTemp(s.Dir, key+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0600); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path(key))
}

func (s *FileStore) Close() error { return nil }
