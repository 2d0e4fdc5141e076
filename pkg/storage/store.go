package storage

import (
	"errors"
	"fmt"
	"sync"
)

// Keys of the persisted collections.
const (
	KeyTasks      = "tasks"
	KeyTrash      = "trash"
	KeySettings   = "settings"
	KeyRoutines   = "routines"
	KeyHistory    = "history"
	KeyFreeTime   = "free_time"
	KeyEventIndex = "gcal_index"
	KeyOverdue    = "gcal_overdue"
)

// SyncedKeys are the collections exchanged with a mirror.
var SyncedKeys = []string{KeyTasks, KeyTrash, KeySettings, KeyRoutines, KeyHistory, KeyFreeTime}

// DefaultMaxBytes is the per-record quota used when none is configured.
const DefaultMaxBytes = 5 << 20

var (
	ErrNotExist      = errors.New("storage: key does not exist")
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// Store is a synchronous key-value store of opaque records.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Close() error
}

func checkQuota(key string, data []byte, max int) error {
	if max > 0 && len(data) > max {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrQuotaExceeded, key, len(data), max)
	}
	return nil
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	MaxBytes int

	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Read(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[key]
	if !ok {
		return nil, ErrNotExist
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryStore) Write(key string, data []byte) error {
	if err := checkQuota(key, data, m.MaxBytes); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
