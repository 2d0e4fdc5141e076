package index

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/mo-tomi/nowtask5/pkg/storage"
)

// EventIndex maps task ids to calendar event ids so that syncs can skip the
// extended-property search.
type EventIndex struct {
	Mappings map[string]string `json:"mappings"`
	store    storage.Store
	mu       sync.RWMutex
	dirty    bool
}

func NewEventIndex(store storage.Store) (*EventIndex, error) {
	idx := &EventIndex{
		Mappings: make(map[string]string),
		store:    store,
	}
	if err := idx.Load(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *EventIndex) Load() error {
	b, err := idx.store.Read(storage.KeyEventIndex)
	if errors.Is(err, storage.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return json.Unmarshal(b, &idx.Mappings)
}

func (idx *EventIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}

	b, err := json.Marshal(idx.Mappings)
	if err != nil {
		return err
	}
	if err := idx.store.Write(storage.KeyEventIndex, b); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *EventIndex) Get(taskID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Mappings[taskID]
}

func (idx *EventIndex) Set(taskID, eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Mappings[taskID] != eventID {
		idx.Mappings[taskID] = eventID
		idx.dirty = true
	}
}

func (idx *EventIndex) Remove(taskID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.Mappings[taskID]; exists {
		delete(idx.Mappings, taskID)
		idx.dirty = true
	}
}

// TaskIDs lists every indexed task.
func (idx *EventIndex) TaskIDs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ids := make([]string, 0, len(idx.Mappings))
	for id := range idx.Mappings {
		ids = append(ids, id)
	}
	return ids
}
