package overdue

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/storage"
)

// Entry is a pending calendar event that will be flagged once its task
// passes the due date.
type Entry struct {
	EventID string    `json:"event_id"`
	Summary string    `json:"summary"`
	Due     time.Time `json:"due"`
}

// Table tracks pending events between syncs.
type Table struct {
	Entries map[string]Entry `json:"entries"`
	store   storage.Store
	mu      sync.Mutex
	dirty   bool
}

func NewTable(store storage.Store) (*Table, error) {
	t := &Table{
		Entries: make(map[string]Entry),
		store:   store,
	}
	b, err := store.Read(storage.KeyOverdue)
	if errors.Is(err, storage.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, t); err != nil {
		return nil, err
	}
	if t.Entries == nil {
		t.Entries = make(map[string]Entry)
	}
	return t, nil
}

func (t *Table) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dirty {
		return nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := t.store.Write(storage.KeyOverdue, b); err != nil {
		return err
	}
	t.dirty = false
	return nil
}

// Update records a pending task with a due date in the future. Anything
// else is removed.
func (t *Table) Update(taskID, eventID, summary string, due time.Time, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if due.IsZero() || !due.After(now) {
		t.remove(taskID)
		return
	}
	old, exists := t.Entries[taskID]
	if !exists || !old.Due.Equal(due) || old.EventID != eventID || old.Summary != summary {
		t.Entries[taskID] = Entry{EventID: eventID, Summary: summary, Due: due}
		t.dirty = true
	}
}

func (t *Table) Remove(taskID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remove(taskID)
}

func (t *Table) remove(taskID string) {
	if _, exists := t.Entries[taskID]; exists {
		delete(t.Entries, taskID)
		t.dirty = true
	}
}

// Sweep returns entries that have become overdue (Due < now) and removes them.
func (t *Table) Sweep(now time.Time) map[string]Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	swept := make(map[string]Entry)
	for id, entry := range t.Entries {
		if entry.Due.Before(now) {
			swept[id] = entry
			delete(t.Entries, id)
			t.dirty = true
		}
	}
	return swept
}
