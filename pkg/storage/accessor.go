package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/mirror"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// SchemaVersion is written into every record envelope.
const SchemaVersion = 1

const defaultPushTimeout = 10 * time.Second

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Accessor reads and writes typed collections through a Store and mirrors
// every successful write to an optional Port.
type Accessor struct {
	store       Store
	port        mirror.Port
	log         *logrus.Entry
	PushTimeout time.Duration

	pending sync.WaitGroup
	pulls   singleflight.Group

	mu     sync.Mutex
	queues map[string]*pushQueue
}

// pushQueue holds the newest unsent snapshot of one key. At most one
// worker drains a queue, so pushes of a key reach the port in write order
// and intermediate snapshots are skipped.
type pushQueue struct {
	next    []byte
	running bool
}

// NewAccessor wires a store to an optional mirror. A nil port disables
// mirroring; a nil logger uses the logrus standard logger.
func NewAccessor(store Store, port mirror.Port, logger *logrus.Logger) *Accessor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Accessor{
		store:       store,
		port:        port,
		log:         logger.WithField("component", "storage"),
		PushTimeout: defaultPushTimeout,
		queues:      map[string]*pushQueue{},
	}
}

// Load decodes the record under key. A missing record, a read failure or a
// record that cannot be parsed all yield def; the latter two are logged.
func Load[T any](a *Accessor, key string, def T) T {
	raw, err := a.store.Read(key)
	if errors.Is(err, ErrNotExist) {
		return def
	}
	if err != nil {
		a.log.WithError(err).WithField("key", key).Warn("read failed, using default")
		return def
	}

	payload, version := unwrap(raw)
	if version > SchemaVersion {
		a.log.WithFields(logrus.Fields{"key": key, "version": version}).Warn("record written by a newer schema")
	}

	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		a.log.WithError(err).WithField("key", key).Warn("parse failed, using default")
		return def
	}
	return v
}

// unwrap returns the payload of an envelope, or raw itself for records
// written before envelopes existed.
func unwrap(raw []byte) (json.RawMessage, int) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Version > 0 && env.Data != nil {
		return env.Data, env.Version
	}
	return raw, 0
}

// DecodeRecord decodes a stored or mirrored record into v, with or
// without its envelope.
func DecodeRecord(raw []byte, v any) error {
	payload, _ := unwrap(raw)
	return json.Unmarshal(payload, v)
}

// Save encodes v into an envelope and writes it. On success the record is
// pushed to the mirror in the background.
func (a *Accessor) Save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	raw, err := json.Marshal(envelope{Version: SchemaVersion, Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := a.store.Write(key, raw); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	a.push(key, raw)
	return nil
}

func (a *Accessor) push(key string, raw []byte) {
	if a.port == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	q, ok := a.queues[key]
	if !ok {
		q = &pushQueue{}
		a.queues[key] = q
	}
	q.next = raw
	if q.running {
		return
	}
	q.running = true
	a.pending.Add(1)
	go a.drain(key, q)
}

func (a *Accessor) drain(key string, q *pushQueue) {
	defer a.pending.Done()
	for {
		a.mu.Lock()
		raw := q.next
		q.next = nil
		if raw == nil {
			q.running = false
			a.mu.Unlock()
			return
		}
		a.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), a.PushTimeout)
		if err := a.port.Push(ctx, key, raw); err != nil {
			a.log.WithError(err).WithField("key", key).Warn("mirror push failed")
		}
		cancel()
	}
}

// Pull replaces the local record under key with the mirror's copy. It
// reports whether anything was written. Concurrent pulls of the same key
// share one round trip.
func (a *Accessor) Pull(ctx context.Context, key string) (bool, error) {
	if a.port == nil {
		return false, nil
	}
	v, err, _ := a.pulls.Do(key, func() (any, error) {
		data, err := a.port.Pull(ctx, key)
		if errors.Is(err, mirror.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if !json.Valid(data) {
			return false, errors.New("mirror returned malformed data")
		}
		if err := a.store.Write(key, data); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return false, fmt.Errorf("pull %s: %w", key, err)
	}
	return v.(bool), nil
}

// PullAll pulls every synced key. Failures do not stop the remaining keys.
func (a *Accessor) PullAll(ctx context.Context) (int, error) {
	var (
		n    int
		errs []error
	)
	for _, key := range SyncedKeys {
		ok, err := a.Pull(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			n++
		}
	}
	return n, errors.Join(errs...)
}

// Flush waits for in-flight mirror pushes.
func (a *Accessor) Flush() {
	a.pending.Wait()
}

// Close flushes pending pushes and closes the store.
func (a *Accessor) Close() error {
	a.Flush()
	return a.store.Close()
}

// Store exposes the underlying store for components that keep their own
// unversioned records.
func (a *Accessor) Store() Store {
	return a.store
}

func (a *Accessor) Tasks() []model.Task {
	tasks := Load(a, KeyTasks, []model.Task{})
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks
}

func (a *Accessor) SaveTasks(tasks []model.Task) error {
	return a.Save(KeyTasks, tasks)
}

func (a *Accessor) Trash() []model.TrashEntry {
	trash := Load(a, KeyTrash, []model.TrashEntry{})
	if trash == nil {
		trash = []model.TrashEntry{}
	}
	return trash
}

func (a *Accessor) SaveTrash(trash []model.TrashEntry) error {
	return a.Save(KeyTrash, trash)
}

func (a *Accessor) Settings() model.Settings {
	s := Load(a, KeySettings, model.DefaultSettings())
	if !s.SortMode.Valid() {
		s.SortMode = model.SortTime
	}
	return s
}

func (a *Accessor) SaveSettings(s model.Settings) error {
	return a.Save(KeySettings, s)
}

func (a *Accessor) Routines() model.Routines {
	r := Load(a, KeyRoutines, model.Routines{})
	if r == nil {
		r = model.Routines{}
	}
	return r
}

func (a *Accessor) SaveRoutines(r model.Routines) error {
	return a.Save(KeyRoutines, r)
}

func (a *Accessor) History() []model.HistoryEntry {
	return Load(a, KeyHistory, []model.HistoryEntry{})
}

func (a *Accessor) SaveHistory(h []model.HistoryEntry) error {
	return a.Save(KeyHistory, h)
}

func (a *Accessor) FreeTime() model.FreeTimeLog {
	l := Load(a, KeyFreeTime, model.FreeTimeLog{})
	if l == nil {
		l = model.FreeTimeLog{}
	}
	return l
}

func (a *Accessor) SaveFreeTime(l model.FreeTimeLog) error {
	return a.Save(KeyFreeTime, l)
}
