package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/index"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/overdue"
	"github.com/mo-tomi/nowtask5/pkg/storage"
	"github.com/mo-tomi/nowtask5/pkg/util"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// fakeCalendar serves the handful of Calendar API calls the mirror makes.
type fakeCalendar struct {
	mu      sync.Mutex
	events  map[string]*calendar.Event
	nextID  int
	inserts int
	patches int
	deletes int
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const prefix = "/calendars/cal/events"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		if strings.HasSuffix(r.URL.Path, "/users/me/calendarList") {
			writeJSON(w, &calendar.CalendarList{Items: []*calendar.CalendarListEntry{{Id: "cal", Summary: "Tasks"}}})
			return
		}
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, prefix), "/")

	switch {
	case r.Method == http.MethodGet && id == "":
		prop := r.URL.Query().Get("privateExtendedProperty")
		list := &calendar.Events{}
		for _, e := range f.events {
			if e.ExtendedProperties != nil && prop == util.TaskIDProperty+"="+e.ExtendedProperties.Private[util.TaskIDProperty] {
				list.Items = append(list.Items, e)
			}
		}
		writeJSON(w, list)
	case r.Method == http.MethodPost:
		var e calendar.Event
		json.NewDecoder(r.Body).Decode(&e)
		f.nextID++
		e.Id = fmt.Sprintf("evt%d", f.nextID)
		f.events[e.Id] = &e
		f.inserts++
		writeJSON(w, &e)
	case r.Method == http.MethodGet:
		e, ok := f.events[id]
		if !ok {
			http.Error(w, `{"error":{"code":404,"message":"Not Found"}}`, http.StatusNotFound)
			return
		}
		writeJSON(w, e)
	case r.Method == http.MethodPatch:
		e, ok := f.events[id]
		if !ok {
			http.Error(w, `{"error":{"code":404,"message":"Not Found"}}`, http.StatusNotFound)
			return
		}
		var p calendar.Event
		json.NewDecoder(r.Body).Decode(&p)
		if p.Summary != "" {
			e.Summary = p.Summary
		}
		if p.Description != "" {
			e.Description = p.Description
		}
		if p.ColorId != "" {
			e.ColorId = p.ColorId
		}
		if p.Start != nil {
			e.Start, e.End = p.Start, p.End
		}
		f.patches++
		writeJSON(w, e)
	case r.Method == http.MethodDelete:
		if _, ok := f.events[id]; !ok {
			http.Error(w, `{"error":{"code":410,"message":"Gone"}}`, http.StatusGone)
			return
		}
		delete(f.events, id)
		f.deletes++
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

type fixture struct {
	fake   *fakeCalendar
	mirror *CalendarMirror
	srv    *calendar.Service
	store  storage.Store
	clock  *clock.Manual
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := &fakeCalendar{events: map[string]*calendar.Event{}}
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	srv, err := calendar.NewService(context.Background(),
		option.WithEndpoint(ts.URL+"/"),
		option.WithHTTPClient(ts.Client()),
	)
	if err != nil {
		t.Fatalf("calendar.NewService failed: %v", err)
	}

	store := storage.NewMemoryStore()
	idx, err := index.NewEventIndex(store)
	if err != nil {
		t.Fatal(err)
	}
	table, err := overdue.NewTable(store)
	if err != nil {
		t.Fatal(err)
	}
	clk := clock.NewManual(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &fixture{
		fake:   fake,
		mirror: NewCalendarMirror(srv, "cal", idx, table, clk, l),
		srv:    srv,
		store:  store,
		clock:  clk,
	}
}

func tasksRecord(t *testing.T, list []model.Task) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{"version": 1, "data": list})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestPushInsertsThenPatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	list := []model.Task{
		{ID: "a", Title: "Write report", DueDate: &due, StartTime: "10:00"},
		{ID: "b", Title: "Someday"},
	}

	if err := f.mirror.Push(ctx, storage.KeyTasks, tasksRecord(t, list)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if f.fake.inserts != 1 || len(f.fake.events) != 1 {
		t.Fatalf("Expected one inserted event, got inserts=%d events=%d", f.fake.inserts, len(f.fake.events))
	}

	// Unchanged push is a no-op.
	if err := f.mirror.Push(ctx, storage.KeyTasks, tasksRecord(t, list)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if f.fake.inserts != 1 || f.fake.patches != 0 {
		t.Errorf("Expected no calls for unchanged task, got inserts=%d patches=%d", f.fake.inserts, f.fake.patches)
	}

	list[0].IsCompleted = true
	if err := f.mirror.Push(ctx, storage.KeyTasks, tasksRecord(t, list)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if f.fake.patches != 1 {
		t.Fatalf("Expected one patch, got %d", f.fake.patches)
	}
	for _, e := range f.fake.events {
		if e.Summary != "✓ Write report" {
			t.Errorf("Expected completed prefix, got %q", e.Summary)
		}
	}
}

func TestPushFindsEventByPropertyWhenIndexIsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	list := []model.Task{{ID: "a", Title: "Write report", DueDate: &due}}
	if err := f.mirror.Push(ctx, storage.KeyTasks, tasksRecord(t, list)); err != nil {
		t.Fatal(err)
	}

	fresh, _ := index.NewEventIndex(storage.NewMemoryStore())
	m := NewCalendarMirror(f.srv, "cal", fresh, nil, f.clock, nil)
	if err := m.Push(ctx, storage.KeyTasks, tasksRecord(t, list)); err != nil {
		t.Fatal(err)
	}
	if f.fake.inserts != 1 {
		t.Errorf("Expected existing event to be found, got %d inserts", f.fake.inserts)
	}
	if fresh.Get("a") == "" {
		t.Error("Expected index to learn the event id")
	}
}

func TestPushDeletesEventsOfRemovedTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	list := []model.Task{
		{ID: "a", Title: "Keep", DueDate: &due},
		{ID: "b", Title: "Drop", DueDate: &due},
	}
	if err := f.mirror.Push(ctx, storage.KeyTasks, tasksRecord(t, list)); err != nil {
		t.Fatal(err)
	}
	if err := f.mirror.Push(ctx, storage.KeyTasks, tasksRecord(t, list[:1])); err != nil {
		t.Fatal(err)
	}
	if f.fake.deletes != 1 || len(f.fake.events) != 1 {
		t.Errorf("Expected one delete, got deletes=%d events=%d", f.fake.deletes, len(f.fake.events))
	}

	// The index is persisted to the store.
	reloaded, _ := index.NewEventIndex(f.store)
	if reloaded.Get("b") != "" || reloaded.Get("a") == "" {
		t.Errorf("Unexpected persisted index %v", reloaded.Mappings)
	}
}

func TestPushIgnoresOtherKeys(t *testing.T) {
	f := newFixture(t)
	if err := f.mirror.Push(context.Background(), storage.KeySettings, []byte(`{"sortMode":"time"}`)); err != nil {
		t.Fatalf("Expected other keys to be ignored, got %v", err)
	}
	if _, err := f.mirror.Pull(context.Background(), storage.KeyTasks); err == nil {
		t.Error("Expected Pull to report not found")
	}
}

func TestSweepFlagsOverdueEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := time.Date(2024, 6, 10, 17, 0, 0, 0, time.UTC)
	list := []model.Task{{ID: "a", Title: "Ship", DueDate: &due}}
	if err := f.mirror.Push(ctx, storage.KeyTasks, tasksRecord(t, list)); err != nil {
		t.Fatal(err)
	}

	n, err := f.mirror.Sweep(ctx)
	if err != nil || n != 0 {
		t.Fatalf("Expected nothing to sweep yet, got %d, %v", n, err)
	}

	f.clock.Advance(9 * time.Hour)
	n, err = f.mirror.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("Expected one flagged event, got %d", n)
	}
	for _, e := range f.fake.events {
		if e.Summary != "! Ship" {
			t.Errorf("Expected overdue prefix, got %q", e.Summary)
		}
	}
}

func TestFindCalendar(t *testing.T) {
	f := newFixture(t)
	id, err := FindCalendar(context.Background(), f.srv, "Tasks")
	if err != nil || id != "cal" {
		t.Fatalf("Expected cal, got %q, %v", id, err)
	}
	if _, err := FindCalendar(context.Background(), f.srv, "Missing"); err == nil {
		t.Error("Expected missing calendar error")
	}
}
