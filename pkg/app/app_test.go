package app

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/storage"
	"github.com/mo-tomi/nowtask5/pkg/tasks"
	"github.com/sirupsen/logrus"
)

var start = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

type countingSweeper struct{ n atomic.Int32 }

func (s *countingSweeper) Sweep(context.Context) (int, error) {
	s.n.Add(1)
	return 0, nil
}

func newTestApp(t *testing.T) (*App, *storage.Accessor, *clock.Manual) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	clk := clock.NewManual(start)
	acc := storage.NewAccessor(storage.NewMemoryStore(), nil, logger)
	return New(acc, Options{Clock: clk, Logger: logger}), acc, clk
}

func TestStartup(t *testing.T) {
	a, acc, _ := newTestApp(t)
	if err := acc.SaveRoutines(model.Routines{model.RoutineBreakfast: {Enabled: true, Duration: 20}}); err != nil {
		t.Fatal(err)
	}
	old := model.TrashEntry{Task: model.Task{ID: "old", Title: "Old"}, DeletedAt: start.AddDate(0, 0, -40)}
	fresh := model.TrashEntry{Task: model.Task{ID: "fresh", Title: "Fresh"}, DeletedAt: start.AddDate(0, 0, -3)}
	if err := acc.SaveTrash([]model.TrashEntry{old, fresh}); err != nil {
		t.Fatal(err)
	}

	rep, err := a.Startup(context.Background())
	if err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	if !rep.Tutorial || rep.Purged != 1 || rep.Routines != 1 {
		t.Errorf("Unexpected report %+v", rep)
	}
	if got := len(a.Tasks()); got != 7 {
		t.Errorf("Expected 6 tutorial tasks and 1 routine, got %d", got)
	}
	if trash := a.Trash(); len(trash) != 1 || trash[0].ID != "fresh" {
		t.Errorf("Unexpected trash %+v", trash)
	}

	// A second startup on the same day seeds nothing.
	rep, err = a.Startup(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Tutorial || rep.Routines != 0 {
		t.Errorf("Expected idempotent startup, got %+v", rep)
	}
}

func TestSortPersistsAndFilterValidates(t *testing.T) {
	a, acc, clk := newTestApp(t)
	if err := a.SetSort(model.SortPriority); err != nil {
		t.Fatalf("SetSort failed: %v", err)
	}
	if err := a.SetSort("alphabetical"); !errors.Is(err, tasks.ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
	reopened := New(acc, Options{Clock: clk})
	if reopened.State().Sort != model.SortPriority {
		t.Errorf("Expected persisted sort, got %q", reopened.State().Sort)
	}

	if err := a.SetFilter(model.FilterUrgent); err != nil {
		t.Fatal(err)
	}
	if err := a.SetFilter("starred"); !errors.Is(err, tasks.ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
	if a.State().Filter != model.FilterUrgent {
		t.Errorf("Expected urgent filter to stick, got %q", a.State().Filter)
	}
}

func TestEditingClearedOnDelete(t *testing.T) {
	a, _, _ := newTestApp(t)
	if err := a.SetEditing("missing"); !errors.Is(err, tasks.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	parent, _ := a.Create(tasks.Draft{Title: "Parent"})
	child, _ := a.Create(tasks.Draft{Title: "Child", ParentID: parent.ID})
	if err := a.SetEditing(child.ID); err != nil {
		t.Fatal(err)
	}
	if err := a.Delete(parent.ID); err != nil {
		t.Fatal(err)
	}
	if a.State().EditingID != "" {
		t.Errorf("Expected editor to close, got %q", a.State().EditingID)
	}
}

func TestQuickAddRecordsHistory(t *testing.T) {
	a, _, _ := newTestApp(t)
	if _, err := a.QuickAdd(tasks.Draft{Title: "Stretch", StartTime: "07:00", EndTime: "07:15"}); err != nil {
		t.Fatal(err)
	}
	if _, err := a.QuickAdd(tasks.Draft{Title: ""}); !errors.Is(err, tasks.ErrInvalid) {
		t.Errorf("Expected ErrInvalid for empty title, got %v", err)
	}
	h := a.History()
	if len(h) != 1 || h[0].Title != "Stretch" || h[0].StartTime != "07:00" {
		t.Fatalf("Unexpected history %+v", h)
	}
	again, err := a.CreateFromHistory(0)
	if err != nil || again.Title != "Stretch" {
		t.Errorf("CreateFromHistory = %+v, %v", again, err)
	}
}

func TestReferenceDrivesViewAndGauge(t *testing.T) {
	a, _, _ := newTestApp(t)
	tomorrow := start.AddDate(0, 0, 1).Add(5 * time.Hour)
	a.SetReference(&tomorrow)
	ref := a.State().Reference
	if ref == nil || !ref.Equal(time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Expected reference at midnight, got %v", ref)
	}
	if v := a.View(); v.Reference != "2024-06-11" {
		t.Errorf("Expected view anchored to 2024-06-11, got %q", v.Reference)
	}
	g := a.Gauge(nil)
	if g.IsToday || g.CurrentMinutes != 0 || g.FreeMinutes != 1440 {
		t.Errorf("Expected a fresh day gauge, got %+v", g)
	}

	a.SetReference(nil)
	if g := a.Gauge(nil); !g.IsToday || g.FreeMinutes != 900 {
		t.Errorf("Expected today's gauge with 900 free minutes, got %+v", g)
	}
	if w := a.Week(nil, 0); len(w) != DefaultWeekDays {
		t.Errorf("Expected %d days, got %d", DefaultWeekDays, len(w))
	}
	if w := a.Week(nil, 100); len(w) != MaxWeekDays {
		t.Errorf("Expected cap at %d days, got %d", MaxWeekDays, len(w))
	}
}

func TestRecordFreeTime(t *testing.T) {
	a, acc, _ := newTestApp(t)
	if _, err := a.RecordFreeTime(); err != nil {
		t.Fatal(err)
	}
	if got := acc.FreeTime()["2024-06-10"]; got != 900 {
		t.Errorf("Expected 900 free minutes recorded, got %d", got)
	}
	if rep := a.Analytics(); rep.FreeTime.Today != 900 {
		t.Errorf("Unexpected analytics %+v", rep.FreeTime)
	}
}

func TestRunTicks(t *testing.T) {
	a, _, _ := newTestApp(t)
	sweeper := &countingSweeper{}
	a.sweeper = sweeper
	a.TimerInterval = 2 * time.Millisecond
	a.GaugeInterval = 5 * time.Millisecond

	task, _ := a.Create(tasks.Draft{Title: "Focus"})
	if _, err := a.StartTimer(task.ID); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	seen := make(chan TickKind, 64)
	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx, func(tk Tick) {
			select {
			case seen <- tk.Kind:
			default:
			}
		})
	}()

	var timer, gauge bool
	deadline := time.After(2 * time.Second)
	for !timer || !gauge {
		select {
		case k := <-seen:
			if k == TickTimer {
				timer = true
			} else {
				gauge = true
			}
		case <-deadline:
			t.Fatalf("Timed out: timer=%v gauge=%v", timer, gauge)
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
	if sweeper.n.Load() == 0 {
		t.Error("Expected the mirror to be swept")
	}
}

func TestDisplayTimeAndSubtaskDepth(t *testing.T) {
	a, _, clk := newTestApp(t)
	root, err := a.Create(tasks.Draft{Title: "Project"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.StartTimer(root.ID); err != nil {
		t.Fatal(err)
	}
	clk.Advance(42 * time.Second)
	if secs, err := a.DisplayTime(root.ID); err != nil || secs != 42 {
		t.Errorf("DisplayTime = %d, %v", secs, err)
	}
	if _, err := a.DisplayTime("missing"); !errors.Is(err, tasks.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	id := root.ID
	for i := 1; i < model.MaxDepth; i++ {
		if !a.CanHaveSubtask(id) {
			t.Fatalf("Expected depth %d to accept a subtask", i-1)
		}
		child, err := a.Create(tasks.Draft{Title: "Step", ParentID: id})
		if err != nil {
			t.Fatal(err)
		}
		id = child.ID
	}
	if a.CanHaveSubtask(id) {
		t.Error("Expected the deepest task to refuse subtasks")
	}
}
