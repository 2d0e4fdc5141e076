package tasks

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/storage"
	"github.com/sirupsen/logrus"
)

func newTestRepo(t *testing.T) (*Repository, *clock.Manual) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	clk := clock.NewManual(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))
	acc := storage.NewAccessor(storage.NewMemoryStore(), nil, logger)
	return NewRepository(acc, clk, logger), clk
}

func mustCreate(t *testing.T, r *Repository, d Draft) model.Task {
	t.Helper()
	task, err := r.Create(d)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", d.Title, err)
	}
	return task
}

func TestCreate(t *testing.T) {
	r, _ := newTestRepo(t)

	first := mustCreate(t, r, Draft{Title: "  Buy milk  ", Memo: " 2 litres "})
	second := mustCreate(t, r, Draft{Title: "Call mom"})

	if first.Title != "Buy milk" || first.Memo != "2 litres" {
		t.Errorf("Expected trimmed fields, got %q / %q", first.Title, first.Memo)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Errorf("Expected unique ids, got %q and %q", first.ID, second.ID)
	}
	if !first.CreatedAt.Equal(first.UpdatedAt) {
		t.Errorf("Expected createdAt == updatedAt on creation")
	}

	list := r.List()
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("Expected newest task first, got %+v", list)
	}
}

func TestCreateValidation(t *testing.T) {
	r, _ := newTestRepo(t)

	if _, err := r.Create(Draft{Title: "   "}); !errors.Is(err, ErrEmptyTitle) || !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrEmptyTitle, got %v", err)
	}
	if _, err := r.Create(Draft{Title: "x", Priority: "urgent"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected invalid priority error, got %v", err)
	}
	if _, err := r.Create(Draft{Title: "x", StartTime: "25:00"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected invalid start time error, got %v", err)
	}
	bad := 2000
	if _, err := r.Create(Draft{Title: "x", Duration: &bad}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected invalid duration error, got %v", err)
	}
	if _, err := r.Create(Draft{Title: "x", ParentID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected missing parent error, got %v", err)
	}
	if len(r.List()) != 0 {
		t.Errorf("Expected failed creates to leave no tasks")
	}
}

func TestUpdate(t *testing.T) {
	r, clk := newTestRepo(t)
	task := mustCreate(t, r, Draft{Title: "Draft report"})

	clk.Advance(time.Minute)
	title := "Final report"
	due := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	urgent := true
	updated, err := r.Update(task.ID, Patch{Title: &title, DueDate: &due, Urgent: &urgent})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Final report" || !updated.Urgent || !updated.DueDate.Equal(due) {
		t.Errorf("Patch not applied: %+v", updated)
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) {
		t.Errorf("Expected updatedAt to advance")
	}

	cleared, err := r.Update(task.ID, Patch{ClearDueDate: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if cleared.DueDate != nil || cleared.Title != "Final report" {
		t.Errorf("Expected only due date cleared, got %+v", cleared)
	}

	empty := " "
	if _, err := r.Update(task.ID, Patch{Title: &empty}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Expected ErrEmptyTitle, got %v", err)
	}
	if got, _ := r.Get(task.ID); got.Title != "Final report" {
		t.Errorf("Expected rejected update to leave task untouched, got %q", got.Title)
	}

	if _, err := r.Update("nope", Patch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHierarchyDepth(t *testing.T) {
	r, _ := newTestRepo(t)

	parent := mustCreate(t, r, Draft{Title: "level 0"})
	ids := []string{parent.ID}
	for i := 1; i < model.MaxDepth; i++ {
		child := mustCreate(t, r, Draft{Title: "child", ParentID: ids[len(ids)-1]})
		ids = append(ids, child.ID)
	}

	for depth, id := range ids {
		if got := r.Level(id); got != depth {
			t.Errorf("Level(%d) = %d", depth, got)
		}
		want := depth < model.MaxDepth-1
		if got := r.CanHaveSubtask(id); got != want {
			t.Errorf("CanHaveSubtask at depth %d = %v, want %v", depth, got, want)
		}
	}

	if _, err := r.Create(Draft{Title: "too deep", ParentID: ids[len(ids)-1]}); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("Expected ErrMaxDepth, got %v", err)
	}
	if subs := r.Subtasks(parent.ID); len(subs) != 1 || subs[0].ID != ids[1] {
		t.Errorf("Unexpected subtasks of root: %+v", subs)
	}
}

func TestToggleCompleteStopsTimer(t *testing.T) {
	r, clk := newTestRepo(t)
	task := mustCreate(t, r, Draft{Title: "Focus block"})

	if _, err := r.StartTimer(task.ID); err != nil {
		t.Fatalf("StartTimer failed: %v", err)
	}
	clk.Advance(90*time.Second + 500*time.Millisecond)

	if secs, _ := r.DisplayTime(task.ID); secs != 90 {
		t.Errorf("Expected 90 displayed seconds, got %d", secs)
	}

	done, err := r.ToggleComplete(task.ID)
	if err != nil {
		t.Fatalf("ToggleComplete failed: %v", err)
	}
	if !done.IsCompleted || done.IsTimerRunning || done.TimerStartTime != nil {
		t.Errorf("Expected completed task with stopped timer, got %+v", done)
	}
	if done.TotalTime != 90 {
		t.Errorf("Expected totalTime 90, got %d", done.TotalTime)
	}

	undone, _ := r.ToggleComplete(task.ID)
	if undone.IsCompleted {
		t.Error("Expected second toggle to reopen the task")
	}
}

func TestTimerIdempotent(t *testing.T) {
	r, clk := newTestRepo(t)
	task := mustCreate(t, r, Draft{Title: "Read"})

	started, _ := r.StartTimer(task.ID)
	clk.Advance(30 * time.Second)
	again, _ := r.StartTimer(task.ID)
	if !again.TimerStartTime.Equal(*started.TimerStartTime) {
		t.Error("Expected second start to keep the original start time")
	}
	if len(r.Running()) != 1 {
		t.Errorf("Expected one running task")
	}

	stopped, _ := r.StopTimer(task.ID)
	clk.Advance(30 * time.Second)
	stoppedAgain, _ := r.StopTimer(task.ID)
	if stopped.TotalTime != 30 || stoppedAgain.TotalTime != 30 {
		t.Errorf("Expected 30s recorded once, got %d and %d", stopped.TotalTime, stoppedAgain.TotalTime)
	}
	if _, err := r.StartTimer("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReorder(t *testing.T) {
	r, _ := newTestRepo(t)
	a := mustCreate(t, r, Draft{Title: "a"})
	b := mustCreate(t, r, Draft{Title: "b"})

	if err := r.Reorder([]string{a.ID, b.ID}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	gotA, _ := r.Get(a.ID)
	gotB, _ := r.Get(b.ID)
	if gotA.CustomOrder == nil || *gotA.CustomOrder != 0 || gotB.CustomOrder == nil || *gotB.CustomOrder != 1 {
		t.Errorf("Unexpected custom order a=%v b=%v", gotA.CustomOrder, gotB.CustomOrder)
	}
	if err := r.Reorder([]string{b.ID, "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if gotB, _ = r.Get(b.ID); *gotB.CustomOrder != 1 {
		t.Error("Expected failed reorder to change nothing")
	}
}

func TestSaveSubtasks(t *testing.T) {
	r, _ := newTestRepo(t)
	parent := mustCreate(t, r, Draft{Title: "Move house"})
	keep := mustCreate(t, r, Draft{Title: "Pack books", ParentID: parent.ID})
	drop := mustCreate(t, r, Draft{Title: "Sell sofa", ParentID: parent.ID})
	grandchild := mustCreate(t, r, Draft{Title: "Take photos", ParentID: drop.ID})

	subs, err := r.SaveSubtasks(parent.ID, []SubtaskEdit{
		{ID: keep.ID, Title: "Pack all books"},
		{Title: "Book movers"},
		{Title: "   "},
	})
	if err != nil {
		t.Fatalf("SaveSubtasks failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("Expected 2 subtasks, got %+v", subs)
	}
	titles := map[string]bool{}
	for _, s := range subs {
		titles[s.Title] = true
	}
	if !titles["Pack all books"] || !titles["Book movers"] {
		t.Errorf("Unexpected subtask titles %v", titles)
	}

	trash := r.Trash()
	trashed := map[string]bool{}
	for _, e := range trash {
		trashed[e.ID] = true
	}
	if !trashed[drop.ID] || !trashed[grandchild.ID] {
		t.Errorf("Expected removed subtask and its child in trash, got %+v", trash)
	}

	if _, err := r.SaveSubtasks("missing", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown parent, got %v", err)
	}
}
