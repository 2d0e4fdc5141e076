package view

import (
	"testing"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/model"
)

var ref = time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)

func at(days int, hour int) *time.Time {
	t := time.Date(2024, 6, 10+days, hour, 0, 0, 0, time.UTC)
	return &t
}

func keys(buckets []Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Key
	}
	return out
}

func TestGroupBucketOrder(t *testing.T) {
	tasks := []model.Task{
		{ID: "none", Title: "someday"},
		{ID: "future9", Title: "f9", DueDate: at(9, 8)},
		{ID: "today", Title: "t", DueDate: at(0, 23)},
		{ID: "overdue3", Title: "o3", DueDate: at(-3, 10)},
		{ID: "tomorrow", Title: "tm", DueDate: at(1, 0)},
		{ID: "future2", Title: "f2", DueDate: at(2, 12)},
		{ID: "yesterday", Title: "y", DueDate: at(-1, 23)},
		{ID: "overdue40", Title: "o40", DueDate: at(-40, 10)},
	}

	buckets := Group(tasks, ref, model.SortTime)
	want := []string{"overdue_19844", "overdue_19881", KeyYesterday, KeyToday, KeyTomorrow, "future_19886", "future_19893", KeyNoDate}
	got := keys(buckets)
	if len(got) != len(want) {
		t.Fatalf("Expected %d buckets, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bucket %d: expected %s, got %s (all: %v)", i, want[i], got[i], got)
		}
	}

	if buckets[0].Label != "May 1 (Wed) (overdue)" {
		t.Errorf("Unexpected overdue label %q", buckets[0].Label)
	}
	if buckets[3].Label != "Today" || buckets[3].Date != "2024-06-10" {
		t.Errorf("Unexpected today bucket %+v", buckets[3])
	}
	if last := buckets[len(buckets)-1]; last.Date != "" || last.Label != "No due date" {
		t.Errorf("Unexpected no-date bucket %+v", last)
	}
}

func TestGroupTodayMembership(t *testing.T) {
	tasks := []model.Task{
		{ID: "midnight", Title: "a", DueDate: at(0, 0)},
		{ID: "late", Title: "b", DueDate: &[]time.Time{time.Date(2024, 6, 10, 23, 59, 59, 0, time.UTC)}[0]},
		{ID: "next", Title: "c", DueDate: at(1, 0)},
	}
	buckets := Group(tasks, ref, model.SortTime)
	if buckets[0].Key != KeyToday || len(buckets[0].Tasks) != 2 {
		t.Fatalf("Expected both same-day tasks in today, got %+v", buckets)
	}
	seen := map[string]int{}
	for _, b := range buckets {
		for _, task := range b.Tasks {
			seen[task.ID]++
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("Task %s appears in %d buckets", id, n)
		}
	}
}

func TestSortTime(t *testing.T) {
	tasks := []model.Task{
		{ID: "x"},
		{ID: "b", DueDate: at(0, 14)},
		{ID: "y"},
		{ID: "a", DueDate: at(0, 9)},
		{ID: "z"},
		{ID: "c", DueDate: at(0, 14)},
		{ID: "d", DueDate: at(3, 8)},
	}
	SortTasks(tasks, model.SortTime)

	want := []string{"a", "b", "c", "d", "x", "y", "z"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("Position %d: expected %s, got %s (%v)", i, id, tasks[i].ID, keysOf(tasks))
		}
	}
}

func keysOf(tasks []model.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func TestSortCreatedAndPriority(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "old", CreatedAt: base, Priority: model.PriorityHigh},
		{ID: "new", CreatedAt: base.Add(time.Hour), Priority: model.PriorityLow},
		{ID: "mid", CreatedAt: base.Add(time.Minute), Urgent: true},
		{ID: "unset", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "medium", CreatedAt: base.Add(3 * time.Minute), Priority: model.PriorityMedium},
	}

	created := append([]model.Task(nil), tasks...)
	SortTasks(created, model.SortCreated)
	if created[0].ID != "new" || created[len(created)-1].ID != "old" {
		t.Errorf("Expected newest first, got %s ... %s", created[0].ID, created[len(created)-1].ID)
	}

	byPriority := append([]model.Task(nil), tasks...)
	SortTasks(byPriority, model.SortPriority)
	want := []string{"mid", "old", "medium", "new", "unset"}
	for i, id := range want {
		if byPriority[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, byPriority[i].ID)
		}
	}
}

func TestActiveFilter(t *testing.T) {
	tasks := []model.Task{
		{ID: "urgent", Urgent: true},
		{ID: "high", Priority: model.PriorityHigh},
		{ID: "done", IsCompleted: true, Urgent: true},
		{ID: "child", ParentID: "urgent", Urgent: true},
		{ID: "plain"},
	}
	if got := Active(tasks, model.FilterNone); len(got) != 3 {
		t.Errorf("Expected 3 active roots, got %d", len(got))
	}
	if got := Active(tasks, model.FilterUrgent); len(got) != 1 || got[0].ID != "urgent" {
		t.Errorf("Unexpected urgent filter result %+v", got)
	}
	if got := Active(tasks, model.FilterHighPriority); len(got) != 1 || got[0].ID != "high" {
		t.Errorf("Unexpected high-priority filter result %+v", got)
	}
}

func TestBuildRowsAndCompleted(t *testing.T) {
	tasks := []model.Task{
		{ID: "root", Title: "Project", DueDate: at(0, 9)},
		{ID: "sub", Title: "Step 1", ParentID: "root"},
		{ID: "subdone", Title: "Step 0", ParentID: "root", IsCompleted: true},
		{ID: "subsub", Title: "Detail", ParentID: "sub"},
		{ID: "doneroot", Title: "Shipped", IsCompleted: true},
		{ID: "donechild", Title: "Tested", ParentID: "doneroot", IsCompleted: true},
		{ID: "openchild", Title: "Retro", ParentID: "doneroot"},
	}
	v := Build(tasks, nil, ref, ref, model.SortTime, model.FilterNone)

	if len(v.Buckets) != 1 {
		t.Fatalf("Expected one bucket, got %d", len(v.Buckets))
	}
	rows := v.Buckets[0].Rows
	if len(rows) != 3 || rows[0].Task.ID != "root" || rows[1].Task.ID != "sub" || rows[1].Level != 1 || rows[2].Task.ID != "subsub" || rows[2].Level != 2 {
		t.Errorf("Unexpected active rows %+v", rows)
	}

	if v.CompletedCount != 2 {
		t.Errorf("Expected 2 completed, got %d", v.CompletedCount)
	}
	if len(v.Completed) != 2 || v.Completed[1].Task.ID != "donechild" {
		t.Errorf("Unexpected completed rows %+v", v.Completed)
	}
	if v.Trash == nil {
		t.Error("Expected non-nil trash slice")
	}
}
