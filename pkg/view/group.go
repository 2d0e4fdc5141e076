package view

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/model"
)

const (
	KeyToday     = "today"
	KeyTomorrow  = "tomorrow"
	KeyYesterday = "yesterday"
	KeyNoDate    = "no_date"
)

// Row is a task placed in the list with its nesting level.
type Row struct {
	Task           model.Task `json:"task"`
	Level          int        `json:"level"`
	DisplaySeconds int64      `json:"displaySeconds"`
}

// Bucket is one due-date section of the active list.
type Bucket struct {
	Key   string       `json:"key"`
	Label string       `json:"label"`
	Date  string       `json:"date"`
	Tasks []model.Task `json:"tasks"`
	Rows  []Row        `json:"rows"`

	// order is the day offset from the reference day; no-date sorts last.
	order int
}

// Active selects non-completed root tasks matching the filter.
func Active(tasks []model.Task, filter model.Filter) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.IsCompleted || !t.IsRoot() {
			continue
		}
		switch filter {
		case model.FilterUrgent:
			if !t.Urgent {
				continue
			}
		case model.FilterHighPriority:
			if t.Priority != model.PriorityHigh {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// Group partitions tasks into due-date buckets relative to ref's calendar
// day: overdue days ascending, yesterday, today, tomorrow, future days
// ascending, then no-date. Tasks inside each bucket are ordered by mode.
func Group(tasks []model.Task, ref time.Time, mode model.SortMode) []Bucket {
	today := clock.Midnight(ref)
	byKey := make(map[string]*Bucket)
	var buckets []*Bucket

	for _, t := range tasks {
		key, label, date, order := classify(t, today)
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Key: key, Label: label, Date: date, Tasks: []model.Task{}, order: order}
			byKey[key] = b
			buckets = append(buckets, b)
		}
		b.Tasks = append(b.Tasks, t)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].order < buckets[j].order
	})

	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		SortTasks(b.Tasks, mode)
		out = append(out, *b)
	}
	return out
}

func classify(t model.Task, today time.Time) (key, label, date string, order int) {
	if !t.HasDueDate() {
		return KeyNoDate, "No due date", "", math.MaxInt
	}
	due := t.DueDate.In(today.Location())
	offset := clock.DayOffset(today, due)
	date = clock.ISODate(due)
	switch {
	case offset == 0:
		return KeyToday, "Today", date, offset
	case offset == 1:
		return KeyTomorrow, "Tomorrow", date, offset
	case offset == -1:
		return KeyYesterday, "Yesterday", date, offset
	case offset < -1:
		return fmt.Sprintf("overdue_%d", clock.EpochDay(due)), due.Format("Jan 2 (Mon)") + " (overdue)", date, offset
	default:
		return fmt.Sprintf("future_%d", clock.EpochDay(due)), due.Format("Jan 2 (Mon)"), date, offset
	}
}

// SortTasks orders tasks in place. Ties keep their input order.
func SortTasks(tasks []model.Task, mode model.SortMode) {
	switch mode {
	case model.SortCreated:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	case model.SortPriority:
		sort.SliceStable(tasks, func(i, j int) bool {
			a, b := tasks[i], tasks[j]
			if a.Urgent != b.Urgent {
				return a.Urgent
			}
			return a.Priority.Rank() < b.Priority.Rank()
		})
	default:
		sort.SliceStable(tasks, func(i, j int) bool {
			a, b := tasks[i], tasks[j]
			if !a.HasDueDate() || !b.HasDueDate() {
				return a.HasDueDate() && !b.HasDueDate()
			}
			return a.DueDate.Before(*b.DueDate)
		})
	}
}
