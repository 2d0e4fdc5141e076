package view

import (
	"time"

	"github.com/mo-tomi/nowtask5/pkg/model"
)

// View is everything a front-end needs to draw the task list.
type View struct {
	Reference      string             `json:"reference"`
	Sort           model.SortMode     `json:"sort"`
	Filter         model.Filter       `json:"filter"`
	Buckets        []Bucket           `json:"buckets"`
	Completed      []Row              `json:"completed"`
	CompletedCount int                `json:"completedCount"`
	Trash          []model.TrashEntry `json:"trash"`
}

// Build groups the active tasks, expands each bucket's subtasks and
// collects the completed section.
func Build(all []model.Task, trash []model.TrashEntry, ref, now time.Time, mode model.SortMode, filter model.Filter) View {
	kids := make(map[string][]model.Task)
	for _, t := range all {
		if !t.IsRoot() {
			kids[t.ParentID] = append(kids[t.ParentID], t)
		}
	}

	v := View{
		Reference: ref.Format("2006-01-02"),
		Sort:      mode,
		Filter:    filter,
		Buckets:   Group(Active(all, filter), ref, mode),
		Completed: []Row{},
		Trash:     trash,
	}
	if v.Trash == nil {
		v.Trash = []model.TrashEntry{}
	}

	for i := range v.Buckets {
		var rows []Row
		for _, t := range v.Buckets[i].Tasks {
			rows = expand(rows, t, 0, false, kids, now)
		}
		v.Buckets[i].Rows = rows
	}

	for _, t := range all {
		if !t.IsCompleted || !t.IsRoot() {
			continue
		}
		v.CompletedCount++
		for _, st := range kids[t.ID] {
			if st.IsCompleted {
				v.CompletedCount++
			}
		}
		v.Completed = expand(v.Completed, t, 0, true, kids, now)
	}
	return v
}

// expand appends t and, depth first, the subtasks whose completion state
// matches the section being drawn.
func expand(rows []Row, t model.Task, level int, completed bool, kids map[string][]model.Task, now time.Time) []Row {
	rows = append(rows, Row{Task: t, Level: level, DisplaySeconds: t.DisplaySeconds(now)})
	if level >= model.MaxDepth-1 {
		return rows
	}
	for _, st := range kids[t.ID] {
		if st.IsCompleted == completed {
			rows = expand(rows, st, level+1, completed, kids, now)
		}
	}
	return rows
}
