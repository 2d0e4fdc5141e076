package tasks

import (
	"strings"

	"github.com/mo-tomi/nowtask5/pkg/model"
)

func level(tasks []model.Task, id string) int {
	byID := make(map[string]*model.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}
	lvl := 0
	cur := byID[id]
	for cur != nil && cur.ParentID != "" && lvl < model.MaxDepth {
		lvl++
		cur = byID[cur.ParentID]
	}
	return lvl
}

func canHaveSubtask(tasks []model.Task, id string) bool {
	return level(tasks, id) < model.MaxDepth-1
}

func children(tasks []model.Task, parentID string) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.ParentID == parentID {
			out = append(out, t)
		}
	}
	return out
}

// descendants returns the ids of every task below id, depth first.
func descendants(tasks []model.Task, id string) []string {
	var out []string
	for _, c := range children(tasks, id) {
		out = append(out, c.ID)
		out = append(out, descendants(tasks, c.ID)...)
	}
	return out
}

// Level is the depth of the task: 0 for roots.
func (r *Repository) Level(id string) int {
	return level(r.store.Tasks(), id)
}

// CanHaveSubtask reports whether a child may be added below the task.
func (r *Repository) CanHaveSubtask(id string) bool {
	return canHaveSubtask(r.store.Tasks(), id)
}

// Subtasks returns the direct children of a task in stored order.
func (r *Repository) Subtasks(id string) []model.Task {
	return children(r.store.Tasks(), id)
}

// SubtaskEdit is one line of an edited subtask list. An empty ID adds a new
// subtask.
type SubtaskEdit struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SaveSubtasks reconciles the children of parentID with the edited list:
// children missing from the list go to the trash, listed ones are renamed
// and new lines become subtasks. Blank lines are skipped.
func (r *Repository) SaveSubtasks(parentID string, edits []SubtaskEdit) ([]model.Task, error) {
	if _, err := r.Get(parentID); err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(edits))
	for _, e := range edits {
		if e.ID != "" {
			keep[e.ID] = true
		}
	}
	for _, c := range r.Subtasks(parentID) {
		if !keep[c.ID] {
			if err := r.Delete(c.ID); err != nil {
				return nil, err
			}
		}
	}

	for _, e := range edits {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			continue
		}
		if e.ID == "" {
			if _, err := r.Create(Draft{Title: title, ParentID: parentID}); err != nil {
				return nil, err
			}
			continue
		}
		existing, err := r.Get(e.ID)
		if err != nil {
			return nil, err
		}
		if existing.ParentID != parentID {
			return nil, notFound(e.ID)
		}
		if existing.Title != title {
			if _, err := r.Update(e.ID, Patch{Title: &title}); err != nil {
				return nil, err
			}
		}
	}
	return r.Subtasks(parentID), nil
}
