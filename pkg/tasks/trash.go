package tasks

import (
	"time"

	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/sirupsen/logrus"
)

// DefaultTrashRetention is how long deleted tasks stay restorable.
const DefaultTrashRetention = 30 * 24 * time.Hour

// Delete moves the task and everything below it to the front of the trash.
// Entries are stored unchanged, running timers included.
func (r *Repository) Delete(id string) error {
	tasks := r.store.Tasks()
	if indexOf(tasks, id) < 0 {
		return notFound(id)
	}

	doomed := map[string]bool{id: true}
	for _, d := range descendants(tasks, id) {
		doomed[d] = true
	}

	now := r.clock.Now()
	var moved []model.TrashEntry
	kept := tasks[:0:0]
	for _, t := range tasks {
		if doomed[t.ID] {
			moved = append(moved, model.TrashEntry{Task: t, DeletedAt: now})
			continue
		}
		kept = append(kept, t)
	}

	// Trash first: a failed second write duplicates a task rather than
	// losing it.
	trash := append(moved, r.store.Trash()...)
	if err := r.store.SaveTrash(trash); err != nil {
		return err
	}
	if err := r.store.SaveTasks(kept); err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{"id": id, "count": len(moved)}).Debug("moved to trash")
	return nil
}

// Restore moves a trash entry back to the front of the task list together
// with any of its trashed descendants. A subtask whose parent no longer
// exists comes back as a root.
func (r *Repository) Restore(id string) (model.Task, error) {
	trash := r.store.Trash()
	found := false
	for _, e := range trash {
		if e.ID == id {
			found = true
			break
		}
	}
	if !found {
		return model.Task{}, notFound(id)
	}

	restoring := map[string]bool{id: true}
	for grew := true; grew; {
		grew = false
		for _, e := range trash {
			if !restoring[e.ID] && e.ParentID != "" && restoring[e.ParentID] {
				restoring[e.ID] = true
				grew = true
			}
		}
	}

	tasks := r.store.Tasks()
	var back []model.Task
	kept := trash[:0:0]
	for _, e := range trash {
		if restoring[e.ID] {
			back = append(back, e.Task)
			continue
		}
		kept = append(kept, e)
	}

	var restored model.Task
	for i := range back {
		if back[i].ID == id {
			if back[i].ParentID != "" && indexOf(tasks, back[i].ParentID) < 0 {
				back[i].ParentID = ""
			}
			restored = back[i]
		}
	}

	if err := r.store.SaveTasks(append(back, tasks...)); err != nil {
		return model.Task{}, err
	}
	if err := r.store.SaveTrash(kept); err != nil {
		return model.Task{}, err
	}
	return restored, nil
}

// PermanentDelete removes an entry from the trash for good.
func (r *Repository) PermanentDelete(id string) error {
	trash := r.store.Trash()
	kept := trash[:0:0]
	for _, e := range trash {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(trash) {
		return notFound(id)
	}
	return r.store.SaveTrash(kept)
}

// Trash lists deleted tasks, most recent first.
func (r *Repository) Trash() []model.TrashEntry {
	return r.store.Trash()
}

// CleanupTrash purges entries deleted more than retention ago and returns
// how many were removed.
func (r *Repository) CleanupTrash(retention time.Duration) (int, error) {
	if retention <= 0 {
		retention = DefaultTrashRetention
	}
	cutoff := r.clock.Now().Add(-retention)
	trash := r.store.Trash()
	kept := trash[:0:0]
	for _, e := range trash {
		if e.DeletedAt.After(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := len(trash) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := r.store.SaveTrash(kept); err != nil {
		return 0, err
	}
	r.log.WithField("removed", removed).Info("purged expired trash")
	return removed, nil
}
