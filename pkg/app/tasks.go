package app

import (
	"time"

	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/tasks"
)

// QuickAdd creates a task and remembers its title in the entry history.
func (a *App) QuickAdd(d tasks.Draft) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, err := a.repo.Create(d)
	if err != nil {
		return t, err
	}
	if err := a.repo.AddHistory(t.Title, t.StartTime, t.EndTime); err != nil {
		a.log.WithError(err).Warn("could not record history")
	}
	return t, nil
}

func (a *App) Create(d tasks.Draft) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.Create(d)
}

func (a *App) Get(id string) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.Get(id)
}

func (a *App) Tasks() []model.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.List()
}

func (a *App) Update(id string, p tasks.Patch) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.Update(id, p)
}

// Delete moves a task and its subtasks to the trash and closes the editor
// if it showed one of them.
func (a *App) Delete(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.repo.Delete(id); err != nil {
		return err
	}
	if a.state.EditingID != "" {
		if _, err := a.repo.Get(a.state.EditingID); err != nil {
			a.state.EditingID = ""
		}
	}
	return nil
}

func (a *App) ToggleComplete(id string) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.ToggleComplete(id)
}

func (a *App) StartTimer(id string) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.StartTimer(id)
}

func (a *App) StopTimer(id string) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.StopTimer(id)
}

func (a *App) Running() []model.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.Running()
}

// DisplayTime returns the seconds shown on a task's timer.
func (a *App) DisplayTime(id string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.DisplayTime(id)
}

func (a *App) CanHaveSubtask(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.CanHaveSubtask(id)
}

func (a *App) Subtasks(id string) ([]model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.repo.Get(id); err != nil {
		return nil, err
	}
	return a.repo.Subtasks(id), nil
}

func (a *App) SaveSubtasks(parentID string, edits []tasks.SubtaskEdit) ([]model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.SaveSubtasks(parentID, edits)
}

func (a *App) Reorder(ids []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.Reorder(ids)
}

func (a *App) Trash() []model.TrashEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.Trash()
}

func (a *App) Restore(id string) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.Restore(id)
}

func (a *App) PermanentDelete(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.PermanentDelete(id)
}

// CleanupTrash purges entries older than retention. Zero uses the
// configured retention.
func (a *App) CleanupTrash(retention time.Duration) (int, error) {
	if retention <= 0 {
		retention = a.retention
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.CleanupTrash(retention)
}

func (a *App) History() []model.HistoryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.History(tasks.HistoryShownLimit)
}

func (a *App) CreateFromHistory(i int) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.CreateFromHistory(i)
}

func (a *App) Routines() model.Routines {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.Routines()
}

// SetRoutines stores routine settings and creates any routine task now
// due today.
func (a *App) SetRoutines(r model.Routines) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.repo.SetRoutines(r); err != nil {
		return 0, err
	}
	return a.repo.SeedRoutines()
}
