package tasks

import (
	"fmt"

	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/model"
)

var tutorial = []Draft{
	{Title: "Welcome to nowtask!", Memo: "Manage your tasks here.\nStart by working through this short tutorial."},
	{Title: "Open a task to see its details", Memo: "Select a task to edit its title, memo, due date and subtasks."},
	{Title: "Use the checkbox to complete a task", Memo: "Completed tasks move to the completed section."},
	{Title: "Try setting a due date", Memo: "Tasks past their due date are flagged as overdue."},
	{Title: "Try deleting a task", Memo: "Deleted tasks go to the trash and can be restored for 30 days."},
	{Title: "Create your own task with +", Memo: "Once you are done with the tutorial, add your own tasks!"},
}

// tutorialDueIndex is the tutorial entry that gets a due date a week out.
const tutorialDueIndex = 3

// SeedTutorial adds the tutorial tasks when the task list is empty and
// reports whether it did.
func (r *Repository) SeedTutorial() (bool, error) {
	tasks := r.store.Tasks()
	if len(tasks) > 0 {
		return false, nil
	}
	due := r.clock.Now().AddDate(0, 0, 7)
	seeded := make([]model.Task, 0, len(tutorial))
	for i, d := range tutorial {
		d.IsTutorial = true
		if i == tutorialDueIndex {
			d.DueDate = &due
		}
		t, err := r.build(nil, d)
		if err != nil {
			return false, err
		}
		seeded = append(seeded, t)
	}
	if err := r.store.SaveTasks(seeded); err != nil {
		return false, err
	}
	r.log.Info("seeded tutorial tasks")
	return true, nil
}

func (r *Repository) Routines() model.Routines {
	return r.store.Routines()
}

// SetRoutines validates and stores the routine settings.
func (r *Repository) SetRoutines(routines model.Routines) error {
	for typ, rt := range routines {
		if !typ.Valid() {
			return fmt.Errorf("%w: unknown routine %q", ErrInvalid, typ)
		}
		if rt.Duration < 0 || rt.Duration > 1440 {
			return fmt.Errorf("%w: routine %s duration %d out of range", ErrInvalid, typ, rt.Duration)
		}
	}
	return r.store.SaveRoutines(routines)
}

// SeedRoutines creates today's task for every enabled routine that has not
// produced one today. It returns the number created.
func (r *Repository) SeedRoutines() (int, error) {
	routines := r.store.Routines()
	tasks := r.store.Tasks()
	today := clock.Midnight(r.clock.Now())

	var created []model.Task
	for _, typ := range model.RoutineTypes {
		rt, ok := routines[typ]
		if !ok || !rt.Enabled {
			continue
		}
		exists := false
		for _, t := range tasks {
			if t.IsRoutine && t.RoutineType == typ && clock.Midnight(t.CreatedAt.In(today.Location())).Equal(today) {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		dur := rt.Duration
		t, err := r.build(tasks, Draft{
			Title:       typ.Title(),
			Duration:    &dur,
			IsRoutine:   true,
			RoutineType: typ,
		})
		if err != nil {
			return 0, err
		}
		created = append([]model.Task{t}, created...)
	}
	if len(created) == 0 {
		return 0, nil
	}
	if err := r.store.SaveTasks(append(created, tasks...)); err != nil {
		return 0, err
	}
	r.log.WithField("count", len(created)).Info("seeded routine tasks")
	return len(created), nil
}
