package tasks

import (
	"time"

	"github.com/mo-tomi/nowtask5/pkg/model"
)

func (r *Repository) stop(t *model.Task) {
	if t.TimerStartTime != nil {
		if elapsed := r.clock.Now().Sub(*t.TimerStartTime); elapsed > 0 {
			t.TotalTime += int64(elapsed / time.Second)
		}
	}
	t.IsTimerRunning = false
	t.TimerStartTime = nil
}

// StartTimer starts timing a task. Starting a running timer is a no-op.
func (r *Repository) StartTimer(id string) (model.Task, error) {
	t, err := r.Get(id)
	if err != nil || t.IsTimerRunning {
		return t, err
	}
	return r.mutate(id, func(t *model.Task) error {
		now := r.clock.Now()
		t.IsTimerRunning = true
		t.TimerStartTime = &now
		return nil
	})
}

// StopTimer folds the running interval into totalTime. Stopping an idle
// timer is a no-op.
func (r *Repository) StopTimer(id string) (model.Task, error) {
	t, err := r.Get(id)
	if err != nil || !t.IsTimerRunning {
		return t, err
	}
	return r.mutate(id, func(t *model.Task) error {
		r.stop(t)
		return nil
	})
}

// DisplayTime returns the seconds to show for a task's timer.
func (r *Repository) DisplayTime(id string) (int64, error) {
	t, err := r.Get(id)
	if err != nil {
		return 0, err
	}
	return t.DisplaySeconds(r.clock.Now()), nil
}

// Running lists tasks whose timer is running.
func (r *Repository) Running() []model.Task {
	var out []model.Task
	for _, t := range r.store.Tasks() {
		if t.IsTimerRunning {
			out = append(out, t)
		}
	}
	return out
}
