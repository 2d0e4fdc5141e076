package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/storage"
	"github.com/sirupsen/logrus"
)

// Repository is the single write path for tasks, trash, routines and
// entry history. It reads the whole collection on every call and writes it
// back whole; callers serialize access.
type Repository struct {
	store    *storage.Accessor
	clock    clock.Clock
	log      *logrus.Entry
	validate *validator.Validate

	// NewID generates task ids.
	NewID func() string
}

func NewRepository(store *storage.Accessor, clk clock.Clock, logger *logrus.Logger) *Repository {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Repository{
		store:    store,
		clock:    clk,
		log:      logger.WithField("component", "tasks"),
		validate: newValidator(),
		NewID:    uuid.NewString,
	}
}

// Draft describes a task to create.
type Draft struct {
	Title     string         `json:"title"`
	Memo      string         `json:"memo"`
	DueDate   *time.Time     `json:"dueDate"`
	ParentID  string         `json:"parentId"`
	Duration  *int           `json:"duration"`
	StartTime string         `json:"startTime"`
	EndTime   string         `json:"endTime"`
	Urgent    bool           `json:"urgent"`
	Priority  model.Priority `json:"priority"`

	IsTutorial  bool              `json:"-"`
	IsRoutine   bool              `json:"-"`
	RoutineType model.RoutineType `json:"-"`
}

// Patch is a partial update. Nil fields are left alone; the Clear flags
// unset optional values.
type Patch struct {
	Title         *string         `json:"title"`
	Memo          *string         `json:"memo"`
	DueDate       *time.Time      `json:"dueDate"`
	ClearDueDate  bool            `json:"clearDueDate"`
	Duration      *int            `json:"duration"`
	ClearDuration bool            `json:"clearDuration"`
	StartTime     *string         `json:"startTime"`
	EndTime       *string         `json:"endTime"`
	Urgent        *bool           `json:"urgent"`
	Priority      *model.Priority `json:"priority"`
}

func (p Patch) apply(t *model.Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Memo != nil {
		t.Memo = strings.TrimSpace(*p.Memo)
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.ClearDuration {
		t.Duration = nil
	} else if p.Duration != nil {
		d := *p.Duration
		t.Duration = &d
	}
	if p.StartTime != nil {
		t.StartTime = strings.TrimSpace(*p.StartTime)
	}
	if p.EndTime != nil {
		t.EndTime = strings.TrimSpace(*p.EndTime)
	}
	if p.Urgent != nil {
		t.Urgent = *p.Urgent
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
}

func indexOf(tasks []model.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns every task, roots and subtasks, in stored order.
func (r *Repository) List() []model.Task {
	return r.store.Tasks()
}

func (r *Repository) Get(id string) (model.Task, error) {
	tasks := r.store.Tasks()
	if i := indexOf(tasks, id); i >= 0 {
		return tasks[i], nil
	}
	return model.Task{}, notFound(id)
}

// Create validates the draft and prepends a new task.
func (r *Repository) Create(d Draft) (model.Task, error) {
	tasks := r.store.Tasks()
	t, err := r.build(tasks, d)
	if err != nil {
		return model.Task{}, err
	}
	tasks = append([]model.Task{t}, tasks...)
	if err := r.store.SaveTasks(tasks); err != nil {
		return model.Task{}, err
	}
	r.log.WithFields(logrus.Fields{"id": t.ID, "parent": t.ParentID}).Debug("task created")
	return t, nil
}

func (r *Repository) build(tasks []model.Task, d Draft) (model.Task, error) {
	now := r.clock.Now()
	t := model.Task{
		ID:          r.NewID(),
		Title:       strings.TrimSpace(d.Title),
		Memo:        strings.TrimSpace(d.Memo),
		ParentID:    d.ParentID,
		Duration:    d.Duration,
		StartTime:   strings.TrimSpace(d.StartTime),
		EndTime:     strings.TrimSpace(d.EndTime),
		Urgent:      d.Urgent,
		Priority:    d.Priority,
		IsTutorial:  d.IsTutorial,
		IsRoutine:   d.IsRoutine,
		RoutineType: d.RoutineType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if d.DueDate != nil {
		due := *d.DueDate
		t.DueDate = &due
	}
	if err := r.check(&t); err != nil {
		return model.Task{}, err
	}
	if t.ParentID != "" {
		if indexOf(tasks, t.ParentID) < 0 {
			return model.Task{}, fmt.Errorf("parent %w", notFound(t.ParentID))
		}
		if !canHaveSubtask(tasks, t.ParentID) {
			return model.Task{}, ErrMaxDepth
		}
	}
	return t, nil
}

// Update merges the patch into the task and refreshes updatedAt.
func (r *Repository) Update(id string, p Patch) (model.Task, error) {
	return r.mutate(id, func(t *model.Task) error {
		p.apply(t)
		return r.check(t)
	})
}

// mutate is the single update path: fn edits a copy of the task, which is
// stored with a fresh updatedAt only if fn succeeds.
func (r *Repository) mutate(id string, fn func(*model.Task) error) (model.Task, error) {
	tasks := r.store.Tasks()
	i := indexOf(tasks, id)
	if i < 0 {
		return model.Task{}, notFound(id)
	}
	t := tasks[i]
	if err := fn(&t); err != nil {
		return model.Task{}, err
	}
	t.UpdatedAt = r.clock.Now()
	tasks[i] = t
	if err := r.store.SaveTasks(tasks); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// ToggleComplete flips completion, stopping a running timer first.
func (r *Repository) ToggleComplete(id string) (model.Task, error) {
	return r.mutate(id, func(t *model.Task) error {
		if t.IsTimerRunning {
			r.stop(t)
		}
		t.IsCompleted = !t.IsCompleted
		return nil
	})
}

// Reorder assigns customOrder by position in ids. Unknown ids abort the
// whole call.
func (r *Repository) Reorder(ids []string) error {
	tasks := r.store.Tasks()
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if indexOf(tasks, id) < 0 {
			return notFound(id)
		}
		pos[id] = i
	}
	now := r.clock.Now()
	for i := range tasks {
		if p, ok := pos[tasks[i].ID]; ok {
			order := p
			tasks[i].CustomOrder = &order
			tasks[i].UpdatedAt = now
		}
	}
	return r.store.SaveTasks(tasks)
}
