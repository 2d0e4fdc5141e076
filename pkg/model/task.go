package model

import "time"

// MaxDepth is the maximum number of levels in a task tree. Roots are at
// depth 0, so a task at depth MaxDepth-1 cannot own children.
const MaxDepth = 5

type Priority string

const (
	PriorityNone   Priority = ""
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for sorting: high < medium < low < unset.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Task is a single entry in the task forest.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Memo        string     `json:"memo"`
	DueDate     *time.Time `json:"dueDate"`
	IsCompleted bool       `json:"isCompleted"`
	ParentID    string     `json:"parentId,omitempty"`

	// Timer accounting, in whole seconds.
	TotalTime      int64      `json:"totalTime"`
	IsTimerRunning bool       `json:"isTimerRunning"`
	TimerStartTime *time.Time `json:"timerStartTime"`

	// Planned minutes and optional "HH:MM" window.
	Duration  *int   `json:"duration,omitempty"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`

	Urgent      bool     `json:"urgent"`
	Priority    Priority `json:"priority"`
	CustomOrder *int     `json:"customOrder,omitempty"`

	IsTutorial  bool        `json:"isTutorial"`
	IsRoutine   bool        `json:"isRoutine,omitempty"`
	RoutineType RoutineType `json:"routineType,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Task) IsRoot() bool {
	return t.ParentID == ""
}

func (t *Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// DisplaySeconds is the accumulated time plus the running interval, if any.
func (t *Task) DisplaySeconds(now time.Time) int64 {
	total := t.TotalTime
	if t.IsTimerRunning && t.TimerStartTime != nil {
		if elapsed := now.Sub(*t.TimerStartTime); elapsed > 0 {
			total += int64(elapsed / time.Second)
		}
	}
	return total
}

// TrashEntry is a deleted task waiting for restore or purge.
type TrashEntry struct {
	Task
	DeletedAt time.Time `json:"deletedAt"`
}
