package colors

import "github.com/mo-tomi/nowtask5/pkg/model"

// Google Calendar event color IDs.
const (
	Lavender  = "1"
	Sage      = "2"
	Grape     = "3"
	Flamingo  = "4"
	Banana    = "5"
	Tangerine = "6"
	Peacock   = "7"
	Graphite  = "8"
	Blueberry = "9"
	Basil     = "10"
	Tomato    = "11"
)

// ColorID picks an event color for a task. Completion wins, then urgency,
// then routine, then priority.
func ColorID(t *model.Task) string {
	switch {
	case t.IsCompleted:
		return Graphite
	case t.Urgent:
		return Flamingo
	case t.IsRoutine:
		return Peacock
	}
	switch t.Priority {
	case model.PriorityHigh:
		return Tomato
	case model.PriorityMedium:
		return Banana
	case model.PriorityLow:
		return Sage
	}
	return Lavender
}
