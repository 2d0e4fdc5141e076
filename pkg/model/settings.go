package model

type SortMode string

const (
	SortTime     SortMode = "time"
	SortCreated  SortMode = "created"
	SortPriority SortMode = "priority"
)

func (m SortMode) Valid() bool {
	switch m {
	case SortTime, SortCreated, SortPriority:
		return true
	}
	return false
}

type Filter string

const (
	FilterNone         Filter = ""
	FilterUrgent       Filter = "urgent"
	FilterHighPriority Filter = "high-priority"
)

func (f Filter) Valid() bool {
	switch f {
	case FilterNone, FilterUrgent, FilterHighPriority:
		return true
	}
	return false
}

// Settings holds persisted user preferences.
type Settings struct {
	SortMode SortMode `json:"sortMode"`
}

func DefaultSettings() Settings {
	return Settings{SortMode: SortTime}
}

type RoutineType string

const (
	RoutineBreakfast RoutineType = "breakfast"
	RoutineLunch     RoutineType = "lunch"
	RoutineDinner    RoutineType = "dinner"
	RoutineBrush     RoutineType = "brush"
	RoutineSleep     RoutineType = "sleep"
)

// RoutineTypes lists routines in the order they are seeded.
var RoutineTypes = []RoutineType{
	RoutineBreakfast,
	RoutineLunch,
	RoutineDinner,
	RoutineBrush,
	RoutineSleep,
}

var routineTitles = map[RoutineType]string{
	RoutineBreakfast: "Breakfast",
	RoutineLunch:     "Lunch",
	RoutineDinner:    "Dinner",
	RoutineBrush:     "Brush teeth",
	RoutineSleep:     "Sleep",
}

func (r RoutineType) Title() string {
	if s, ok := routineTitles[r]; ok {
		return s
	}
	return string(r)
}

func (r RoutineType) Valid() bool {
	_, ok := routineTitles[r]
	return ok
}

type Routine struct {
	Enabled  bool `json:"enabled"`
	Duration int  `json:"duration"`
}

type Routines map[RoutineType]Routine

// HistoryEntry remembers a quick-added title for one-tap re-entry.
type HistoryEntry struct {
	Title     string `json:"title"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// FreeTimeLog maps YYYY-MM-DD to the free minutes recorded for that day.
type FreeTimeLog map[string]int
