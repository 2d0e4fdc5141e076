package gauge

import (
	"testing"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/model"
)

func day(d, h, m int) time.Time {
	return time.Date(2024, 6, d, h, m, 0, 0, time.UTC)
}

func due(d int) *time.Time {
	t := day(d, 0, 0)
	return &t
}

func minutes(n int) *int { return &n }

func TestComputeEmptyDay(t *testing.T) {
	now := day(10, 8, 0)
	r := Compute(nil, now, now)

	if r.FreeMinutes != 960 {
		t.Errorf("Expected 960 free minutes, got %d", r.FreeMinutes)
	}
	if r.Label != "16 hours 0 minutes free" {
		t.Errorf("Unexpected label %q", r.Label)
	}
	if r.ElapsedPercent < 33.3 || r.ElapsedPercent > 33.4 {
		t.Errorf("Expected ~33.33%% elapsed, got %f", r.ElapsedPercent)
	}
	if !r.IsToday {
		t.Error("Expected IsToday")
	}
}

func TestComputeOverflow(t *testing.T) {
	now := day(10, 23, 0)
	tasks := []model.Task{{ID: "a", DueDate: due(10), Duration: minutes(90)}}
	r := Compute(tasks, now, now)

	if r.FreeMinutes != -30 || !r.Over {
		t.Errorf("Expected -30 overflow, got %d", r.FreeMinutes)
	}
	if r.Label != "over: 30 minutes" {
		t.Errorf("Unexpected label %q", r.Label)
	}
}

func TestScheduleForSelection(t *testing.T) {
	tasks := []model.Task{
		{ID: "window", DueDate: due(10), StartTime: "09:00", EndTime: "10:30"},
		{ID: "duration", DueDate: due(10), Duration: minutes(45)},
		{ID: "both", DueDate: due(10), StartTime: "13:00", EndTime: "13:15", Duration: minutes(100)},
		{ID: "subtask", ParentID: "window", DueDate: due(10), Duration: minutes(10)},
		{ID: "done", DueDate: due(10), Duration: minutes(60), IsCompleted: true},
		{ID: "unplanned", DueDate: due(10)},
		{ID: "tomorrow", DueDate: due(11), Duration: minutes(60)},
		{ID: "undated", Duration: minutes(60)},
		{ID: "badclock", DueDate: due(10), StartTime: "9am", EndTime: "10am", Duration: minutes(5)},
	}
	s := ScheduleFor(tasks, day(10, 12, 0))
	if want := 90 + 45 + 15 + 10 + 5; s.Minutes != want {
		t.Errorf("Expected %d scheduled minutes, got %d", want, s.Minutes)
	}
	if s.Spill != 0 {
		t.Errorf("Expected no spill, got %d", s.Spill)
	}
}

func TestDayCrossingCarry(t *testing.T) {
	tasks := []model.Task{
		{ID: "night", DueDate: due(10), StartTime: "22:00", EndTime: "06:30"},
		{ID: "next", DueDate: due(11), Duration: minutes(30)},
	}

	first := Compute(tasks, day(10, 0, 0), day(1, 0, 0))
	if first.ScheduledMinutes != 120 || first.Spill != 390 || first.CarryIn != 0 {
		t.Errorf("Unexpected crossing day %+v", first)
	}
	if first.IsToday || first.CurrentMinutes != 0 || first.ElapsedPercent != 0 {
		t.Errorf("Expected non-today gauge pinned to 0 elapsed, got %+v", first)
	}

	second := Compute(tasks, day(11, 0, 0), day(1, 0, 0))
	if second.CarryIn != 390 || second.ScheduledMinutes != 420 {
		t.Errorf("Expected carry 390 + 30 scheduled, got %+v", second)
	}
	if second.FreeMinutes != 1440-420 {
		t.Errorf("Expected %d free, got %d", 1440-420, second.FreeMinutes)
	}
}

func TestSeriesThreadsCarry(t *testing.T) {
	tasks := []model.Task{
		{ID: "prev", DueDate: due(9), StartTime: "23:00", EndTime: "01:00"},
		{ID: "night", DueDate: due(10), StartTime: "23:30", EndTime: "00:15"},
		{ID: "plain", DueDate: due(11), Duration: minutes(60)},
	}
	series := Series(tasks, day(10, 0, 0), day(10, 12, 0), 3)
	if len(series) != 3 {
		t.Fatalf("Expected 3 days, got %d", len(series))
	}
	if series[0].CarryIn != 60 || series[0].ScheduledMinutes != 60+30 {
		t.Errorf("Day 1: %+v", series[0])
	}
	if !series[0].IsToday || series[0].CurrentMinutes != 720 {
		t.Errorf("Expected day 1 to be today at noon, got %+v", series[0])
	}
	if series[1].CarryIn != 15 || series[1].ScheduledMinutes != 75 {
		t.Errorf("Day 2: %+v", series[1])
	}
	if series[2].CarryIn != 0 || series[2].ScheduledMinutes != 0 || series[2].Date != "2024-06-12" {
		t.Errorf("Day 3: %+v", series[2])
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := map[int]string{0: "0 minutes", 5: "5 minutes", 60: "1 hours 0 minutes", 125: "2 hours 5 minutes"}
	for in, want := range cases {
		if got := FormatMinutes(in); got != want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", in, got, want)
		}
	}
	if Label(0) != "0 minutes free" {
		t.Errorf("Unexpected zero label %q", Label(0))
	}
}
