package gauge

import (
	"fmt"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/util"
)

const MinutesPerDay = 1440

// DaySchedule is the planned time of one calendar day. Spill is the part
// of day-crossing tasks that falls on the following day.
type DaySchedule struct {
	Minutes int `json:"minutes"`
	Spill   int `json:"spill"`
}

// Result is the gauge for one day.
type Result struct {
	Date             string  `json:"date"`
	IsToday          bool    `json:"isToday"`
	CurrentMinutes   int     `json:"currentMinutes"`
	ElapsedPercent   float64 `json:"elapsedPercent"`
	CarryIn          int     `json:"carryIn"`
	ScheduledMinutes int     `json:"scheduledMinutes"`
	ScheduledPercent float64 `json:"scheduledPercent"`
	Spill            int     `json:"spill"`
	FreeMinutes      int     `json:"freeMinutes"`
	Over             bool    `json:"over"`
	Label            string  `json:"label"`
}

// taskMinutes returns the minutes a task occupies on its due day and the
// minutes it spills into the next day. ok is false for unplanned tasks.
func taskMinutes(t *model.Task) (minutes, spill int, ok bool) {
	if t.StartTime != "" && t.EndTime != "" {
		start, errS := util.ParseClock(t.StartTime)
		end, errE := util.ParseClock(t.EndTime)
		if errS == nil && errE == nil {
			if end >= start {
				return end - start, 0, true
			}
			return MinutesPerDay - start, end, true
		}
	}
	if t.Duration != nil {
		return *t.Duration, 0, true
	}
	return 0, 0, false
}

// ScheduleFor sums the planned minutes of incomplete tasks, roots and
// subtasks, due on day's calendar day.
func ScheduleFor(tasks []model.Task, day time.Time) DaySchedule {
	start := clock.Midnight(day)
	end := start.AddDate(0, 0, 1)

	var s DaySchedule
	for i := range tasks {
		t := &tasks[i]
		if t.IsCompleted || !t.HasDueDate() {
			continue
		}
		if t.DueDate.Before(start) || !t.DueDate.Before(end) {
			continue
		}
		if m, spill, ok := taskMinutes(t); ok {
			s.Minutes += m
			s.Spill += spill
		}
	}
	return s
}

// Compute returns the gauge for ref's calendar day. The carry-in is the
// previous day's spill.
func Compute(tasks []model.Task, ref, now time.Time) Result {
	day := clock.Midnight(ref)
	carry := ScheduleFor(tasks, day.AddDate(0, 0, -1)).Spill
	return compute(tasks, day, now, carry)
}

// Series returns gauges for n consecutive days starting at from, threading
// each day's spill into the next day's carry-in.
func Series(tasks []model.Task, from, now time.Time, n int) []Result {
	day := clock.Midnight(from)
	carry := ScheduleFor(tasks, day.AddDate(0, 0, -1)).Spill
	out := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		r := compute(tasks, day, now, carry)
		out = append(out, r)
		carry = r.Spill
		day = day.AddDate(0, 0, 1)
	}
	return out
}

func compute(tasks []model.Task, day, now time.Time, carry int) Result {
	sched := ScheduleFor(tasks, day)
	r := Result{
		Date:    clock.ISODate(day),
		IsToday: clock.DayOffset(day, now) == 0,
		CarryIn: carry,
		Spill:   sched.Spill,
	}
	if r.IsToday {
		local := now.In(day.Location())
		r.CurrentMinutes = local.Hour()*60 + local.Minute()
	}
	r.ElapsedPercent = float64(r.CurrentMinutes) / MinutesPerDay * 100
	r.ScheduledMinutes = sched.Minutes + carry
	r.ScheduledPercent = float64(r.ScheduledMinutes) / MinutesPerDay * 100
	r.FreeMinutes = MinutesPerDay - r.CurrentMinutes - r.ScheduledMinutes
	r.Over = r.FreeMinutes < 0
	r.Label = Label(r.FreeMinutes)
	return r
}

// FormatMinutes renders a non-negative span as "N hours M minutes",
// dropping the hour term when it is zero.
func FormatMinutes(m int) string {
	if m < 0 {
		m = -m
	}
	h, m := m/60, m%60
	if h == 0 {
		return fmt.Sprintf("%d minutes", m)
	}
	return fmt.Sprintf("%d hours %d minutes", h, m)
}

// Label describes free minutes; negative values read as overflow.
func Label(free int) string {
	if free < 0 {
		return "over: " + FormatMinutes(-free)
	}
	return FormatMinutes(free) + " free"
}
