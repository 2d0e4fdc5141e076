package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/colors"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"google.golang.org/api/calendar/v3"
)

const (
	// TaskIDProperty is the private extended property carrying the task id.
	TaskIDProperty = "nowtask_id"

	defaultEventDuration = 30 * time.Minute
)

// ParseClock parses an "HH:MM" string into minutes after midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || len(m) != 2 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatSeconds renders a timer value as "H:MM:SS".
func FormatSeconds(sec int64) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", sec/3600, (sec/60)%60, sec%60)
}

// EventNeedsUpdate returns a patch if the fields mirrored from a task
// differ between the existing event and the freshly converted target.
func EventNeedsUpdate(existingEvent *calendar.Event, targetEvent *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	needsUpdate := false

	if existingEvent.Summary != targetEvent.Summary {
		patch.Summary = targetEvent.Summary
		needsUpdate = true
	}
	if existingEvent.Description != targetEvent.Description {
		patch.Description = targetEvent.Description
		needsUpdate = true
	}
	if existingEvent.ColorId != targetEvent.ColorId {
		patch.ColorId = targetEvent.ColorId
		needsUpdate = true
	}
	if !sameEventTime(existingEvent.Start, targetEvent.Start) || !sameEventTime(existingEvent.End, targetEvent.End) {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch
	}
	return nil
}

func sameEventTime(a, b *calendar.EventDateTime) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Date != b.Date {
		return false
	}
	if a.DateTime == b.DateTime {
		return true
	}
	ta, errA := time.Parse(time.RFC3339, a.DateTime)
	tb, errB := time.Parse(time.RFC3339, b.DateTime)
	return errA == nil && errB == nil && ta.Equal(tb)
}

// SummaryPrefix marks completed, running and overdue tasks.
func SummaryPrefix(task *model.Task, now time.Time) string {
	switch {
	case task.IsCompleted:
		return "✓"
	case task.IsTimerRunning:
		return "‣"
	case task.HasDueDate() && task.DueDate.Before(now):
		return "!"
	}
	return ""
}

// ConvertTaskToCalendarEvent builds the calendar event for a dated task.
// Tasks with a start time become timed events; the rest are all-day.
func ConvertTaskToCalendarEvent(task *model.Task, now time.Time) (*calendar.Event, error) {
	if task == nil {
		return nil, fmt.Errorf("could not convert nil Task")
	}
	if !task.HasDueDate() {
		return nil, fmt.Errorf("task has no due date: %s", task.ID)
	}

	summary := task.Title
	if prefix := SummaryPrefix(task, now); prefix != "" {
		summary = fmt.Sprintf("%s %s", prefix, task.Title)
	}

	event := &calendar.Event{
		Summary:     summary,
		ColorId:     colors.ColorID(task),
		Description: describe(task, now),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{TaskIDProperty: task.ID},
		},
	}

	day := task.DueDate.In(now.Location())
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	if task.StartTime == "" {
		event.Start = &calendar.EventDateTime{Date: midnight.Format("2006-01-02")}
		event.End = &calendar.EventDateTime{Date: midnight.AddDate(0, 0, 1).Format("2006-01-02")}
		return event, nil
	}

	startMin, err := ParseClock(task.StartTime)
	if err != nil {
		return nil, err
	}
	start := midnight.Add(time.Duration(startMin) * time.Minute)

	var end time.Time
	if task.EndTime != "" {
		endMin, err := ParseClock(task.EndTime)
		if err != nil {
			return nil, err
		}
		end = midnight.Add(time.Duration(endMin) * time.Minute)
		if endMin < startMin {
			end = end.AddDate(0, 0, 1)
		}
	} else if task.Duration != nil && *task.Duration > 0 {
		end = start.Add(time.Duration(*task.Duration) * time.Minute)
	} else {
		end = start.Add(defaultEventDuration)
	}

	event.Start = &calendar.EventDateTime{DateTime: start.UTC().Format(time.RFC3339)}
	event.End = &calendar.EventDateTime{DateTime: end.UTC().Format(time.RFC3339)}
	return event, nil
}

func describe(task *model.Task, now time.Time) string {
	var b strings.Builder
	if task.Memo != "" {
		b.WriteString(task.Memo)
		b.WriteString("\n\n")
	}
	if task.Urgent {
		b.WriteString("Urgent\n")
	}
	if task.Priority != model.PriorityNone {
		fmt.Fprintf(&b, "Priority: %s\n", task.Priority)
	}
	if task.Duration != nil {
		fmt.Fprintf(&b, "Planned: %d min\n", *task.Duration)
	}
	if spent := task.DisplaySeconds(now); spent > 0 {
		fmt.Fprintf(&b, "Spent: %s\n", FormatSeconds(spent))
	}
	fmt.Fprintf(&b, "ID: %s\n", task.ID)
	return b.String()
}
