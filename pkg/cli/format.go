package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/tasks"
	"github.com/mo-tomi/nowtask5/pkg/util"
	"github.com/mo-tomi/nowtask5/pkg/view"
)

const shortID = 8

func short(id string) string {
	if len(id) > shortID {
		return id[:shortID]
	}
	return id
}

// resolveID finds the single task whose id starts with prefix.
func resolveID(list []model.Task, prefix string) (string, error) {
	var match string
	for _, t := range list {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("%w: id prefix %q is ambiguous", tasks.ErrInvalid, prefix)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", tasks.ErrNotFound, prefix)
	}
	return match, nil
}

func trashTasks(trash []model.TrashEntry) []model.Task {
	out := make([]model.Task, len(trash))
	for i, e := range trash {
		out[i] = e.Task
	}
	return out
}

// parseDay accepts YYYY-MM-DD, "today" and "tomorrow".
func parseDay(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return clock.Midnight(now), nil
	case "tomorrow":
		return clock.Midnight(now).AddDate(0, 0, 1), nil
	case "yesterday":
		return clock.Midnight(now).AddDate(0, 0, -1), nil
	}
	day, err := time.ParseInLocation(time.DateOnly, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q, want YYYY-MM-DD", tasks.ErrInvalid, s)
	}
	return day, nil
}

func schedule(t model.Task) string {
	switch {
	case t.StartTime != "" && t.EndTime != "":
		return t.StartTime + "-" + t.EndTime
	case t.StartTime != "" && t.Duration != nil:
		return fmt.Sprintf("%s +%dm", t.StartTime, *t.Duration)
	case t.StartTime != "":
		return t.StartTime
	case t.Duration != nil:
		return fmt.Sprintf("%dm", *t.Duration)
	}
	return ""
}

func writeRow(w io.Writer, r view.Row) {
	t := r.Task
	box := "[ ]"
	if t.IsCompleted {
		box = "[x]"
	}
	var tags []string
	if s := schedule(t); s != "" {
		tags = append(tags, s)
	}
	if t.Urgent {
		tags = append(tags, "urgent")
	}
	if t.Priority != model.PriorityNone {
		tags = append(tags, string(t.Priority))
	}
	if t.IsTimerRunning || r.DisplaySeconds > 0 {
		tags = append(tags, util.FormatSeconds(r.DisplaySeconds))
	}
	line := fmt.Sprintf("%s%s %s  %s", strings.Repeat("  ", r.Level+1), box, short(t.ID), t.Title)
	if len(tags) > 0 {
		line += "  (" + strings.Join(tags, ", ") + ")"
	}
	fmt.Fprintln(w, line)
}

func writeTask(w io.Writer, t model.Task, secs int64, now time.Time) {
	fmt.Fprintf(w, "ID:        %s\n", t.ID)
	fmt.Fprintf(w, "Title:     %s\n", t.Title)
	if t.Memo != "" {
		fmt.Fprintf(w, "Memo:      %s\n", t.Memo)
	}
	if t.HasDueDate() {
		fmt.Fprintf(w, "Due:       %s\n", clock.ISODate(t.DueDate.In(now.Location())))
	}
	if s := schedule(t); s != "" {
		fmt.Fprintf(w, "Schedule:  %s\n", s)
	}
	if t.Priority != model.PriorityNone {
		fmt.Fprintf(w, "Priority:  %s\n", t.Priority)
	}
	if t.Urgent {
		fmt.Fprintln(w, "Urgent:    yes")
	}
	if t.ParentID != "" {
		fmt.Fprintf(w, "Parent:    %s\n", short(t.ParentID))
	}
	status := "open"
	if t.IsCompleted {
		status = "done"
	}
	fmt.Fprintf(w, "Status:    %s\n", status)
	timer := util.FormatSeconds(secs)
	if t.IsTimerRunning {
		timer += " (running)"
	}
	fmt.Fprintf(w, "Time:      %s\n", timer)
	fmt.Fprintf(w, "Created:   %s\n", t.CreatedAt.In(now.Location()).Format("2006-01-02 15:04"))
}
