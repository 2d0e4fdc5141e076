package tasks

import (
	"fmt"
	"strings"

	"github.com/mo-tomi/nowtask5/pkg/model"
)

const (
	HistoryLimit      = 20
	HistoryShownLimit = 10
)

// AddHistory puts a title at the front of the entry history, dropping any
// older entry with the same title.
func (r *Repository) AddHistory(title, startTime, endTime string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	history := r.store.History()
	out := make([]model.HistoryEntry, 0, len(history)+1)
	out = append(out, model.HistoryEntry{Title: title, StartTime: startTime, EndTime: endTime})
	for _, h := range history {
		if h.Title != title {
			out = append(out, h)
		}
	}
	if len(out) > HistoryLimit {
		out = out[:HistoryLimit]
	}
	return r.store.SaveHistory(out)
}

// History returns up to limit entries, most recent first. A limit of zero
// or less returns everything.
func (r *Repository) History(limit int) []model.HistoryEntry {
	history := r.store.History()
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history
}

// CreateFromHistory re-adds the task remembered at position i.
func (r *Repository) CreateFromHistory(i int) (model.Task, error) {
	history := r.store.History()
	if i < 0 || i >= len(history) {
		return model.Task{}, fmt.Errorf("%w: history entry %d", ErrNotFound, i)
	}
	h := history[i]
	t, err := r.Create(Draft{Title: h.Title, StartTime: h.StartTime, EndTime: h.EndTime})
	if err != nil {
		return model.Task{}, err
	}
	if err := r.AddHistory(h.Title, h.StartTime, h.EndTime); err != nil {
		return t, err
	}
	return t, nil
}
