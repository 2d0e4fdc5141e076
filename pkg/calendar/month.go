package calendar

import (
	"fmt"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/model"
)

// Day is one cell of the month grid.
type Day struct {
	Date       string `json:"date"`
	Day        int    `json:"day"`
	Total      int    `json:"total"`
	Completed  int    `json:"completed"`
	Incomplete int    `json:"incomplete"`
	IsToday    bool   `json:"isToday"`
}

// Month is a calendar page. Leading is the number of blank cells before
// the 1st, with weeks starting on Sunday.
type Month struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Title   string     `json:"title"`
	Leading int        `json:"leading"`
	Days    []Day      `json:"days"`
	Prev    string     `json:"prev"`
	Next    string     `json:"next"`
}

// Build counts tasks, roots and subtasks, per due day of the given month.
// Due dates are read in today's location.
func Build(tasks []model.Task, year int, month time.Month, today time.Time) Month {
	loc := today.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	n := first.AddDate(0, 1, -1).Day()

	m := Month{
		Year:    first.Year(),
		Month:   first.Month(),
		Title:   first.Format("January 2006"),
		Leading: int(first.Weekday()),
		Days:    make([]Day, n),
	}
	py, pm := Prev(m.Year, m.Month)
	ny, nm := Next(m.Year, m.Month)
	m.Prev = fmt.Sprintf("%04d-%02d", py, pm)
	m.Next = fmt.Sprintf("%04d-%02d", ny, nm)
	todayISO := clock.ISODate(today)
	for i := range m.Days {
		d := first.AddDate(0, 0, i)
		m.Days[i] = Day{Date: clock.ISODate(d), Day: i + 1}
		m.Days[i].IsToday = m.Days[i].Date == todayISO
	}

	for _, t := range tasks {
		if !t.HasDueDate() {
			continue
		}
		due := t.DueDate.In(loc)
		if due.Year() != m.Year || due.Month() != m.Month {
			continue
		}
		d := &m.Days[due.Day()-1]
		d.Total++
		if t.IsCompleted {
			d.Completed++
		} else {
			d.Incomplete++
		}
	}
	return m
}

// Prev returns the year and month before the given one.
func Prev(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// Next returns the year and month after the given one.
func Next(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// Find returns the cell for an ISO date, if it is in the month.
func (m Month) Find(date string) (Day, bool) {
	for _, d := range m.Days {
		if d.Date == date {
			return d, true
		}
	}
	return Day{}, false
}
