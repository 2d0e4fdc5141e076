package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time. Everything that depends on "now" takes
// one so that day boundaries can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Manual is a settable clock.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Midnight returns local midnight of the day containing t.
func Midnight(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

// DayOffset returns the number of calendar days from ref to t, using the
// calendar of ref's location. DST shifts do not skew the result.
func DayOffset(ref, t time.Time) int {
	return EpochDay(t.In(ref.Location())) - EpochDay(ref)
}

// EpochDay returns the number of days since 1970-01-01 for t's calendar day.
func EpochDay(t time.Time) int {
	u := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(u.Unix() / 86400)
}

// ISODate formats t as YYYY-MM-DD.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}
