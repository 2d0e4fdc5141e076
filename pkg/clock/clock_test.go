package clock

import (
	"testing"
	"time"
)

func TestDayOffset(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	ref := time.Date(2024, 3, 10, 23, 30, 0, 0, tokyo)

	tests := []struct {
		name string
		t    time.Time
		want int
	}{
		{"same day", time.Date(2024, 3, 10, 0, 5, 0, 0, tokyo), 0},
		{"next day in ref zone", time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC), 1},
		{"yesterday", time.Date(2024, 3, 9, 12, 0, 0, 0, tokyo), -1},
		{"leap year", time.Date(2025, 3, 10, 12, 0, 0, 0, tokyo), 365},
		{"past 292 years", time.Date(2424, 3, 10, 12, 0, 0, 0, tokyo), 146097},
		{"further out", time.Date(2824, 3, 10, 12, 0, 0, 0, tokyo), 2 * 146097},
	}
	for _, tt := range tests {
		if got := DayOffset(ref, tt.t); got != tt.want {
			t.Errorf("%s: DayOffset = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestManualAdvance(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	m := NewManual(start)
	m.Advance(90 * time.Minute)
	if got := m.Now(); !got.Equal(start.Add(90 * time.Minute)) {
		t.Errorf("Now = %v after Advance", got)
	}
	if got := Midnight(m.Now()); !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Midnight = %v", got)
	}
}
