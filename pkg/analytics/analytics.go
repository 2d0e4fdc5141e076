package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/util"
)

const RankingSize = 5

type RankEntry struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Seconds int64  `json:"seconds"`
	Display string `json:"display"`
}

// Ranking returns the completed tasks with the most tracked time.
func Ranking(tasks []model.Task) []RankEntry {
	var done []model.Task
	for _, t := range tasks {
		if t.IsCompleted && t.TotalTime > 0 {
			done = append(done, t)
		}
	}
	sort.SliceStable(done, func(i, j int) bool {
		return done[i].TotalTime > done[j].TotalTime
	})
	if len(done) > RankingSize {
		done = done[:RankingSize]
	}
	out := make([]RankEntry, len(done))
	for i, t := range done {
		out[i] = RankEntry{ID: t.ID, Title: t.Title, Seconds: t.TotalTime, Display: util.FormatSeconds(t.TotalTime)}
	}
	return out
}

// Record stores free minutes for the calendar day of at, clamped at zero.
func Record(log model.FreeTimeLog, at time.Time, freeMinutes int) {
	if freeMinutes < 0 {
		freeMinutes = 0
	}
	log[clock.ISODate(at)] = freeMinutes
}

// Average is the rounded mean of the latest n recorded days; n <= 0 uses
// every day. An empty log averages to 0.
func Average(log model.FreeTimeLog, n int) int {
	dates := make([]string, 0, len(log))
	for d := range log {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if n > 0 && len(dates) > n {
		dates = dates[:n]
	}
	if len(dates) == 0 {
		return 0
	}
	sum := 0
	for _, d := range dates {
		sum += log[d]
	}
	return int(math.Floor(float64(sum)/float64(len(dates)) + 0.5))
}

type FreeTimeStats struct {
	Today    int  `json:"today"`
	Avg7     int  `json:"avg7"`
	Avg30    int  `json:"avg30"`
	AvgAll   int  `json:"avgAll"`
	Recorded int  `json:"recorded"`
	HasData  bool `json:"hasData"`
}

func Stats(log model.FreeTimeLog, now time.Time) FreeTimeStats {
	return FreeTimeStats{
		Today:    log[clock.ISODate(now)],
		Avg7:     Average(log, 7),
		Avg30:    Average(log, 30),
		AvgAll:   Average(log, 0),
		Recorded: len(log),
		HasData:  len(log) > 0,
	}
}

// Report bundles the analytics panel.
type Report struct {
	Ranking  []RankEntry   `json:"ranking"`
	FreeTime FreeTimeStats `json:"freeTime"`
}

func Build(tasks []model.Task, log model.FreeTimeLog, now time.Time) Report {
	r := Report{Ranking: Ranking(tasks), FreeTime: Stats(log, now)}
	if r.Ranking == nil {
		r.Ranking = []RankEntry{}
	}
	return r
}
