package app

import (
	"context"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/gauge"
	"github.com/mo-tomi/nowtask5/pkg/model"
)

type TickKind int

const (
	// TickTimer fires every TimerInterval while a timer runs.
	TickTimer TickKind = iota
	// TickGauge fires every GaugeInterval.
	TickGauge
)

func (k TickKind) String() string {
	if k == TickTimer {
		return "timer"
	}
	return "gauge"
}

// Tick is delivered to Run's callback.
type Tick struct {
	Kind    TickKind
	At      time.Time
	Running []model.Task
	Gauge   *gauge.Result
}

// Run drives the periodic work until ctx is cancelled: timer ticks while a
// timer runs, and gauge ticks that record free time and sweep the mirror.
// notify may be nil.
func (a *App) Run(ctx context.Context, notify func(Tick)) error {
	timer := time.NewTicker(a.TimerInterval)
	defer timer.Stop()
	gaugeTicker := time.NewTicker(a.GaugeInterval)
	defer gaugeTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			running := a.Running()
			if len(running) == 0 || notify == nil {
				continue
			}
			notify(Tick{Kind: TickTimer, At: a.clock.Now(), Running: running})
		case <-gaugeTicker.C:
			g, err := a.RecordFreeTime()
			if err != nil {
				a.log.WithError(err).Warn("could not record free time")
			}
			a.sweep(ctx)
			if notify != nil {
				notify(Tick{Kind: TickGauge, At: a.clock.Now(), Gauge: &g})
			}
		}
	}
}

func (a *App) sweep(ctx context.Context) {
	if a.sweeper == nil {
		return
	}
	if _, err := a.sweeper.Sweep(ctx); err != nil {
		a.log.WithError(err).Warn("mirror sweep failed")
	}
}
