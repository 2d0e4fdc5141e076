package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/analytics"
	"github.com/mo-tomi/nowtask5/pkg/calendar"
	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/gauge"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/storage"
	"github.com/mo-tomi/nowtask5/pkg/tasks"
	"github.com/mo-tomi/nowtask5/pkg/view"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimerInterval = time.Second
	DefaultGaugeInterval = time.Minute

	DefaultWeekDays = 7
	MaxWeekDays     = 31
)

// State is the in-memory UI state. Only Sort is persisted.
type State struct {
	Filter    model.Filter   `json:"filter"`
	Sort      model.SortMode `json:"sort"`
	EditingID string         `json:"editingId,omitempty"`
	// Reference is the day the list and gauge are anchored to; nil is today.
	Reference *time.Time `json:"reference,omitempty"`
}

// Sweeper is implemented by mirrors that need periodic maintenance.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type Options struct {
	Clock          clock.Clock
	Logger         *logrus.Logger
	TrashRetention time.Duration
	Sweeper        Sweeper
}

// App owns the repository and the UI state. All methods are safe for
// concurrent use; mutations are serialized.
type App struct {
	acc       *storage.Accessor
	repo      *tasks.Repository
	clock     clock.Clock
	log       *logrus.Entry
	retention time.Duration
	sweeper   Sweeper

	TimerInterval time.Duration
	GaugeInterval time.Duration

	mu    sync.Mutex
	state State
}

func New(acc *storage.Accessor, opts Options) *App {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.TrashRetention <= 0 {
		opts.TrashRetention = tasks.DefaultTrashRetention
	}
	return &App{
		acc:           acc,
		repo:          tasks.NewRepository(acc, opts.Clock, opts.Logger),
		clock:         opts.Clock,
		log:           opts.Logger.WithField("component", "app"),
		retention:     opts.TrashRetention,
		sweeper:       opts.Sweeper,
		TimerInterval: DefaultTimerInterval,
		GaugeInterval: DefaultGaugeInterval,
		state:         State{Sort: acc.Settings().SortMode},
	}
}

func (a *App) Clock() clock.Clock {
	return a.clock
}

// StartupReport summarizes what Startup did.
type StartupReport struct {
	Pulled   int  `json:"pulled"`
	Tutorial bool `json:"tutorial"`
	Purged   int  `json:"purged"`
	Routines int  `json:"routines"`
}

// Startup pulls the mirror, seeds the tutorial into an empty list, purges
// expired trash and creates today's routine tasks. A failing mirror is
// logged and does not stop startup.
func (a *App) Startup(ctx context.Context) (StartupReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var rep StartupReport
	n, err := a.acc.PullAll(ctx)
	if err != nil {
		a.log.WithError(err).Warn("mirror pull failed, continuing with local data")
	}
	rep.Pulled = n
	a.state.Sort = a.acc.Settings().SortMode

	if rep.Tutorial, err = a.repo.SeedTutorial(); err != nil {
		return rep, fmt.Errorf("seed tutorial: %w", err)
	}
	if rep.Purged, err = a.repo.CleanupTrash(a.retention); err != nil {
		return rep, fmt.Errorf("cleanup trash: %w", err)
	}
	if rep.Routines, err = a.repo.SeedRoutines(); err != nil {
		return rep, fmt.Errorf("seed routines: %w", err)
	}
	a.log.WithFields(logrus.Fields{
		"pulled":   rep.Pulled,
		"tutorial": rep.Tutorial,
		"purged":   rep.Purged,
		"routines": rep.Routines,
	}).Info("startup complete")
	return rep, nil
}

// Pull replaces local records with the mirror's copies.
func (a *App) Pull(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, err := a.acc.PullAll(ctx)
	a.state.Sort = a.acc.Settings().SortMode
	return n, err
}

// Close waits for mirror pushes and closes the store.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.acc.Close()
}

func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// SetSort changes and persists the within-bucket order.
func (a *App) SetSort(mode model.SortMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown sort mode %q", tasks.ErrInvalid, mode)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.acc.Settings()
	s.SortMode = mode
	if err := a.acc.SaveSettings(s); err != nil {
		return err
	}
	a.state.Sort = mode
	return nil
}

func (a *App) SetFilter(f model.Filter) error {
	if !f.Valid() {
		return fmt.Errorf("%w: unknown filter %q", tasks.ErrInvalid, f)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Filter = f
	return nil
}

// SetReference anchors the view to a day; nil returns to today.
func (a *App) SetReference(day *time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if day == nil {
		a.state.Reference = nil
		return
	}
	m := clock.Midnight(day.In(a.clock.Now().Location()))
	a.state.Reference = &m
}

// SetEditing marks a task as open in the editor; "" closes it.
func (a *App) SetEditing(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id != "" {
		if _, err := a.repo.Get(id); err != nil {
			return err
		}
	}
	a.state.EditingID = id
	return nil
}

func (a *App) reference(now time.Time) time.Time {
	if a.state.Reference != nil {
		return *a.state.Reference
	}
	return now
}

// View builds the grouped task list for the current state.
func (a *App) View() view.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.clock.Now()
	return view.Build(a.repo.List(), a.repo.Trash(), a.reference(now), now, a.state.Sort, a.state.Filter)
}

// Gauge computes the gauge for day, or for the reference day when nil.
func (a *App) Gauge(day *time.Time) gauge.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.clock.Now()
	ref := a.reference(now)
	if day != nil {
		ref = *day
	}
	return gauge.Compute(a.repo.List(), ref, now)
}

// Week computes consecutive gauges starting at from, or the reference day
// when nil, carrying day-crossing time forward.
func (a *App) Week(from *time.Time, days int) []gauge.Result {
	if days <= 0 {
		days = DefaultWeekDays
	}
	if days > MaxWeekDays {
		days = MaxWeekDays
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.clock.Now()
	start := a.reference(now)
	if from != nil {
		start = *from
	}
	return gauge.Series(a.repo.List(), start, now, days)
}

// Calendar builds a month grid; a zero year or month uses the current one.
func (a *App) Calendar(year int, month time.Month) calendar.Month {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.clock.Now()
	if year == 0 || month == 0 {
		year, month = now.Year(), now.Month()
	}
	return calendar.Build(a.repo.List(), year, month, now)
}

func (a *App) Analytics() analytics.Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return analytics.Build(a.repo.List(), a.acc.FreeTime(), a.clock.Now())
}

// RecordFreeTime stores today's free minutes in the free-time log.
func (a *App) RecordFreeTime() (gauge.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.clock.Now()
	g := gauge.Compute(a.repo.List(), now, now)
	log := a.acc.FreeTime()
	analytics.Record(log, now, g.FreeMinutes)
	if err := a.acc.SaveFreeTime(log); err != nil {
		return g, err
	}
	return g, nil
}
