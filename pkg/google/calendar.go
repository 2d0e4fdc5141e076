package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/index"
	"github.com/mo-tomi/nowtask5/pkg/mirror"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/overdue"
	"github.com/mo-tomi/nowtask5/pkg/storage"
	"github.com/mo-tomi/nowtask5/pkg/util"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// CalendarMirror is a push-only mirror.Port that keeps one calendar event
// per dated task.
type CalendarMirror struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
	overdue    *overdue.Table
	clock      clock.Clock
	log        *logrus.Entry

	mu sync.Mutex
}

var _ mirror.Port = (*CalendarMirror)(nil)

func NewCalendarMirror(srv *calendar.Service, calendarID string, idx *index.EventIndex, table *overdue.Table, clk clock.Clock, logger *logrus.Logger) *CalendarMirror {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CalendarMirror{
		srv:        srv,
		calendarID: calendarID,
		index:      idx,
		overdue:    table,
		clock:      clk,
		log:        logger.WithFields(logrus.Fields{"component": "gcal", "calendar": calendarID}),
	}
}

// Pull always reports ErrNotFound; the calendar is never a source of truth.
func (c *CalendarMirror) Pull(context.Context, string) ([]byte, error) {
	return nil, mirror.ErrNotFound
}

// Push reconciles the calendar with a tasks record. Other keys are ignored.
func (c *CalendarMirror) Push(ctx context.Context, key string, data []byte) error {
	if key != storage.KeyTasks {
		return nil
	}
	var list []model.Task
	if err := storage.DecodeRecord(data, &list); err != nil {
		return fmt.Errorf("failed to decode tasks: %w", err)
	}
	return c.Reconcile(ctx, list)
}

// Reconcile upserts an event for each dated task and deletes events whose
// task is gone or no longer dated.
func (c *CalendarMirror) Reconcile(ctx context.Context, list []model.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	dated := make(map[string]bool, len(list))
	var errs []error

	for i := range list {
		task := &list[i]
		if !task.HasDueDate() {
			continue
		}
		dated[task.ID] = true
		event, err := c.syncEvent(ctx, task, now)
		if err != nil {
			c.log.WithError(err).WithField("task", task.ID).Warn("could not sync task")
			errs = append(errs, fmt.Errorf("task %s: %w", task.ID, err))
			continue
		}
		if c.overdue != nil {
			due := *task.DueDate
			if task.IsCompleted {
				due = time.Time{}
			}
			c.overdue.Update(task.ID, event.Id, task.Title, due, now)
		}
	}

	for _, taskID := range c.index.TaskIDs() {
		if dated[taskID] {
			continue
		}
		eventID := c.index.Get(taskID)
		if err := c.deleteEvent(ctx, eventID); err != nil {
			errs = append(errs, fmt.Errorf("delete event for %s: %w", taskID, err))
			continue
		}
		c.log.WithFields(logrus.Fields{"task": taskID, "event": eventID}).Debug("deleted event")
		c.index.Remove(taskID)
		if c.overdue != nil {
			c.overdue.Remove(taskID)
		}
	}

	if err := c.save(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// syncEvent creates a new event or patches the existing one.
func (c *CalendarMirror) syncEvent(ctx context.Context, task *model.Task, now time.Time) (*calendar.Event, error) {
	event, err := util.ConvertTaskToCalendarEvent(task, now)
	if err != nil {
		return nil, err
	}

	var existing *calendar.Event
	if eventID := c.index.Get(task.ID); eventID != "" {
		existing, err = c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
		if err != nil || existing.Status == "cancelled" {
			existing = nil
		}
	}

	if existing == nil {
		existing, err = c.eventByTaskID(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("error searching for event: %w", err)
		}
	}

	if existing != nil {
		patch := util.EventNeedsUpdate(existing, event)
		if patch == nil {
			c.index.Set(task.ID, existing.Id)
			return existing, nil
		}
		updated, err := c.srv.Events.Patch(c.calendarID, existing.Id, patch).Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		c.index.Set(task.ID, updated.Id)
		return updated, nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	c.index.Set(task.ID, created.Id)
	return created, nil
}

// eventByTaskID searches for an event carrying the task id in its private
// extended properties.
func (c *CalendarMirror) eventByTaskID(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", util.TaskIDProperty, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

// deleteEvent treats an already deleted event as success.
func (c *CalendarMirror) deleteEvent(ctx context.Context, eventID string) error {
	err := c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
		return nil
	}
	return err
}

// Sweep flags events whose task became overdue since the last push.
func (c *CalendarMirror) Sweep(ctx context.Context) (int, error) {
	if c.overdue == nil {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	swept := c.overdue.Sweep(c.clock.Now())
	var errs []error
	n := 0
	for taskID, entry := range swept {
		patch := &calendar.Event{Summary: "! " + entry.Summary}
		if _, err := c.srv.Events.Patch(c.calendarID, entry.EventID, patch).Context(ctx).Do(); err != nil {
			errs = append(errs, fmt.Errorf("flag %s: %w", taskID, err))
			continue
		}
		n++
	}
	if n > 0 {
		c.log.WithField("count", n).Info("flagged overdue events")
	}
	if err := c.save(); err != nil {
		errs = append(errs, err)
	}
	return n, errors.Join(errs...)
}

func (c *CalendarMirror) save() error {
	if err := c.index.Save(); err != nil {
		return fmt.Errorf("failed to save event index: %w", err)
	}
	if c.overdue != nil {
		if err := c.overdue.Save(); err != nil {
			return fmt.Errorf("failed to save overdue table: %w", err)
		}
	}
	return nil
}
