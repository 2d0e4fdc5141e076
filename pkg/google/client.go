package google

import (
	"context"
	"fmt"

	"github.com/mo-tomi/nowtask5/pkg/auth"
	"google.golang.org/api/calendar/v3"
)

// FindCalendar returns the id of the calendar whose summary is name.
func FindCalendar(ctx context.Context, srv *calendar.Service, name string) (string, error) {
	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	for _, item := range calendarList.Items {
		if item.Summary == name {
			return item.Id, nil
		}
	}
	return "", fmt.Errorf("calendar '%s' not found", name)
}

// NewService authenticates through flow and resolves the named calendar.
func NewService(ctx context.Context, flow *auth.Flow, calendarName string) (*calendar.Service, string, error) {
	srv, err := flow.CalendarService(ctx)
	if err != nil {
		return nil, "", err
	}
	calendarID, err := FindCalendar(ctx, srv, calendarName)
	if err != nil {
		return nil, "", err
	}
	return srv, calendarID, nil
}
