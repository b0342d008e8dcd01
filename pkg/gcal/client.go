// Package gcal wraps the Google Calendar API for event creation. The
// credential lifecycle is owned by an injected oauth2.TokenSource:
// acquired once per process and refreshed on expiry, never read from
// process-global state.
package gcal

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client defines the calendar operations used by the pipeline.
type Client interface {
	CreateEvent(ctx context.Context, calendarID string, event *calendar.Event) (*CreatedEvent, error)
}

// CreatedEvent is the handle for an inserted event.
type CreatedEvent struct {
	ID       string
	HTMLLink string
}

type apiClient struct {
	svc *calendar.Service
}

// NewClient creates a Calendar client authenticated by the given token
// source.
func NewClient(ctx context.Context, ts oauth2.TokenSource) (Client, error) {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, eris.Wrap(err, "gcal: new service")
	}
	return &apiClient{svc: svc}, nil
}

func (c *apiClient) CreateEvent(ctx context.Context, calendarID string, event *calendar.Event) (*CreatedEvent, error) {
	if calendarID == "" {
		calendarID = "primary"
	}

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, eris.Wrap(err, "gcal: insert event")
	}
	return &CreatedEvent{ID: created.Id, HTMLLink: created.HtmlLink}, nil
}
