package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cpuguy83/calgrid/internal/calendar"
)

// NotificationType selects the attendee mail template.
type NotificationType string

const (
	NotifyInvite NotificationType = "invite"
	NotifyUpdate NotificationType = "update"
	NotifyCancel NotificationType = "cancel"
)

// EventQuery selects events for a time range.
type EventQuery struct {
	CalendarIDs []calendar.ID
	Start       time.Time
	End         time.Time
}

// Notification asks the backend to mail attendees about an event.
type Notification struct {
	EventID        calendar.ID       `json:"eventId"`
	EventData      NotificationEvent `json:"eventData"`
	AttendeeEmails []string          `json:"attendeeEmails"`
	Type           NotificationType  `json:"notificationType"`
}

// NotificationEvent is the event summary included in attendee mails.
type NotificationEvent struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	IsAllDay    bool      `json:"isAllDay"`
}

// SummaryOf builds the mail summary for an event payload.
func SummaryOf(in calendar.EventInput) NotificationEvent {
	return NotificationEvent{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		IsAllDay:    in.IsAllDay,
	}
}

// ListEvents returns the events of the given calendars overlapping the range.
// Recurring events come back expanded into occurrences.
func (c *Client) ListEvents(ctx context.Context, q EventQuery) ([]calendar.Event, error) {
	query := url.Values{}
	query.Set("calendarIds", joinIDs(q.CalendarIDs))
	query.Set("startDate", isoTime(q.Start))
	query.Set("endDate", isoTime(q.End))

	var events []calendar.Event
	if err := c.do(ctx, http.MethodGet, "/events", query, nil, &events); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// SearchEvents runs a text search over the given calendars.
func (c *Client) SearchEvents(ctx context.Context, q string, calendarIDs []calendar.ID) ([]calendar.Event, error) {
	query := url.Values{}
	query.Set("q", q)
	query.Set("calendarIds", joinIDs(calendarIDs))

	var events []calendar.Event
	if err := c.do(ctx, http.MethodGet, "/events/search", query, nil, &events); err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return events, nil
}

// CreateEvent creates an event. The backend answers either with the event or
// with {"data": {"id": ...}}; both are accepted.
func (c *Client) CreateEvent(ctx context.Context, in calendar.EventInput) (*calendar.Event, error) {
	var resp struct {
		calendar.Event
		Data *struct {
			ID calendar.ID `json:"id"`
		} `json:"data,omitempty"`
	}
	if err := c.do(ctx, http.MethodPost, "/events", nil, in, &resp); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	ev := resp.Event
	if ev.ID == "" && resp.Data != nil {
		ev.ID = resp.Data.ID
	}
	return &ev, nil
}

// UpdateEvent updates the event with the given base id. For recurring events
// scope selects whether only this occurrence or the whole series changes.
func (c *Client) UpdateEvent(ctx context.Context, id calendar.ID, in calendar.EventInput, scope calendar.EditScope) (*calendar.Event, error) {
	var query url.Values
	if scope != "" {
		query = url.Values{"scope": {string(scope)}}
	}

	var ev calendar.Event
	if err := c.do(ctx, http.MethodPut, eventPath(id), query, in, &ev); err != nil {
		return nil, fmt.Errorf("update event %s: %w", id, err)
	}
	if ev.ID == "" {
		ev.ID = id
	}
	return &ev, nil
}

// DeleteEvent deletes the event with the given base id. deleteAll removes
// every occurrence of a recurring event.
func (c *Client) DeleteEvent(ctx context.Context, id calendar.ID, deleteAll bool) error {
	var query url.Values
	if deleteAll {
		query = url.Values{"deleteAll": {"true"}}
	}
	if err := c.do(ctx, http.MethodDelete, eventPath(id), query, nil, nil); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}

// Notify asks the backend to mail the attendees of an event.
func (c *Client) Notify(ctx context.Context, n Notification) error {
	if err := c.do(ctx, http.MethodPost, "/events/notify", nil, n, nil); err != nil {
		return fmt.Errorf("notify attendees: %w", err)
	}
	return nil
}

func eventPath(id calendar.ID) string {
	return "/events/" + url.PathEscape(string(id))
}

func joinIDs(ids []calendar.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
