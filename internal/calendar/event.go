// Package calendar provides the calendar data model shared by the API client,
// the client-side store and the renderers.
package calendar

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"
)

// DefaultColor is used when neither the event nor its calendar carries a color.
const DefaultColor = "#1a73e8"

// ID is a backend identifier. The backend may send ids as JSON numbers or
// strings; they are kept as strings and re-encoded as numbers when numeric.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	*id = ID(data)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) numeric() bool {
	for i, r := range id {
		if r == '-' && i == 0 && len(id) > 1 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return id != ""
}

// String returns the id as a string.
func (id ID) String() string { return string(id) }

// ReminderMethod is how a reminder is delivered.
type ReminderMethod string

const (
	MethodNotification ReminderMethod = "notification"
	MethodEmail        ReminderMethod = "email"
)

// Reminder fires MinutesBefore minutes ahead of its event's start.
type Reminder struct {
	MinutesBefore int            `json:"minutes_before"`
	Method        ReminderMethod `json:"method"`
}

// Attendees is an ordered list of attendee emails. The backend may return
// either plain strings or objects with an "email" field.
type Attendees []string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Attendees) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Attendees, 0, len(raw))
	for _, r := range raw {
		var email string
		if err := json.Unmarshal(r, &email); err == nil {
			out = append(out, email)
			continue
		}
		var obj struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(r, &obj); err != nil {
			return err
		}
		if obj.Email != "" {
			out = append(out, obj.Email)
		}
	}
	*a = out
	return nil
}

// Event is a calendar event as returned by the backend. Occurrences of a
// recurring event carry ids of the form "<baseId>_<index>".
type Event struct {
	ID             ID         `json:"id"`
	CalendarID     ID         `json:"calendar_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Location       string     `json:"location"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	IsAllDay       bool       `json:"is_all_day"`
	Timezone       string     `json:"timezone"`
	RecurrenceRule string     `json:"recurrence_rule,omitempty"`
	Color          string     `json:"color,omitempty"`
	Reminders      []Reminder `json:"reminders,omitempty"`
	Attendees      Attendees  `json:"attendees,omitempty"`

	// Display-only fields joined in by the backend.
	CalendarColor string `json:"calendar_color,omitempty"`
	CalendarName  string `json:"calendar_name,omitempty"`
}

// Ref returns the event's identity.
func (e *Event) Ref() EventRef {
	return ParseEventRef(string(e.ID))
}

// IsRecurring reports whether the event carries a recurrence rule.
func (e *Event) IsRecurring() bool {
	return e.RecurrenceRule != ""
}

// Duration returns the duration of the event.
func (e *Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// IsOngoing returns true if the event is currently happening.
func (e *Event) IsOngoing(now time.Time) bool {
	return now.After(e.StartTime) && now.Before(e.EndTime)
}

// StartsIn returns how long until the event starts (negative if already started).
func (e *Event) StartsIn(now time.Time) time.Duration {
	return e.StartTime.Sub(now)
}

// DisplayColor returns the event color, falling back to its calendar's color.
func (e *Event) DisplayColor() string {
	switch {
	case e.Color != "":
		return e.Color
	case e.CalendarColor != "":
		return e.CalendarColor
	default:
		return DefaultColor
	}
}

// Calendar is a named collection of events.
type Calendar struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	OwnerID     ID     `json:"owner_id,omitempty"`
	Description string `json:"description"`
}

// Shareable reports whether the calendar can be shared. Only calendars with
// an owner can be.
func (c *Calendar) Shareable() bool {
	return c.OwnerID != ""
}

// Permission is the access level granted by a share.
type Permission string

const (
	PermissionView   Permission = "view"
	PermissionEdit   Permission = "edit"
	PermissionManage Permission = "manage"
)

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	switch p {
	case PermissionView, PermissionEdit, PermissionManage:
		return true
	}
	return false
}

// Share grants a user access to a calendar.
type Share struct {
	UserID     ID         `json:"user_id"`
	Email      string     `json:"email,omitempty"`
	Name       string     `json:"name,omitempty"`
	Permission Permission `json:"permission"`
}

// User is the authenticated account.
type User struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

// EventInput is the payload for creating or updating an event.
type EventInput struct {
	CalendarID     ID         `json:"calendarId"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Location       string     `json:"location"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        time.Time  `json:"endTime"`
	IsAllDay       bool       `json:"isAllDay"`
	Timezone       string     `json:"timezone"`
	IsRecurring    bool       `json:"isRecurring"`
	RecurrenceRule *string    `json:"recurrenceRule"`
	Color          *string    `json:"color"`
	Reminders      []Reminder `json:"reminders"`
	Attendees      []string   `json:"attendees"`
}

// CalendarInput is the payload for creating or updating a calendar.
type CalendarInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Palette is the set of colors assigned to new calendars.
var Palette = []string{"#1a73e8", "#d93025", "#f4b400", "#0f9d58", "#ab47bc", "#ff6d00"}
