// Package form builds and validates event payloads the way the event editor
// does, and runs the save and delete flows.
package form

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cpuguy83/calgrid/internal/calendar"
)

// Validation errors. They are returned before any request is made.
var (
	ErrTitleRequired    = errors.New("please enter an event title")
	ErrTimesRequired    = errors.New("please enter start and end times")
	ErrEndBeforeStart   = errors.New("end time is before start time")
	ErrCalendarRequired = errors.New("please choose a calendar")
	ErrScopeRequired    = errors.New("choose whether to change this event or all events in the series")
	ErrNotEditing       = errors.New("event has not been saved yet")
)

// Defaults used for new events.
type Defaults struct {
	Calendars       []calendar.Calendar
	Timezone        string
	Location        *time.Location
	ReminderMinutes int
}

func (d Defaults) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	if loc, err := time.LoadLocation(d.Timezone); err == nil {
		return loc
	}
	return time.Local
}

func (d Defaults) reminders() []calendar.Reminder {
	return []calendar.Reminder{{MinutesBefore: d.ReminderMinutes, Method: calendar.MethodNotification}}
}

// Form is the editable state of an event.
type Form struct {
	CalendarID     calendar.ID
	Title          string
	Description    string
	Location       string
	Start          time.Time
	End            time.Time
	AllDay         bool
	Timezone       string
	RecurrenceRule string
	Color          string
	Reminders      []calendar.Reminder
	Attendees      []string

	// Scope is required when saving changes to a recurring event.
	Scope calendar.EditScope

	editing *calendar.Event
	loc     *time.Location
}

// New returns a form for a new event in the first calendar, starting at
// start and lasting an hour. A zero start leaves both times empty.
func New(d Defaults, start time.Time) *Form {
	f := &Form{
		Timezone:  d.Timezone,
		Reminders: d.reminders(),
		loc:       d.location(),
	}
	if len(d.Calendars) > 0 {
		f.CalendarID = d.Calendars[0].ID
	}
	f.SetStart(start)
	return f
}

// FromEvent returns a form editing e. Occurrences of a recurring event edit
// their base event.
func FromEvent(e calendar.Event, d Defaults) *Form {
	f := &Form{
		CalendarID:     e.CalendarID,
		Title:          e.Title,
		Description:    e.Description,
		Location:       e.Location,
		AllDay:         e.IsAllDay,
		Timezone:       e.Timezone,
		RecurrenceRule: e.RecurrenceRule,
		Color:          e.Color,
		Attendees:      slices.Clone([]string(e.Attendees)),
		editing:        &e,
		loc:            d.location(),
	}
	if f.Timezone == "" {
		f.Timezone = d.Timezone
	}
	if !e.StartTime.IsZero() {
		f.Start = e.StartTime.In(f.loc)
	}
	if !e.EndTime.IsZero() {
		f.End = e.EndTime.In(f.loc)
	}

	if len(e.Reminders) == 0 {
		f.Reminders = d.reminders()
	} else {
		f.Reminders = make([]calendar.Reminder, len(e.Reminders))
		for i, r := range e.Reminders {
			if r.Method == "" {
				r.Method = calendar.MethodNotification
			}
			f.Reminders[i] = r
		}
	}
	return f
}

// Editing returns the event being edited, or nil for a new event.
func (f *Form) Editing() *calendar.Event {
	return f.editing
}

// IsRecurring reports whether the form edits a recurring event.
func (f *Form) IsRecurring() bool {
	return f.editing != nil && f.editing.IsRecurring()
}

// SetStart sets the start time. When creating an event without an end, the
// end defaults to an hour later.
func (f *Form) SetStart(t time.Time) {
	f.Start = t
	if f.editing == nil && !t.IsZero() && f.End.IsZero() {
		f.End = t.Add(time.Hour)
	}
}

// SetAllDay toggles the all-day flag. Turning it on drops the time of day;
// turning it off puts now's clock time on both dates.
func (f *Form) SetAllDay(on bool, now time.Time) {
	if on == f.AllDay {
		return
	}
	f.AllDay = on

	adjust := func(t time.Time) time.Time {
		if t.IsZero() {
			return t
		}
		y, m, d := t.Date()
		if on {
			return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
		}
		clock := now.In(t.Location())
		return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, t.Location())
	}
	f.Start = adjust(f.Start)
	f.End = adjust(f.End)
}

// AddAttendee appends an attendee unless already present.
func (f *Form) AddAttendee(email string) {
	email = strings.TrimSpace(email)
	if email == "" || slices.Contains(f.Attendees, email) {
		return
	}
	f.Attendees = append(f.Attendees, email)
}

// Validate checks the form before anything is sent.
func (f *Form) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrTitleRequired
	}
	if f.Start.IsZero() || f.End.IsZero() {
		return ErrTimesRequired
	}
	if f.CalendarID == "" {
		return ErrCalendarRequired
	}
	if f.AllDay {
		if dateOf(f.End).Before(dateOf(f.Start)) {
			return ErrEndBeforeStart
		}
	} else if f.End.Before(f.Start) {
		return ErrEndBeforeStart
	}
	if f.IsRecurring() && f.Scope == "" {
		return ErrScopeRequired
	}
	if err := calendar.ValidateRecurrence(f.RecurrenceRule); err != nil {
		return err
	}
	return nil
}

// Payload validates the form and builds the request body. All-day events run
// from 00:00:00 on the start date to 23:59:59 on the end date.
func (f *Form) Payload() (calendar.EventInput, error) {
	if err := f.Validate(); err != nil {
		return calendar.EventInput{}, err
	}

	start, end := f.Start, f.End
	if f.AllDay {
		loc := f.zone()
		sy, sm, sd := start.Date()
		ey, em, ed := end.Date()
		start = time.Date(sy, sm, sd, 0, 0, 0, 0, loc)
		end = time.Date(ey, em, ed, 23, 59, 59, 0, loc)
	}

	in := calendar.EventInput{
		CalendarID:  f.CalendarID,
		Title:       f.Title,
		Description: f.Description,
		Location:    f.Location,
		StartTime:   start,
		EndTime:     end,
		IsAllDay:    f.AllDay,
		Timezone:    f.Timezone,
		IsRecurring: f.RecurrenceRule != "",
		Reminders:   []calendar.Reminder{},
		Attendees:   []string{},
	}
	if f.RecurrenceRule != "" {
		rule := f.RecurrenceRule
		in.RecurrenceRule = &rule
	}
	if f.Color != "" {
		color := f.Color
		in.Color = &color
	}
	for _, r := range f.Reminders {
		if r.MinutesBefore < 0 {
			continue
		}
		if r.Method == "" {
			r.Method = calendar.MethodNotification
		}
		in.Reminders = append(in.Reminders, r)
	}
	for _, a := range f.Attendees {
		if a = strings.TrimSpace(a); a != "" {
			in.Attendees = append(in.Attendees, a)
		}
	}
	return in, nil
}

func (f *Form) zone() *time.Location {
	if f.loc != nil {
		return f.loc
	}
	return f.Start.Location()
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// String describes the form for logs.
func (f *Form) String() string {
	if f.editing != nil {
		return fmt.Sprintf("edit %s %q", f.editing.ID, f.Title)
	}
	return fmt.Sprintf("new %q", f.Title)
}
