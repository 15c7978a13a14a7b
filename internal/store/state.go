// Package store holds the client-side cache of calendars and events and the
// current view position. State changes go through Reduce; network effects
// live in Store.
package store

import (
	"slices"
	"time"

	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/view"
)

// State is a snapshot of the client cache.
type State struct {
	Calendars []calendar.Calendar
	Selected  []calendar.ID
	Events    []calendar.Event
	View      view.Mode
	Date      time.Time
	Loading   bool
	Err       string
}

// IsSelected reports whether the calendar's events are shown.
func (s State) IsSelected(id calendar.ID) bool {
	return slices.Contains(s.Selected, id)
}

// Calendar returns the cached calendar with the given id.
func (s State) Calendar(id calendar.ID) (calendar.Calendar, bool) {
	for _, c := range s.Calendars {
		if c.ID == id {
			return c, true
		}
	}
	return calendar.Calendar{}, false
}

// Action is a state transition.
type Action interface {
	isAction()
}

type (
	// Requested marks the start of a fetch.
	Requested struct{}
	// CalendarsLoaded replaces the calendar list and selects every calendar.
	CalendarsLoaded struct{ Calendars []calendar.Calendar }
	// CalendarAdded appends a calendar and selects it.
	CalendarAdded struct{ Calendar calendar.Calendar }
	// CalendarUpdated replaces the calendar with the same id.
	CalendarUpdated struct{ Calendar calendar.Calendar }
	// CalendarRemoved drops a calendar and deselects it.
	CalendarRemoved struct{ ID calendar.ID }
	// CalendarToggled flips a calendar's selection.
	CalendarToggled struct{ ID calendar.ID }
	// SelectionSet replaces the selection, keeping only known calendars.
	SelectionSet struct{ IDs []calendar.ID }
	// EventsLoaded replaces the event cache.
	EventsLoaded struct{ Events []calendar.Event }
	// EventAdded appends an event.
	EventAdded struct{ Event calendar.Event }
	// EventUpdated replaces the event with id ID.
	EventUpdated struct {
		ID    calendar.ID
		Event calendar.Event
	}
	// EventRemoved drops the event with id ID. With Series set, every
	// occurrence sharing the base id is dropped as well.
	EventRemoved struct {
		ID     calendar.ID
		Series bool
	}
	// ViewSet switches the view mode.
	ViewSet struct{ Mode view.Mode }
	// DateSet moves the reference date.
	DateSet struct{ Date time.Time }
	// Failed records an error and ends loading. Cached data is kept.
	Failed struct{ Err error }
)

func (Requested) isAction()       {}
func (CalendarsLoaded) isAction() {}
func (CalendarAdded) isAction()   {}
func (CalendarUpdated) isAction() {}
func (CalendarRemoved) isAction() {}
func (CalendarToggled) isAction() {}
func (SelectionSet) isAction()    {}
func (EventsLoaded) isAction()    {}
func (EventAdded) isAction()      {}
func (EventUpdated) isAction()    {}
func (EventRemoved) isAction()    {}
func (ViewSet) isAction()         {}
func (DateSet) isAction()         {}
func (Failed) isAction()          {}

// Reduce returns the state after applying a. It never modifies s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Requested:
		s.Loading = true
		s.Err = ""

	case CalendarsLoaded:
		s.Calendars = slices.Clone(a.Calendars)
		s.Selected = make([]calendar.ID, len(a.Calendars))
		for i, c := range a.Calendars {
			s.Selected[i] = c.ID
		}
		s.Loading = false

	case CalendarAdded:
		s.Calendars = append(slices.Clone(s.Calendars), a.Calendar)
		if !s.IsSelected(a.Calendar.ID) {
			s.Selected = append(slices.Clone(s.Selected), a.Calendar.ID)
		}

	case CalendarUpdated:
		s.Calendars = slices.Clone(s.Calendars)
		for i := range s.Calendars {
			if s.Calendars[i].ID == a.Calendar.ID {
				s.Calendars[i] = a.Calendar
			}
		}

	case CalendarRemoved:
		s.Calendars = slices.DeleteFunc(slices.Clone(s.Calendars), func(c calendar.Calendar) bool {
			return c.ID == a.ID
		})
		s.Selected = without(s.Selected, a.ID)

	case CalendarToggled:
		if s.IsSelected(a.ID) {
			s.Selected = without(s.Selected, a.ID)
		} else {
			s.Selected = append(slices.Clone(s.Selected), a.ID)
		}

	case SelectionSet:
		var sel []calendar.ID
		for _, c := range s.Calendars {
			if slices.Contains(a.IDs, c.ID) {
				sel = append(sel, c.ID)
			}
		}
		s.Selected = sel

	case EventsLoaded:
		s.Events = slices.Clone(a.Events)
		s.Loading = false

	case EventAdded:
		s.Events = append(slices.Clone(s.Events), a.Event)

	case EventUpdated:
		s.Events = slices.Clone(s.Events)
		for i := range s.Events {
			if s.Events[i].ID == a.ID {
				s.Events[i] = a.Event
			}
		}

	case EventRemoved:
		s.Events = slices.DeleteFunc(slices.Clone(s.Events), func(e calendar.Event) bool {
			return e.ID == a.ID || (a.Series && e.Ref().Base() == a.ID)
		})

	case ViewSet:
		s.View = a.Mode

	case DateSet:
		s.Date = a.Date

	case Failed:
		s.Loading = false
		if a.Err != nil {
			s.Err = a.Err.Error()
		}
	}
	return s
}

func without(ids []calendar.ID, id calendar.ID) []calendar.ID {
	return slices.DeleteFunc(slices.Clone(ids), func(v calendar.ID) bool { return v == id })
}
