package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cpuguy83/calgrid/internal/api"
	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/view"
)

// Backend is the subset of the API client the store uses.
type Backend interface {
	ListCalendars(ctx context.Context) ([]calendar.Calendar, error)
	CreateCalendar(ctx context.Context, in calendar.CalendarInput) (*calendar.Calendar, error)
	UpdateCalendar(ctx context.Context, id calendar.ID, in calendar.CalendarInput) (*calendar.Calendar, error)
	DeleteCalendar(ctx context.Context, id calendar.ID) error

	ListEvents(ctx context.Context, q api.EventQuery) ([]calendar.Event, error)
	CreateEvent(ctx context.Context, in calendar.EventInput) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, id calendar.ID, in calendar.EventInput, scope calendar.EditScope) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, id calendar.ID, deleteAll bool) error
	SearchEvents(ctx context.Context, q string, calendarIDs []calendar.ID) ([]calendar.Event, error)
}

// Options configures a Store.
type Options struct {
	View         view.Mode
	Date         time.Time
	ScheduleDays int
}

// Store owns the client cache. Requests run outside the lock and their
// results replace state wholesale, so when two fetches overlap the one that
// finishes last wins even if it was started first.
type Store struct {
	backend      Backend
	scheduleDays int

	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int
}

// New creates a store over backend.
func New(backend Backend, opts Options) *Store {
	if opts.View == "" {
		opts.View = view.Month
	}
	if opts.Date.IsZero() {
		opts.Date = time.Now()
	}
	if opts.ScheduleDays <= 0 {
		opts.ScheduleDays = view.DefaultScheduleDays
	}
	return &Store{
		backend:      backend,
		scheduleDays: opts.ScheduleDays,
		state:        State{View: opts.View, Date: opts.Date},
		subs:         make(map[int]func(State)),
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called after every transition. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Dispatch applies an action and notifies subscribers.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	st := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
	return st
}

func (s *Store) fail(err error) error {
	s.Dispatch(Failed{Err: err})
	return err
}

// FetchCalendars loads the calendar list and selects every calendar.
func (s *Store) FetchCalendars(ctx context.Context) error {
	s.Dispatch(Requested{})
	cals, err := s.backend.ListCalendars(ctx)
	if err != nil {
		return s.fail(err)
	}
	s.Dispatch(CalendarsLoaded{Calendars: cals})
	slog.Debug("fetched calendars", "count", len(cals))
	return nil
}

// CreateCalendar creates a calendar and selects it.
func (s *Store) CreateCalendar(ctx context.Context, in calendar.CalendarInput) (*calendar.Calendar, error) {
	cal, err := s.backend.CreateCalendar(ctx, in)
	if err != nil {
		return nil, s.fail(err)
	}
	s.Dispatch(CalendarAdded{Calendar: *cal})
	return cal, nil
}

// UpdateCalendar updates a calendar.
func (s *Store) UpdateCalendar(ctx context.Context, id calendar.ID, in calendar.CalendarInput) (*calendar.Calendar, error) {
	cal, err := s.backend.UpdateCalendar(ctx, id, in)
	if err != nil {
		return nil, s.fail(err)
	}
	s.Dispatch(CalendarUpdated{Calendar: *cal})
	return cal, nil
}

// DeleteCalendar deletes a calendar and deselects it.
func (s *Store) DeleteCalendar(ctx context.Context, id calendar.ID) error {
	if err := s.backend.DeleteCalendar(ctx, id); err != nil {
		return s.fail(err)
	}
	s.Dispatch(CalendarRemoved{ID: id})
	return nil
}

// ToggleCalendar flips whether a calendar's events are shown.
func (s *Store) ToggleCalendar(id calendar.ID) {
	s.Dispatch(CalendarToggled{ID: id})
}

// Select replaces the set of shown calendars.
func (s *Store) Select(ids []calendar.ID) {
	s.Dispatch(SelectionSet{IDs: ids})
}

// FetchEvents loads the events of the selected calendars within r. With no
// calendar selected the cache is emptied and no request is made.
func (s *Store) FetchEvents(ctx context.Context, r view.Range) error {
	selected := s.State().Selected
	if len(selected) == 0 {
		s.Dispatch(EventsLoaded{})
		return nil
	}

	s.Dispatch(Requested{})
	events, err := s.backend.ListEvents(ctx, api.EventQuery{
		CalendarIDs: selected,
		Start:       r.Start,
		End:         r.End,
	})
	if err != nil {
		return s.fail(err)
	}
	s.Dispatch(EventsLoaded{Events: events})
	slog.Debug("fetched events", "count", len(events), "start", r.Start, "end", r.End)
	return nil
}

// CreateEvent creates an event and adds it to the cache.
func (s *Store) CreateEvent(ctx context.Context, in calendar.EventInput) (*calendar.Event, error) {
	ev, err := s.backend.CreateEvent(ctx, in)
	if err != nil {
		return nil, s.fail(err)
	}
	s.Dispatch(EventAdded{Event: *ev})
	return ev, nil
}

// UpdateEvent updates the event ref points at. Occurrences are updated
// through their base event; scope chooses between this occurrence and the
// whole series.
func (s *Store) UpdateEvent(ctx context.Context, ref calendar.EventRef, in calendar.EventInput, scope calendar.EditScope) (*calendar.Event, error) {
	id := ref.Base()
	ev, err := s.backend.UpdateEvent(ctx, id, in, scope)
	if err != nil {
		return nil, s.fail(err)
	}
	s.Dispatch(EventUpdated{ID: id, Event: *ev})
	return ev, nil
}

// DeleteEvent deletes the event ref points at. deleteAll removes every
// occurrence of a recurring event.
func (s *Store) DeleteEvent(ctx context.Context, ref calendar.EventRef, deleteAll bool) error {
	id := ref.Base()
	if err := s.backend.DeleteEvent(ctx, id, deleteAll); err != nil {
		return s.fail(err)
	}
	if deleteAll {
		s.Dispatch(EventRemoved{ID: id, Series: true})
	} else {
		s.Dispatch(EventRemoved{ID: calendar.ID(ref.String())})
	}
	return nil
}

// Search runs a text search over the selected calendars. Results are not
// cached.
func (s *Store) Search(ctx context.Context, q string) ([]calendar.Event, error) {
	events, err := s.backend.SearchEvents(ctx, q, s.State().Selected)
	if err != nil {
		return nil, s.fail(err)
	}
	calendar.SortByStart(events)
	return events, nil
}

// SetView switches the view mode.
func (s *Store) SetView(m view.Mode) {
	s.Dispatch(ViewSet{Mode: m})
}

// SetDate moves the reference date.
func (s *Store) SetDate(t time.Time) {
	s.Dispatch(DateSet{Date: t})
}

// Next steps the reference date forward by one view unit.
func (s *Store) Next() {
	st := s.State()
	s.SetDate(view.Next(st.Date, st.View))
}

// Previous steps the reference date back by one view unit.
func (s *Store) Previous() {
	st := s.State()
	s.SetDate(view.Previous(st.Date, st.View))
}

// Today resets the reference date to now.
func (s *Store) Today(now time.Time) {
	s.SetDate(now)
}

// Range returns the visible date range for the current view and date.
func (s *Store) Range() view.Range {
	st := s.State()
	return view.RangeWithLookahead(st.Date, st.View, s.scheduleDays)
}

// Refresh refetches the events of the visible range.
func (s *Store) Refresh(ctx context.Context) error {
	return s.FetchEvents(ctx, s.Range())
}
