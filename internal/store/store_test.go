package store

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/cpuguy83/calgrid/internal/api"
	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/view"
)

type fakeBackend struct {
	calendars []calendar.Calendar
	events    []calendar.Event
	err       error

	listEventsCalls int
	lastQuery       api.EventQuery
	lastScope       calendar.EditScope
	lastUpdateID    calendar.ID
	lastDeleteID    calendar.ID
	lastDeleteAll   bool
	lastSearchIDs   []calendar.ID
}

func (f *fakeBackend) ListCalendars(context.Context) ([]calendar.Calendar, error) {
	return f.calendars, f.err
}

func (f *fakeBackend) CreateCalendar(_ context.Context, in calendar.CalendarInput) (*calendar.Calendar, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &calendar.Calendar{ID: "new", Name: in.Name, Color: in.Color}, nil
}

func (f *fakeBackend) UpdateCalendar(_ context.Context, id calendar.ID, in calendar.CalendarInput) (*calendar.Calendar, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &calendar.Calendar{ID: id, Name: in.Name}, nil
}

func (f *fakeBackend) DeleteCalendar(context.Context, calendar.ID) error {
	return f.err
}

func (f *fakeBackend) ListEvents(_ context.Context, q api.EventQuery) ([]calendar.Event, error) {
	f.listEventsCalls++
	f.lastQuery = q
	return f.events, f.err
}

func (f *fakeBackend) CreateEvent(_ context.Context, in calendar.EventInput) (*calendar.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &calendar.Event{ID: "100", Title: in.Title}, nil
}

func (f *fakeBackend) UpdateEvent(_ context.Context, id calendar.ID, in calendar.EventInput, scope calendar.EditScope) (*calendar.Event, error) {
	f.lastUpdateID = id
	f.lastScope = scope
	if f.err != nil {
		return nil, f.err
	}
	return &calendar.Event{ID: id, Title: in.Title}, nil
}

func (f *fakeBackend) DeleteEvent(_ context.Context, id calendar.ID, deleteAll bool) error {
	f.lastDeleteID = id
	f.lastDeleteAll = deleteAll
	return f.err
}

func (f *fakeBackend) SearchEvents(_ context.Context, _ string, ids []calendar.ID) ([]calendar.Event, error) {
	f.lastSearchIDs = ids
	return f.events, f.err
}

var testCalendars = []calendar.Calendar{
	{ID: "1", Name: "Work"},
	{ID: "2", Name: "Personal"},
}

func newStore(t *testing.T, b *fakeBackend) *Store {
	t.Helper()
	s := New(b, Options{View: view.Week, Date: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)})
	if b.calendars != nil {
		if err := s.FetchCalendars(context.Background()); err != nil {
			t.Fatalf("FetchCalendars: %v", err)
		}
	}
	return s
}

func TestFetchCalendarsSelectsAll(t *testing.T) {
	s := newStore(t, &fakeBackend{calendars: testCalendars})
	st := s.State()
	if !slices.Equal(st.Selected, []calendar.ID{"1", "2"}) {
		t.Errorf("Selected = %v", st.Selected)
	}
	if st.Loading {
		t.Error("still loading")
	}
}

func TestCalendarSelection(t *testing.T) {
	b := &fakeBackend{calendars: testCalendars}
	s := newStore(t, b)
	ctx := context.Background()

	s.ToggleCalendar("1")
	if s.State().IsSelected("1") {
		t.Error("toggle did not deselect")
	}
	s.ToggleCalendar("1")
	if !s.State().IsSelected("1") {
		t.Error("toggle did not reselect")
	}

	cal, err := s.CreateCalendar(ctx, calendar.CalendarInput{Name: "Gym"})
	if err != nil {
		t.Fatalf("CreateCalendar: %v", err)
	}
	if !s.State().IsSelected(cal.ID) || len(s.State().Calendars) != 3 {
		t.Errorf("created calendar not added and selected: %+v", s.State())
	}

	if err := s.DeleteCalendar(ctx, "2"); err != nil {
		t.Fatalf("DeleteCalendar: %v", err)
	}
	st := s.State()
	if _, ok := st.Calendar("2"); ok || st.IsSelected("2") {
		t.Errorf("deleted calendar still present: %+v", st)
	}

	s.Select([]calendar.ID{"new", "ghost"})
	if got := s.State().Selected; !slices.Equal(got, []calendar.ID{"new"}) {
		t.Errorf("Select kept unknown ids: %v", got)
	}
}

func TestFetchEventsNoSelection(t *testing.T) {
	b := &fakeBackend{calendars: testCalendars, events: []calendar.Event{{ID: "1"}}}
	s := newStore(t, b)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(s.State().Events) != 1 {
		t.Fatalf("events = %v", s.State().Events)
	}

	s.ToggleCalendar("1")
	s.ToggleCalendar("2")
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if b.listEventsCalls != 1 {
		t.Errorf("ListEvents called %d times, want 1", b.listEventsCalls)
	}
	if len(s.State().Events) != 0 {
		t.Errorf("events not cleared: %v", s.State().Events)
	}
}

func TestRefreshUsesViewRange(t *testing.T) {
	b := &fakeBackend{calendars: testCalendars}
	s := newStore(t, b)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	wantStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 16, 23, 59, 59, 999_000_000, time.UTC)
	if !b.lastQuery.Start.Equal(wantStart) || !b.lastQuery.End.Equal(wantEnd) {
		t.Errorf("range = %v .. %v", b.lastQuery.Start, b.lastQuery.End)
	}
	if !slices.Equal(b.lastQuery.CalendarIDs, []calendar.ID{"1", "2"}) {
		t.Errorf("calendar ids = %v", b.lastQuery.CalendarIDs)
	}
}

func TestFailureKeepsCache(t *testing.T) {
	b := &fakeBackend{calendars: testCalendars, events: []calendar.Event{{ID: "1"}, {ID: "2"}}}
	s := newStore(t, b)
	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	b.err = errors.New("connection refused")
	if err := s.Refresh(ctx); err == nil {
		t.Fatal("expected error")
	}
	st := s.State()
	if st.Err != "connection refused" || st.Loading {
		t.Errorf("Err = %q, Loading = %v", st.Err, st.Loading)
	}
	if len(st.Events) != 2 {
		t.Errorf("cache dropped on failure: %v", st.Events)
	}
	if _, err := s.CreateEvent(ctx, calendar.EventInput{Title: "x"}); err == nil {
		t.Error("expected CreateEvent error")
	}
	if len(s.State().Events) != 2 {
		t.Error("failed create changed the cache")
	}
}

func TestEventMutations(t *testing.T) {
	b := &fakeBackend{
		calendars: testCalendars,
		events: []calendar.Event{
			{ID: "42_0", Title: "Standup"},
			{ID: "42_1", Title: "Standup"},
			{ID: "7", Title: "Review"},
		},
	}
	s := newStore(t, b)
	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := s.CreateEvent(ctx, calendar.EventInput{Title: "Lunch"}); err != nil {
		t.Fatal(err)
	}
	if n := len(s.State().Events); n != 4 {
		t.Fatalf("after create: %d events", n)
	}

	if _, err := s.UpdateEvent(ctx, calendar.ParseEventRef("42_1"), calendar.EventInput{Title: "Sync"}, calendar.ScopeThis); err != nil {
		t.Fatal(err)
	}
	if b.lastUpdateID != "42" || b.lastScope != calendar.ScopeThis {
		t.Errorf("update sent id %q scope %q", b.lastUpdateID, b.lastScope)
	}

	if _, err := s.UpdateEvent(ctx, calendar.Single("7"), calendar.EventInput{Title: "Retro"}, ""); err != nil {
		t.Fatal(err)
	}
	if ev, _ := calendar.Find(s.State().Events, "7"); ev == nil || ev.Title != "Retro" {
		t.Errorf("event 7 = %+v", ev)
	}

	if err := s.DeleteEvent(ctx, calendar.ParseEventRef("42_0"), true); err != nil {
		t.Fatal(err)
	}
	if b.lastDeleteID != "42" || !b.lastDeleteAll {
		t.Errorf("delete sent id %q all %v", b.lastDeleteID, b.lastDeleteAll)
	}
	for _, e := range s.State().Events {
		if e.Ref().Base() == "42" {
			t.Errorf("occurrence %s survived series delete", e.ID)
		}
	}
}

func TestNavigation(t *testing.T) {
	s := New(&fakeBackend{}, Options{View: view.Month, Date: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)})

	s.Next()
	if got := s.State().Date; got.Month() != time.February || got.Day() != 29 {
		t.Errorf("Next from Jan 31 = %v", got)
	}
	s.SetView(view.Day)
	s.Previous()
	if got := s.State().Date; got.Day() != 28 {
		t.Errorf("Previous day = %v", got)
	}

	s.SetView(view.Schedule)
	before := s.State().Date
	s.Next()
	if !s.State().Date.Equal(before) {
		t.Error("schedule view stepped")
	}

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.Today(now)
	if !s.State().Date.Equal(now) {
		t.Errorf("Today = %v", s.State().Date)
	}
	if r := s.Range(); r.Days() != view.DefaultScheduleDays+1 {
		t.Errorf("schedule range spans %d days", r.Days())
	}
}

func TestSubscribe(t *testing.T) {
	s := New(&fakeBackend{}, Options{})
	var got []view.Mode
	unsub := s.Subscribe(func(st State) { got = append(got, st.View) })

	s.SetView(view.Day)
	s.SetView(view.Week)
	unsub()
	s.SetView(view.Month)

	if !slices.Equal(got, []view.Mode{view.Day, view.Week}) {
		t.Errorf("notifications = %v", got)
	}
}

func TestSearchUsesSelection(t *testing.T) {
	b := &fakeBackend{calendars: testCalendars, events: []calendar.Event{
		{ID: "b", StartTime: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "a", StartTime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}}
	s := newStore(t, b)
	s.ToggleCalendar("2")

	got, err := s.Search(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(b.lastSearchIDs, []calendar.ID{"1"}) {
		t.Errorf("search calendar ids = %v", b.lastSearchIDs)
	}
	if got[0].ID != "a" {
		t.Errorf("results not sorted: %v", got)
	}
}

func TestReduceDoesNotMutate(t *testing.T) {
	s := State{
		Calendars: []calendar.Calendar{{ID: "1"}, {ID: "2"}},
		Selected:  []calendar.ID{"1", "2"},
		Events:    []calendar.Event{{ID: "a"}, {ID: "b"}},
	}
	Reduce(s, CalendarRemoved{ID: "1"})
	Reduce(s, EventRemoved{ID: "a"})
	Reduce(s, EventUpdated{ID: "b", Event: calendar.Event{ID: "b", Title: "changed"}})

	if len(s.Calendars) != 2 || s.Calendars[0].ID != "1" || !slices.Equal(s.Selected, []calendar.ID{"1", "2"}) {
		t.Errorf("calendars mutated: %+v", s)
	}
	if s.Events[0].ID != "a" || s.Events[1].Title != "" {
		t.Errorf("events mutated: %+v", s.Events)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	st := State{
		Calendars: testCalendars,
		Selected:  []calendar.ID{"1"},
		View:      view.Week,
		Date:      time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	path := filepath.Join(t.TempDir(), "state.yaml")
	if err := SaveSnapshot(path, SnapshotOf(st)); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	snap, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.View != view.Week || !slices.Equal(snap.Hidden, []calendar.ID{"2"}) {
		t.Errorf("snapshot = %+v", snap)
	}
	if d := snap.DateIn(time.UTC); !d.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", d)
	}
	if got := snap.Visible(testCalendars); !slices.Equal(got, []calendar.ID{"1"}) {
		t.Errorf("visible = %v", got)
	}

	empty, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil || empty.View != "" {
		t.Errorf("missing snapshot = %+v, %v", empty, err)
	}
}
