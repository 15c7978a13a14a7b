package calendar

import (
	"slices"
	"sort"
	"time"
)

// Merge combines events from multiple fetches into a single slice.
// Events are sorted by start time.
func Merge(eventSets ...[]Event) []Event {
	var all []Event
	for _, events := range eventSets {
		all = append(all, events...)
	}
	SortByStart(all)
	return all
}

// SortByStart sorts events by start time in place, keeping the original order
// for equal starts.
func SortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
}

// OnDay returns the events starting on the same calendar day as day,
// comparing dates in day's location.
func OnDay(events []Event, day time.Time) []Event {
	y, m, d := day.Date()
	var out []Event
	for _, e := range events {
		ey, em, ed := e.StartTime.In(day.Location()).Date()
		if ey == y && em == m && ed == d {
			out = append(out, e)
		}
	}
	return out
}

// InHour returns the events among the given ones that start within hour h of
// their day in loc.
func InHour(events []Event, h int, loc *time.Location) []Event {
	var out []Event
	for _, e := range events {
		if e.StartTime.In(loc).Hour() == h {
			out = append(out, e)
		}
	}
	return out
}

// InCalendars returns the events whose calendar is one of ids.
func InCalendars(events []Event, ids []ID) []Event {
	var out []Event
	for _, e := range events {
		if slices.Contains(ids, e.CalendarID) {
			out = append(out, e)
		}
	}
	return out
}

// DayGroup is a run of events sharing a start day.
type DayGroup struct {
	Day    time.Time
	Events []Event
}

// GroupByDay sorts events by start and groups them by calendar day in loc.
func GroupByDay(events []Event, loc *time.Location) []DayGroup {
	sorted := slices.Clone(events)
	SortByStart(sorted)

	var groups []DayGroup
	for _, e := range sorted {
		local := e.StartTime.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		if n := len(groups); n > 0 && groups[n-1].Day.Equal(day) {
			groups[n-1].Events = append(groups[n-1].Events, e)
			continue
		}
		groups = append(groups, DayGroup{Day: day, Events: []Event{e}})
	}
	return groups
}

// Find returns the cached event with the given id.
func Find(events []Event, id ID) (*Event, bool) {
	for i := range events {
		if events[i].ID == id {
			return &events[i], true
		}
	}
	return nil, false
}
