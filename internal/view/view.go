// Package view derives visible date windows, month grids and navigation steps
// for the calendar view modes.
package view

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the active calendar layout.
type Mode string

const (
	Day      Mode = "day"
	Week     Mode = "week"
	Month    Mode = "month"
	Schedule Mode = "schedule"
)

// DefaultScheduleDays is how far past the reference date the schedule view looks.
const DefaultScheduleDays = 30

// GridCells is the number of cells in a month grid (six full weeks).
const GridCells = 42

// Modes lists every view mode in display order.
var Modes = []Mode{Day, Week, Month, Schedule}

// ParseMode parses a view mode name (case-insensitive).
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Day, Week, Month, Schedule:
		return m, nil
	}
	return "", fmt.Errorf("unknown view mode %q (use day, week, month or schedule)", s)
}

// Range is an inclusive window of whole days.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days returns the number of calendar days covered by the range.
func (r Range) Days() int {
	n := 0
	for d := StartOfDay(r.Start); !d.After(r.End); d = addDays(d, 1) {
		n++
	}
	return n
}

// Cell is one day in a month grid.
type Cell struct {
	Date           time.Time
	IsCurrentMonth bool
}

// StartOfDay returns 00:00:00.000 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// ComputeRange returns the window of events to load for ref under the given mode,
// using the default schedule look-ahead.
func ComputeRange(ref time.Time, mode Mode) Range {
	return RangeWithLookahead(ref, mode, DefaultScheduleDays)
}

// RangeWithLookahead is ComputeRange with an explicit schedule look-ahead in days.
// Unknown modes are treated as schedule.
func RangeWithLookahead(ref time.Time, mode Mode, scheduleDays int) Range {
	switch mode {
	case Day:
		return Range{Start: StartOfDay(ref), End: EndOfDay(ref)}
	case Week:
		start := addDays(StartOfDay(ref), -int(ref.Weekday()))
		return Range{Start: start, End: EndOfDay(addDays(start, 6))}
	case Month:
		y, m, _ := ref.Date()
		loc := ref.Location()
		return Range{
			Start: time.Date(y, m, 1, 0, 0, 0, 0, loc),
			// Day 0 of the next month is the last day of this one.
			End: EndOfDay(time.Date(y, m+1, 0, 0, 0, 0, 0, loc)),
		}
	default:
		return Range{Start: StartOfDay(ref), End: EndOfDay(addDays(ref, scheduleDays))}
	}
}

// MonthGrid returns the 42 Sunday-first cells shown for ref's month: the days
// before the 1st that complete its week, every day of the month, then days of
// the following month.
func MonthGrid(ref time.Time) []Cell {
	y, m, _ := ref.Date()
	loc := ref.Location()
	lead := int(time.Date(y, m, 1, 0, 0, 0, 0, loc).Weekday())

	cells := make([]Cell, 0, GridCells)
	for i := 0; i < GridCells; i++ {
		d := time.Date(y, m, 1-lead+i, 0, 0, 0, 0, loc)
		cells = append(cells, Cell{Date: d, IsCurrentMonth: d.Month() == m && d.Year() == y})
	}
	return cells
}

// WeekDays returns the seven days (Sunday first) of ref's week at midnight.
func WeekDays(ref time.Time) []time.Time {
	start := addDays(StartOfDay(ref), -int(ref.Weekday()))
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = addDays(start, i)
	}
	return days
}

// Step moves ref by n units of the mode: days, weeks or months. Month steps
// clamp to the last day of the target month. Schedule view does not step.
func Step(ref time.Time, mode Mode, n int) time.Time {
	switch mode {
	case Day:
		return addDays(ref, n)
	case Week:
		return addDays(ref, 7*n)
	case Month:
		return addMonths(ref, n)
	default:
		return ref
	}
}

// Next steps one unit forward.
func Next(ref time.Time, mode Mode) time.Time { return Step(ref, mode, 1) }

// Previous steps one unit back.
func Previous(ref time.Time, mode Mode) time.Time { return Step(ref, mode, -1) }

// Title is the header label for ref: "March 2024" in month view,
// "March 15, 2024" otherwise.
func Title(ref time.Time, mode Mode) string {
	if mode == Month {
		return ref.Format("January 2006")
	}
	return ref.Format("January 2, 2006")
}

// HourLabel formats an hour of the day (0-23) on a 12-hour clock.
func HourLabel(h int) string {
	switch {
	case h == 0:
		return "12 AM"
	case h < 12:
		return fmt.Sprintf("%d AM", h)
	case h == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", h-12)
	}
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func addDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, loc)
	if last := DaysIn(first.Year(), first.Month(), loc); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
