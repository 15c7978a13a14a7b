// Package render lays out calendar state as plain text lines.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/cpuguy83/calgrid/internal/calendar"
)

const rule = "━━━━"

func header(s string) string {
	return fmt.Sprintf("%s %s %s", rule, s, rule)
}

// dayLabel returns "Today", "Tomorrow", "Yesterday" or a short date.
func dayLabel(t, now time.Time) string {
	local := t.In(now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return local.Format("Mon, Jan 2")
	}
}

// allDayRange returns "Mon, Jan 2 – Wed, Jan 4" for all-day events spanning
// more than one day, and "" otherwise. An end at midnight is exclusive.
func allDayRange(e *calendar.Event, now time.Time) string {
	loc := now.Location()
	start := e.StartTime.In(loc)
	end := e.EndTime.In(loc)
	if end.After(start) && end.Equal(calendarDay(end)) {
		end = end.Add(-time.Nanosecond)
	}
	if calendarDay(start).Equal(calendarDay(end)) || end.Before(start) {
		return ""
	}
	return fmt.Sprintf("%s – %s", dayLabel(start, now), dayLabel(end, now))
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	hours := d.Hours()
	if hours == float64(int(hours)) {
		return fmt.Sprintf("%dh", int(hours))
	}
	return fmt.Sprintf("%.1fh", hours)
}

// truncate truncates a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// eventLine formats a single event for a list.
func eventLine(e *calendar.Event, now time.Time) string {
	var timeStr string
	switch {
	case e.IsAllDay:
		timeStr = "all day"
		if r := allDayRange(e, now); r != "" {
			timeStr = r
		}
	case e.IsOngoing(now):
		remaining := e.EndTime.Sub(now)
		if remaining < time.Hour {
			timeStr = fmt.Sprintf("NOW (%dm left)", int(remaining.Minutes()))
		} else {
			timeStr = fmt.Sprintf("NOW (%.1fh left)", remaining.Hours())
		}
	default:
		startsIn := e.StartsIn(now)
		if startsIn <= 15*time.Minute && startsIn > 0 {
			timeStr = fmt.Sprintf("in %dm", int(startsIn.Minutes()))
		} else {
			timeStr = e.StartTime.In(now.Location()).Format("15:04")
		}
	}

	line := fmt.Sprintf("  %s  %s", timeStr, e.Title)
	if !e.IsAllDay {
		line += fmt.Sprintf(" (%s)", formatDuration(e.Duration()))
	}
	if e.IsRecurring() {
		line += " ↻"
	}
	if e.CalendarName != "" {
		line += fmt.Sprintf(" [%s]", e.CalendarName)
	}
	return line
}

// splitAllDay separates all-day events from timed ones, keeping order.
func splitAllDay(events []calendar.Event) (allDay, timed []calendar.Event) {
	for _, e := range events {
		if e.IsAllDay {
			allDay = append(allDay, e)
		} else {
			timed = append(timed, e)
		}
	}
	return allDay, timed
}

// eventLines formats events all-day first, then by start time.
func eventLines(events []calendar.Event, now time.Time) []string {
	sorted := calendar.Merge(events)
	allDay, timed := splitAllDay(sorted)

	var lines []string
	for i := range allDay {
		lines = append(lines, eventLine(&allDay[i], now))
	}
	for i := range timed {
		lines = append(lines, eventLine(&timed[i], now))
	}
	return lines
}

// Write joins lines for output.
func Write(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}
