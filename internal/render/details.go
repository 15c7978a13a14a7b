package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/links"
)

// EventDetails renders everything known about a single event.
func EventDetails(e *calendar.Event, now time.Time) []string {
	loc := now.Location()
	start := e.StartTime.In(loc)
	end := e.EndTime.In(loc)

	lines := []string{header(truncate(e.Title, 40))}

	if e.IsAllDay {
		when := dayLabel(start, now) + ", all day"
		if r := allDayRange(e, now); r != "" {
			when = r + ", all day"
		}
		lines = append(lines, "  "+when)
	} else {
		lines = append(lines, fmt.Sprintf("  %s, %s - %s (%s)",
			dayLabel(start, now), start.Format("15:04"), end.Format("15:04"), formatDuration(e.Duration())))
	}

	if e.Location != "" {
		lines = append(lines, fmt.Sprintf("  📍 %s", truncate(e.Location, 50)))
	}
	if e.CalendarName != "" {
		lines = append(lines, fmt.Sprintf("  📁 %s", e.CalendarName))
	}
	if e.IsRecurring() {
		lines = append(lines, fmt.Sprintf("  ↻ %s", calendar.RecurrenceLabel(e.RecurrenceRule)))
	}
	for _, r := range e.Reminders {
		method := r.Method
		if method == "" {
			method = calendar.MethodNotification
		}
		lines = append(lines, fmt.Sprintf("  ⏰ %s (%s)", reminderLabel(r.MinutesBefore), method))
	}
	if len(e.Attendees) > 0 {
		lines = append(lines, fmt.Sprintf("  👤 %s", strings.Join(e.Attendees, ", ")))
	}
	if e.Description != "" {
		lines = append(lines, "")
		for _, l := range strings.Split(strings.TrimSpace(e.Description), "\n") {
			lines = append(lines, "  "+l)
		}
	}

	if link, ok := links.Detect(*e); ok {
		lines = append(lines, header("Links"))
		label := link.Service
		if link.IsMeeting() {
			label = "Join " + label
		}
		lines = append(lines, fmt.Sprintf("  🔗 %s: %s", label, link.URL))
	}

	lines = append(lines, fmt.Sprintf("  id %s", e.ID))
	return lines
}

func reminderLabel(minutes int) string {
	switch {
	case minutes == 0:
		return "at start"
	case minutes%(24*60) == 0:
		return fmt.Sprintf("%dd before", minutes/(24*60))
	case minutes%60 == 0:
		return fmt.Sprintf("%dh before", minutes/60)
	default:
		return fmt.Sprintf("%dm before", minutes)
	}
}

// Calendars renders the calendar list with selection marks.
func Calendars(cals []calendar.Calendar, selected func(calendar.ID) bool) []string {
	if len(cals) == 0 {
		return []string{"No calendars"}
	}
	lines := []string{header("Calendars")}
	for i := range cals {
		c := &cals[i]
		mark := " "
		if selected(c.ID) {
			mark = "x"
		}
		color := c.Color
		if color == "" {
			color = calendar.DefaultColor
		}
		line := fmt.Sprintf("  [%s] %s  %s  (id %s)", mark, truncate(c.Name, 30), color, c.ID)
		if c.Shareable() {
			line += " owner"
		}
		lines = append(lines, line)
	}
	return lines
}

// Shares renders who a calendar is shared with.
func Shares(cal calendar.Calendar, shares []calendar.Share) []string {
	lines := []string{header("Shared: " + cal.Name)}
	if len(shares) == 0 {
		return append(lines, "  (not shared)")
	}
	for _, s := range shares {
		who := s.Email
		if s.Name != "" {
			who = fmt.Sprintf("%s <%s>", s.Name, s.Email)
		}
		lines = append(lines, fmt.Sprintf("  %s  %s  (user %s)", who, s.Permission, s.UserID))
	}
	return lines
}
