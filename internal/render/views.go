package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/view"
)

var weekdayHeader = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// View renders events for ref in the given mode. now supplies the display
// location and the relative day labels.
func View(mode view.Mode, ref time.Time, events []calendar.Event, now time.Time) []string {
	ref = ref.In(now.Location())
	switch mode {
	case view.Day:
		return Day(ref, events, now)
	case view.Week:
		return Week(ref, events, now)
	case view.Month:
		return Month(ref, events, now)
	default:
		return Schedule(events, now)
	}
}

// Month renders a 6x7 grid for ref's month followed by the events of each
// day that has any. Days outside the month are shown in parentheses, days
// with events carry a dot and today is marked with ">".
func Month(ref time.Time, events []calendar.Event, now time.Time) []string {
	lines := []string{header(view.Title(ref, view.Month))}

	var hdr []string
	for _, d := range weekdayHeader {
		hdr = append(hdr, " "+d)
	}
	lines = append(lines, strings.Join(hdr, " "))

	cells := view.MonthGrid(ref)
	for row := 0; row < len(cells)/7; row++ {
		var out []string
		for _, c := range cells[row*7 : row*7+7] {
			out = append(out, monthCell(c, events, now))
		}
		lines = append(lines, strings.Join(out, " "))
	}

	for _, g := range calendar.GroupByDay(events, ref.Location()) {
		if g.Day.Month() != ref.Month() || g.Day.Year() != ref.Year() {
			continue
		}
		lines = append(lines, header(dayLabel(g.Day, now)))
		lines = append(lines, eventLines(g.Events, now)...)
	}
	return lines
}

func monthCell(c view.Cell, events []calendar.Event, now time.Time) string {
	if !c.IsCurrentMonth {
		return fmt.Sprintf("(%2d)", c.Date.Day())
	}
	pre := " "
	if view.SameDay(c.Date, now) {
		pre = ">"
	}
	mark := " "
	if len(calendar.OnDay(events, c.Date)) > 0 {
		mark = "•"
	}
	return fmt.Sprintf("%s%2d%s", pre, c.Date.Day(), mark)
}

// Week renders the seven days of ref's week, Sunday first.
func Week(ref time.Time, events []calendar.Event, now time.Time) []string {
	days := view.WeekDays(ref)
	lines := []string{header(fmt.Sprintf("%s – %s",
		days[0].Format("Jan 2"), days[6].Format("Jan 2, 2006")))}

	for _, day := range days {
		lines = append(lines, header(dayLabel(day, now)))
		dayEvents := calendar.OnDay(events, day)
		if len(dayEvents) == 0 {
			lines = append(lines, "  (no events)")
			continue
		}
		lines = append(lines, eventLines(dayEvents, now)...)
	}
	return lines
}

// Day renders ref's all-day events followed by one row per hour.
func Day(ref time.Time, events []calendar.Event, now time.Time) []string {
	lines := []string{header(view.Title(ref, view.Day))}

	dayEvents := calendar.Merge(calendar.OnDay(events, ref))
	allDay, timed := splitAllDay(dayEvents)
	for _, e := range allDay {
		lines = append(lines, fmt.Sprintf("%5s │ %s", "all", e.Title))
	}

	for h := 0; h < 24; h++ {
		var titles []string
		for _, e := range calendar.InHour(timed, h, ref.Location()) {
			titles = append(titles, fmt.Sprintf("%s %s", e.StartTime.In(ref.Location()).Format("15:04"), e.Title))
		}
		lines = append(lines, strings.TrimRight(fmt.Sprintf("%5s │ %s", view.HourLabel(h), strings.Join(titles, ", ")), " "))
	}
	return lines
}

// Schedule renders events grouped by day.
func Schedule(events []calendar.Event, now time.Time) []string {
	groups := calendar.GroupByDay(events, now.Location())
	if len(groups) == 0 {
		return []string{"No upcoming events"}
	}

	var lines []string
	for _, g := range groups {
		lines = append(lines, header(dayLabel(g.Day, now)))
		lines = append(lines, eventLines(g.Events, now)...)
	}
	return lines
}

// SearchResults renders matches with their ids so they can be opened.
func SearchResults(query string, events []calendar.Event, now time.Time) []string {
	lines := []string{header(fmt.Sprintf("%d results for %q", len(events), query))}
	for i := range events {
		e := &events[i]
		lines = append(lines, fmt.Sprintf("%s  %s  (id %s)",
			eventLine(e, now), dayLabel(e.StartTime, now), e.ID))
	}
	return lines
}

// PickItems renders one unique line per event for an interactive picker.
func PickItems(events []calendar.Event, now time.Time) []string {
	items := make([]string, len(events))
	for i := range events {
		e := &events[i]
		items[i] = fmt.Sprintf("%s %s  #%s", dayLabel(e.StartTime, now), strings.TrimSpace(eventLine(e, now)), e.ID)
	}
	return items
}
