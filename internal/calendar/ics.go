package calendar

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ics "github.com/emersion/go-ical"
)

const (
	prodID    = "-//calgrid//calgrid//EN"
	propColor = "COLOR"
)

// WriteICS writes events to an ICS file atomically.
// It writes to a temp file first, then renames to the final path.
func WriteICS(path string, events []Event) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	var buf bytes.Buffer
	if err := EncodeICS(&buf, events); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// EncodeICS writes events as a single VCALENDAR.
func EncodeICS(w io.Writer, events []Event) error {
	cal := ics.NewCalendar()
	cal.Props.SetText(ics.PropVersion, "2.0")
	cal.Props.SetText(ics.PropProductID, prodID)

	stamp := time.Now()
	for _, e := range events {
		cal.Children = append(cal.Children, eventComponent(e, stamp))
	}

	if err := ics.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode ICS: %w", err)
	}
	return nil
}

func eventComponent(e Event, stamp time.Time) *ics.Component {
	comp := ics.NewComponent(ics.CompEvent)

	comp.Props.SetText(ics.PropUID, string(e.ID))
	comp.Props.SetText(ics.PropSummary, e.Title)
	// DTSTAMP is required by the ICS spec
	comp.Props.SetDateTime(ics.PropDateTimeStamp, stamp)

	if e.Description != "" {
		comp.Props.SetText(ics.PropDescription, e.Description)
	}
	if e.Location != "" {
		comp.Props.SetText(ics.PropLocation, e.Location)
	}
	if e.CalendarName != "" {
		comp.Props.SetText("X-CALGRID-CALENDAR", e.CalendarName)
	}
	if e.Color != "" {
		comp.Props.SetText(propColor, e.Color)
	}

	if e.IsAllDay {
		comp.Props.SetDate(ics.PropDateTimeStart, e.StartTime)
		// DTEND is exclusive for date values.
		comp.Props.SetDate(ics.PropDateTimeEnd, e.EndTime.AddDate(0, 0, 1))
	} else {
		comp.Props.SetDateTime(ics.PropDateTimeStart, e.StartTime)
		comp.Props.SetDateTime(ics.PropDateTimeEnd, e.EndTime)
	}

	if e.RecurrenceRule != "" {
		rule := ics.NewProp(ics.PropRecurrenceRule)
		rule.Value = strings.TrimPrefix(e.RecurrenceRule, "RRULE:")
		comp.Props.Set(rule)
	}

	for _, email := range e.Attendees {
		att := ics.NewProp(ics.PropAttendee)
		att.Value = "mailto:" + email
		comp.Props.Add(att)
	}

	for _, r := range e.Reminders {
		alarm := ics.NewComponent(ics.CompAlarm)
		action := "DISPLAY"
		if r.Method == MethodEmail {
			action = "EMAIL"
		}
		alarm.Props.SetText(ics.PropAction, action)
		trigger := ics.NewProp(ics.PropTrigger)
		trigger.Value = fmt.Sprintf("-PT%dM", r.MinutesBefore)
		alarm.Props.Set(trigger)
		alarm.Props.SetText(ics.PropDescription, e.Title)
		comp.Children = append(comp.Children, alarm)
	}

	return comp
}

// ReadICS reads events from an ICS file.
func ReadICS(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ICS file: %w", err)
	}
	defer f.Close()

	return ParseICS(f, time.Local)
}

// ParseICS parses events from an ICS reader. Floating and date-only values
// are interpreted in loc.
func ParseICS(r io.Reader, loc *time.Location) ([]Event, error) {
	dec := ics.NewDecoder(r)

	var events []Event
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode ICS: %w", err)
		}

		for _, comp := range cal.Children {
			if comp.Name != ics.CompEvent {
				continue
			}
			event, err := parseEventComponent(comp, loc)
			if err != nil {
				// Skip events we can't parse
				continue
			}
			events = append(events, event)
		}
	}

	SortByStart(events)
	return events, nil
}

// parseEventComponent converts an ICS VEVENT component to our Event type.
func parseEventComponent(comp *ics.Component, loc *time.Location) (Event, error) {
	event := Event{Timezone: loc.String()}

	if prop := comp.Props.Get(ics.PropUID); prop != nil {
		event.ID = ID(prop.Value)
	}
	if prop := comp.Props.Get(ics.PropSummary); prop != nil {
		event.Title = textValue(prop)
	}
	if prop := comp.Props.Get(ics.PropDescription); prop != nil {
		event.Description = textValue(prop)
	}
	if prop := comp.Props.Get(ics.PropLocation); prop != nil {
		event.Location = textValue(prop)
	}
	if prop := comp.Props.Get(propColor); prop != nil {
		event.Color = prop.Value
	}
	if prop := comp.Props.Get(ics.PropRecurrenceRule); prop != nil {
		event.RecurrenceRule = prop.Value
	}
	for _, prop := range comp.Props[ics.PropAttendee] {
		email := prop.Value
		if len(email) > 7 && strings.EqualFold(email[:7], "mailto:") {
			email = email[7:]
		}
		event.Attendees = append(event.Attendees, email)
	}

	prop := comp.Props.Get(ics.PropDateTimeStart)
	if prop == nil {
		return event, fmt.Errorf("missing DTSTART")
	}
	start, dateOnly, err := parseTimeProp(prop, loc)
	if err != nil {
		return event, fmt.Errorf("parse start time: %w", err)
	}
	event.StartTime = start

	if prop := comp.Props.Get(ics.PropDateTimeEnd); prop != nil {
		end, _, err := parseTimeProp(prop, loc)
		if err != nil {
			return event, fmt.Errorf("parse end time: %w", err)
		}
		event.EndTime = end
	} else if dateOnly {
		event.EndTime = start.AddDate(0, 0, 1)
	} else {
		event.EndTime = start.Add(time.Hour)
	}

	if dateOnly || isEffectivelyAllDay(event.StartTime, event.EndTime) {
		event.IsAllDay = true
		// Exclusive midnight end becomes the last covered day.
		event.EndTime = event.EndTime.Add(-time.Millisecond)
	}

	for _, child := range comp.Children {
		if child.Name != ics.CompAlarm {
			continue
		}
		if rem, ok := parseAlarm(child); ok {
			event.Reminders = append(event.Reminders, rem)
		}
	}

	return event, nil
}

func textValue(prop *ics.Prop) string {
	if s, err := prop.Text(); err == nil {
		return s
	}
	return prop.Value
}

// parseTimeProp parses a DTSTART/DTEND property, reporting date-only values.
func parseTimeProp(prop *ics.Prop, loc *time.Location) (time.Time, bool, error) {
	if t, err := prop.DateTime(loc); err == nil {
		return t, prop.ValueType() == ics.ValueDate, nil
	}
	// Floating time without timezone
	if t, err := time.ParseInLocation("20060102T150405", prop.Value, loc); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation("20060102", prop.Value, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// parseAlarm turns a VALARM with a relative "-PTnM"-style trigger into a reminder.
func parseAlarm(comp *ics.Component) (Reminder, bool) {
	trigger := comp.Props.Get(ics.PropTrigger)
	if trigger == nil {
		return Reminder{}, false
	}
	minutes, ok := triggerMinutes(trigger.Value)
	if !ok {
		return Reminder{}, false
	}
	method := MethodNotification
	if action := comp.Props.Get(ics.PropAction); action != nil && strings.EqualFold(action.Value, "EMAIL") {
		method = MethodEmail
	}
	return Reminder{MinutesBefore: minutes, Method: method}, true
}

// triggerMinutes converts a negative ISO 8601 duration such as -PT15M, -PT1H
// or -P1D into minutes.
func triggerMinutes(v string) (int, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if !strings.HasPrefix(v, "-P") {
		return 0, false
	}
	v = v[2:]

	total, parts := 0, 0
	num := ""
	inTime := false
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'T':
			inTime = true
		default:
			n, err := strconv.Atoi(num)
			if err != nil {
				return 0, false
			}
			num = ""
			parts++
			switch {
			case r == 'W':
				total += n * 7 * 24 * 60
			case r == 'D':
				total += n * 24 * 60
			case r == 'H' && inTime:
				total += n * 60
			case r == 'M' && inTime:
				total += n
			case r == 'S' && inTime:
				total += n / 60
			default:
				return 0, false
			}
		}
	}
	if num != "" || parts == 0 {
		return 0, false
	}
	return total, true
}

// isEffectivelyAllDay returns true if an event spans whole days: both start
// and end fall on local midnight and the event lasts at least one day.
func isEffectivelyAllDay(start, end time.Time) bool {
	if !end.After(start) {
		return false
	}
	ls, le := start.Local(), end.Local()
	midnight := func(t time.Time) bool {
		return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
	}
	return midnight(ls) && midnight(le) && end.Sub(start) >= 23*time.Hour
}
