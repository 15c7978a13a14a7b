package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/form"
	"github.com/cpuguy83/calgrid/internal/links"
	"github.com/cpuguy83/calgrid/internal/render"
)

const eventsUsage = "usage: calgrid events create|edit|delete|show"

func runEvents(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		return errors.New(eventsUsage)
	}
	sub, args := args[0], args[1:]

	if err := a.open(ctx); err != nil {
		return err
	}

	switch sub {
	case "create", "new":
		return eventCreate(ctx, a, args)
	case "edit":
		return eventEdit(ctx, a, args)
	case "delete", "rm":
		return eventDelete(ctx, a, args)
	case "show":
		return eventShow(ctx, a, args)
	default:
		return fmt.Errorf("unknown events command %q; %s", sub, eventsUsage)
	}
}

var repeatRules = map[string]string{
	"none":     "",
	"daily":    calendar.RuleDaily,
	"weekly":   calendar.RuleWeekly,
	"monthly":  calendar.RuleMonthly,
	"yearly":   calendar.RuleYearly,
	"weekdays": calendar.RuleWeekdays,
}

// eventFlags are the editable event fields. Only flags given on the command
// line are applied, so edits keep everything else.
type eventFlags struct {
	calendar    string
	title       string
	description string
	location    string
	start       string
	end         string
	allDay      bool
	repeat      string
	color       string

	reminders      []calendar.Reminder
	noReminders    bool
	attendees      []string
	clearAttendees bool
}

func (ef *eventFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&ef.calendar, "calendar", "", "calendar id")
	fs.StringVar(&ef.title, "title", "", "title")
	fs.StringVar(&ef.description, "description", "", "description")
	fs.StringVar(&ef.location, "location", "", "location or meeting link")
	fs.StringVar(&ef.start, "start", "", `start: "2006-01-02 15:04", "2006-01-02" or "15:04"`)
	fs.StringVar(&ef.end, "end", "", "end, same formats as -start")
	fs.BoolVar(&ef.allDay, "all-day", false, "all-day event")
	fs.StringVar(&ef.repeat, "repeat", "", "none, daily, weekly, monthly, yearly, weekdays or an RRULE")
	fs.StringVar(&ef.color, "color", "", "event color as #rrggbb")
	fs.Func("reminder", "reminder in minutes before start (repeatable)", func(s string) error {
		m, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("reminder minutes: %w", err)
		}
		ef.reminders = append(ef.reminders, calendar.Reminder{MinutesBefore: m, Method: calendar.MethodNotification})
		return nil
	})
	fs.BoolVar(&ef.noReminders, "no-reminders", false, "remove all reminders")
	fs.Func("attendee", "attendee email (repeatable)", func(s string) error {
		ef.attendees = append(ef.attendees, s)
		return nil
	})
	fs.BoolVar(&ef.clearAttendees, "clear-attendees", false, "remove existing attendees first")
}

// apply copies the flags that were set onto f.
func (ef *eventFlags) apply(f *form.Form, set map[string]bool, loc *time.Location, now time.Time) error {
	if set["calendar"] {
		f.CalendarID = calendar.ID(ef.calendar)
	}
	if set["title"] {
		f.Title = ef.title
	}
	if set["description"] {
		f.Description = ef.description
	}
	if set["location"] {
		f.Location = ef.location
	}
	if set["color"] {
		f.Color = ef.color
	}
	if set["repeat"] {
		rule, ok := repeatRules[strings.ToLower(ef.repeat)]
		if !ok {
			rule = strings.TrimPrefix(ef.repeat, "RRULE:")
		}
		f.RecurrenceRule = rule
	}

	if set["start"] {
		t, err := parseWhen(ef.start, loc, now)
		if err != nil {
			return fmt.Errorf("-start: %w", err)
		}
		if !set["end"] && !f.Start.IsZero() && !f.End.IsZero() {
			// Keep the duration when moving an event.
			f.End = t.Add(f.End.Sub(f.Start))
		}
		f.SetStart(t)
	}
	if set["end"] {
		t, err := parseWhen(ef.end, loc, now)
		if err != nil {
			return fmt.Errorf("-end: %w", err)
		}
		f.End = t
	}
	if set["all-day"] {
		f.SetAllDay(ef.allDay, now)
	}

	switch {
	case ef.noReminders:
		f.Reminders = nil
	case len(ef.reminders) > 0:
		f.Reminders = ef.reminders
	}
	if ef.clearAttendees {
		f.Attendees = nil
	}
	for _, att := range ef.attendees {
		f.AddAttendee(att)
	}
	return nil
}

// parseWhen accepts a date and time, a date, or a time of day today.
func parseWhen(s string, loc *time.Location, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation("15:04", s, loc); err == nil {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// nextHour returns the start of the hour after now.
func nextHour(now time.Time) time.Time {
	return now.Truncate(time.Hour).Add(time.Hour)
}

func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func (a *App) reportSave(verb string, res *form.Result) {
	if res.Event == nil {
		a.printf("%s event", verb)
		return
	}
	a.printf("%s event %q (id %s)", verb, res.Event.Title, res.Event.ID)
	if res.Recovered {
		a.printf("The backend reported an error, but the event was saved.")
	}
}

func eventCreate(ctx context.Context, a *App, args []string) error {
	fs := flag.NewFlagSet("events create", flag.ContinueOnError)
	var ef eventFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := a.now()
	f := form.New(a.defaults(), nextHour(now))
	if err := ef.apply(f, setFlags(fs), a.loc, now); err != nil {
		return err
	}
	if f.CalendarID != "" {
		if _, err := a.findCalendar(string(f.CalendarID)); err != nil {
			return err
		}
	}

	res, err := a.submitter().Save(ctx, f)
	if err != nil {
		return err
	}
	a.reportSave("Created", res)
	return nil
}

func eventEdit(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: calgrid events edit id [-scope this|all] [flags]")
	}
	e, err := a.findEvent(ctx, args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("events edit", flag.ContinueOnError)
	var ef eventFlags
	ef.register(fs)
	scope := fs.String("scope", "", "for recurring events: this or all")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	f := form.FromEvent(*e, a.defaults())
	if *scope != "" {
		s, err := calendar.ParseEditScope(*scope)
		if err != nil {
			return err
		}
		f.Scope = s
	}
	if err := ef.apply(f, setFlags(fs), a.loc, a.now()); err != nil {
		return err
	}

	res, err := a.submitter().Save(ctx, f)
	if errors.Is(err, form.ErrScopeRequired) {
		return fmt.Errorf("%w (pass -scope this or -scope all)", err)
	}
	if err != nil {
		return err
	}
	a.reportSave("Updated", res)
	return nil
}

func eventDelete(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: calgrid events delete id [-all]")
	}
	e, err := a.findEvent(ctx, args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("events delete", flag.ContinueOnError)
	all := fs.Bool("all", false, "delete every event in the series")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	f := form.FromEvent(*e, a.defaults())
	if err := a.submitter().Delete(ctx, f, *all); err != nil {
		return err
	}
	if *all && e.IsRecurring() {
		a.printf("Deleted all events in the series %q", e.Title)
	} else {
		a.printf("Deleted event %q", e.Title)
	}
	return nil
}

func eventShow(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: calgrid events show id [-open]")
	}
	e, err := a.findEvent(ctx, args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("events show", flag.ContinueOnError)
	open := fs.Bool("open", false, "open the event's meeting link")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	a.print(render.EventDetails(e, a.now()))
	if !*open {
		return nil
	}
	link, ok := links.Detect(*e)
	if !ok {
		return errors.New("event has no link")
	}
	return links.Open(link.URL)
}
