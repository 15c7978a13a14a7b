package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/form"
	"github.com/cpuguy83/calgrid/internal/render"
	"github.com/cpuguy83/calgrid/internal/view"
)

// viewFlags are the navigation flags shared by view and export.
type viewFlags struct {
	mode  string
	date  string
	prev  bool
	next  bool
	today bool
}

func (v *viewFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&v.mode, "mode", "", "view mode: day, week, month or schedule")
	fs.StringVar(&v.date, "date", "", "reference date (2006-01-02)")
	fs.BoolVar(&v.prev, "prev", false, "step back one view unit")
	fs.BoolVar(&v.next, "next", false, "step forward one view unit")
	fs.BoolVar(&v.today, "today", false, "jump to today")
}

// apply moves the store to the requested view. Mode is applied before the
// date so that -prev and -next step in the new unit.
func (v *viewFlags) apply(a *App) error {
	if v.mode != "" {
		m, err := view.ParseMode(v.mode)
		if err != nil {
			return err
		}
		a.store.SetView(m)
	}
	if v.today {
		a.store.Today(a.now())
	}
	if v.date != "" {
		d, err := time.ParseInLocation("2006-01-02", v.date, a.loc)
		if err != nil {
			return fmt.Errorf("invalid -date %q: %w", v.date, err)
		}
		a.store.SetDate(d)
	}
	switch {
	case v.prev && v.next:
		return errors.New("-prev and -next are mutually exclusive")
	case v.prev:
		a.store.Previous()
	case v.next:
		a.store.Next()
	}
	return nil
}

func runView(ctx context.Context, a *App, args []string) error {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	var vf viewFlags
	vf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.open(ctx); err != nil {
		return err
	}
	if err := vf.apply(a); err != nil {
		return err
	}
	defer a.save()

	if err := a.store.Refresh(ctx); err != nil {
		return err
	}
	st := a.store.State()
	a.print(render.View(st.View, st.Date, a.filter.Apply(st.Events), a.now()))
	return nil
}

func runSearch(ctx context.Context, a *App, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.New("usage: calgrid search query")
	}
	if err := a.open(ctx); err != nil {
		return err
	}

	events, err := a.store.Search(ctx, query)
	if err != nil {
		return err
	}
	a.print(render.SearchResults(query, events, a.now()))
	return nil
}

func runExport(ctx context.Context, a *App, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	output := fs.String("o", "", "output file (default from config)")
	var vf viewFlags
	vf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.open(ctx); err != nil {
		return err
	}
	if err := vf.apply(a); err != nil {
		return err
	}
	if err := a.store.Refresh(ctx); err != nil {
		return err
	}

	path := *output
	if path == "" {
		path = a.cfg.Export.Output
	}
	events := a.filter.Apply(a.store.State().Events)
	if err := calendar.WriteICS(path, events); err != nil {
		return err
	}
	r := a.store.Range()
	a.printf("Exported %d events (%s to %s) to %s", len(events),
		r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"), path)
	return nil
}

func runImport(ctx context.Context, a *App, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	calID := fs.String("calendar", "", "target calendar id (default: first calendar)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: calgrid import [-calendar id] file.ics")
	}

	events, err := calendar.ReadICS(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := a.open(ctx); err != nil {
		return err
	}
	if *calID != "" {
		if _, err := a.findCalendar(*calID); err != nil {
			return err
		}
	}

	// Imported events keep their own attendees but nobody is mailed.
	sub := a.submitter()
	sub.NotifyAttendees = false

	imported := 0
	for _, e := range events {
		f := importForm(e, a.defaults())
		if *calID != "" {
			f.CalendarID = calendar.ID(*calID)
		}
		if _, err := sub.Save(ctx, f); err != nil {
			slog.Warn("skipping event", "title", e.Title, "start", e.StartTime, "error", err)
			continue
		}
		imported++
	}
	a.printf("Imported %d of %d events", imported, len(events))
	return nil
}

// importForm fills a new-event form from a parsed ICS event.
func importForm(e calendar.Event, d form.Defaults) *form.Form {
	f := form.New(d, e.StartTime.In(d.Location))
	f.Title = e.Title
	f.Description = e.Description
	f.Location = e.Location
	f.End = e.EndTime.In(d.Location)
	f.AllDay = e.IsAllDay
	f.RecurrenceRule = e.RecurrenceRule
	f.Color = e.Color
	if len(e.Reminders) > 0 {
		f.Reminders = e.Reminders
	}
	for _, att := range e.Attendees {
		f.AddAttendee(att)
	}
	if e.Timezone != "" {
		f.Timezone = e.Timezone
	}
	return f
}
