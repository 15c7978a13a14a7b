package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cpuguy83/calgrid/internal/api"
	"github.com/cpuguy83/calgrid/internal/auth"
	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/config"
	"github.com/cpuguy83/calgrid/internal/filter"
	"github.com/cpuguy83/calgrid/internal/form"
	"github.com/cpuguy83/calgrid/internal/render"
	"github.com/cpuguy83/calgrid/internal/store"
	"github.com/cpuguy83/calgrid/internal/view"
)

// App wires the backend client, session and store for one command.
type App struct {
	cfg     *config.Config
	client  *api.Client
	tokens  *auth.TokenStore
	session *auth.Session
	store   *store.Store
	filter  *filter.Filter
	loc     *time.Location

	out io.Writer
	in  *bufio.Reader
}

// NewApp creates the app. Nothing touches the network until a command runs.
func NewApp(cfg *config.Config, out io.Writer, in io.Reader) *App {
	tokens := auth.NewTokenStore(cfg.Auth.TokenFile)
	client := api.New(api.Options{
		BaseURL:   cfg.API.URL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		Tokens:    tokens,
	})
	return &App{
		cfg:     cfg,
		client:  client,
		tokens:  tokens,
		session: auth.NewSession(tokens, client),
		loc:     cfg.Events.Location(),
		out:     out,
		in:      bufio.NewReader(in),
	}
}

func (a *App) now() time.Time {
	return time.Now().In(a.loc)
}

// open restores the session, then the store with the calendars and view
// position saved by the previous run.
func (a *App) open(ctx context.Context) error {
	user, err := a.session.LoadUser(ctx)
	if err != nil && !errors.Is(err, auth.ErrNotAuthenticated) {
		return err
	}
	if route := auth.Resolve(auth.RouteHome, user != nil); route != auth.RouteHome {
		return fmt.Errorf("%w: run 'calgrid login' first", auth.ErrNotAuthenticated)
	}
	slog.Debug("session restored", "user", user.Email)

	f, err := filter.New(a.cfg.Filters)
	if err != nil {
		return fmt.Errorf("filters: %w", err)
	}
	a.filter = f

	snap, err := store.LoadSnapshot(a.cfg.StateFile)
	if err != nil {
		slog.Warn("ignoring saved state", "path", a.cfg.StateFile, "error", err)
		snap = store.Snapshot{}
	}

	mode, err := view.ParseMode(string(snap.View))
	if err != nil || snap.View == "" {
		mode, err = view.ParseMode(a.cfg.View.Default)
		if err != nil {
			return fmt.Errorf("view.default: %w", err)
		}
	}

	a.store = store.New(a.client, store.Options{
		View:         mode,
		Date:         snap.DateIn(a.loc),
		ScheduleDays: a.cfg.View.ScheduleDays,
	})
	if err := a.store.FetchCalendars(ctx); err != nil {
		return fmt.Errorf("load calendars: %w", err)
	}
	a.store.Select(snap.Visible(a.store.State().Calendars))
	return nil
}

// save persists the view position and calendar selection.
func (a *App) save() {
	if a.store == nil {
		return
	}
	if err := store.SaveSnapshot(a.cfg.StateFile, store.SnapshotOf(a.store.State())); err != nil {
		slog.Warn("failed to save state", "path", a.cfg.StateFile, "error", err)
	}
}

func (a *App) print(lines []string) {
	fmt.Fprint(a.out, render.Write(lines))
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

// prompt reads one line from the input when value is empty.
func (a *App) prompt(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// defaults returns the defaults for new events.
func (a *App) defaults() form.Defaults {
	return form.Defaults{
		Calendars:       a.store.State().Calendars,
		Timezone:        a.cfg.Events.Timezone,
		Location:        a.loc,
		ReminderMinutes: a.cfg.Events.ReminderMinutes,
	}
}

func (a *App) submitter() *form.Submitter {
	return &form.Submitter{
		Store:           a.store,
		Mailer:          a.client,
		NotifyAttendees: a.cfg.Events.NotifyAttendeesEnabled(),
	}
}

// findEvent looks an event up in the visible range.
func (a *App) findEvent(ctx context.Context, id string) (*calendar.Event, error) {
	if err := a.store.Refresh(ctx); err != nil {
		return nil, err
	}
	e, ok := calendar.Find(a.store.State().Events, calendar.ID(id))
	if !ok {
		r := a.store.Range()
		return nil, fmt.Errorf("event %s not found between %s and %s; move the view with 'calgrid view -date'",
			id, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	}
	return e, nil
}

// findCalendar returns a loaded calendar by id.
func (a *App) findCalendar(id string) (calendar.Calendar, error) {
	c, ok := a.store.State().Calendar(calendar.ID(id))
	if !ok {
		return c, fmt.Errorf("calendar %s not found", id)
	}
	return c, nil
}
