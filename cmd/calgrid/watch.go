package main

import (
	"context"
	"flag"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/links"
	"github.com/cpuguy83/calgrid/internal/notify"
	"github.com/cpuguy83/calgrid/internal/reminder"
	"github.com/cpuguy83/calgrid/internal/render"
	"github.com/cpuguy83/calgrid/internal/sync"
)

// reminderTick is how often due reminders are checked.
const reminderTick = 30 * time.Second

// watcher holds the events of the last successful sync.
type watcher struct {
	app    *App
	runner *reminder.Runner
	quiet  bool

	mu     gosync.RWMutex
	events []calendar.Event
}

func runWatch(ctx context.Context, a *App, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	quiet := fs.Bool("q", false, "do not print the view after each sync")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.open(ctx); err != nil {
		return err
	}
	defer a.save()

	syncer, err := sync.NewSyncer(a.store, a.filter, a.cfg.Refresh.Schedule)
	if err != nil {
		return err
	}
	syncer.FollowToday = true

	w := &watcher{app: a, quiet: *quiet}

	if a.cfg.Notifications.Enabled {
		notifier, err := notify.New("calgrid")
		if err != nil {
			slog.Warn("failed to initialize notifications", "error", err)
		} else {
			defer notifier.Close()
			w.runner = reminder.NewRunner(notifier, a.cfg.Notifications.Window, a.cfg.Notifications.Urgent)
			if err := notifier.WatchActions(ctx, w.onAction); err != nil {
				slog.Warn("failed to watch notification actions", "error", err)
			}
		}
	}

	if w.runner != nil {
		go w.reminderLoop(ctx)
	}

	slog.Info("calgrid watching", "schedule", a.cfg.Refresh.Schedule, "notifications", w.runner != nil)
	syncer.Run(ctx, w.onSync)
	slog.Info("shutting down")
	return nil
}

// onSync is called after each sync completes.
func (w *watcher) onSync(events []calendar.Event, err error) {
	if err != nil {
		// Keep old events on error
		slog.Warn("sync failed", "error", err)
		return
	}

	w.mu.Lock()
	w.events = events
	w.mu.Unlock()

	if w.quiet {
		return
	}
	st := w.app.store.State()
	w.app.print(render.View(st.View, st.Date, events, w.app.now()))
}

// reminderLoop checks for due reminders until ctx is done.
func (w *watcher) reminderLoop(ctx context.Context) {
	ticker := time.NewTicker(reminderTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.mu.RLock()
			events := w.events
			w.mu.RUnlock()
			if n := w.runner.Check(ctx, events, time.Now()); n > 0 {
				slog.Debug("sent reminders", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// onAction opens the meeting link when a reminder's join action is clicked.
func (w *watcher) onAction(id uint32, key string) {
	slog.Debug("notification action", "id", id, "action", key)
	if key != reminder.ActionJoin {
		return
	}
	link, ok := w.runner.Link(id)
	if !ok {
		return
	}
	if err := links.Open(link); err != nil {
		slog.Warn("failed to open meeting link", "url", link, "error", err)
	}
}
