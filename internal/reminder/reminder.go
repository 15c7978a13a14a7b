// Package reminder fires desktop notifications for event reminders.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/links"
	"github.com/cpuguy83/calgrid/internal/notify"
)

// ActionJoin is the notification action that opens the meeting link.
const ActionJoin = "join"

// Due is a reminder whose time has come.
type Due struct {
	Event    calendar.Event
	Reminder calendar.Reminder
	At       time.Time
}

func (d Due) key() string {
	return fmt.Sprintf("%s/%d/%d", d.Event.ID, d.Reminder.MinutesBefore, d.Event.StartTime.Unix())
}

// DueAt returns the notification reminders due at now. A reminder is due from
// start - minutesBefore until window later.
func DueAt(events []calendar.Event, now time.Time, window time.Duration) []Due {
	var due []Due
	for _, e := range events {
		for _, r := range e.Reminders {
			if r.Method != calendar.MethodNotification && r.Method != "" {
				continue
			}
			at := e.StartTime.Add(-time.Duration(r.MinutesBefore) * time.Minute)
			if !now.Before(at) && now.Before(at.Add(window)) {
				due = append(due, Due{Event: e, Reminder: r, At: at})
			}
		}
	}
	return due
}

// Sender shows a desktop notification.
type Sender interface {
	Send(ctx context.Context, n notify.Notification) (uint32, error)
}

// Runner dispatches due reminders, each at most once.
type Runner struct {
	sender Sender
	window time.Duration
	urgent time.Duration

	mu    sync.Mutex
	fired map[string]time.Time
	links map[uint32]string
}

// NewRunner creates a runner. Reminders may fire up to window late; events
// starting within urgent are sent as critical.
func NewRunner(sender Sender, window, urgent time.Duration) *Runner {
	return &Runner{
		sender: sender,
		window: window,
		urgent: urgent,
		fired:  make(map[string]time.Time),
		links:  make(map[uint32]string),
	}
}

// Check sends every reminder due at now that has not fired yet and returns
// how many were sent.
func (r *Runner) Check(ctx context.Context, events []calendar.Event, now time.Time) int {
	sent := 0
	for _, d := range DueAt(events, now, r.window) {
		k := d.key()

		r.mu.Lock()
		_, done := r.fired[k]
		if !done {
			r.fired[k] = now
		}
		r.mu.Unlock()
		if done {
			continue
		}

		n, link := Notification(d, now, r.urgent)
		id, err := r.sender.Send(ctx, n)
		if err != nil {
			slog.Warn("failed to send reminder", "event", d.Event.ID, "error", err)
			continue
		}
		if link != "" {
			r.mu.Lock()
			r.links[id] = link
			r.mu.Unlock()
		}
		sent++
	}

	r.prune(now)
	return sent
}

// Link returns the meeting link attached to a sent notification.
func (r *Runner) Link(id uint32) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[id]
	return link, ok
}

// prune forgets reminders that can no longer be due.
func (r *Runner) prune(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-r.window - 24*time.Hour)
	for k, t := range r.fired {
		if t.Before(cutoff) {
			delete(r.fired, k)
		}
	}
}

// Notification builds the desktop notification for a due reminder and returns
// the meeting link offered as an action, if any.
func Notification(d Due, now time.Time, urgent time.Duration) (notify.Notification, string) {
	e := d.Event
	n := notify.Notification{
		Summary: e.Title,
		Urgency: notify.UrgencyNormal,
	}

	until := e.StartTime.Sub(now)
	if until <= urgent {
		n.Urgency = notify.UrgencyCritical
	}

	var body []string
	switch {
	case e.IsAllDay:
		body = append(body, "All day")
	case until <= 0:
		body = append(body, "Now")
	default:
		body = append(body, fmt.Sprintf("In %s (%s)", humanize(until), e.StartTime.In(now.Location()).Format("3:04 PM")))
	}
	if e.Location != "" {
		body = append(body, e.Location)
	}
	n.Body = strings.Join(body, "\n")

	link, ok := links.Detect(e)
	if !ok || !link.IsMeeting() {
		return n, ""
	}
	n.Actions = []notify.Action{{Key: ActionJoin, Label: "Join " + link.Service}}
	return n, link.URL
}

func humanize(d time.Duration) string {
	d = d.Round(time.Minute)
	switch {
	case d < time.Minute:
		return "less than a minute"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	default:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
