// Package notify provides desktop notifications via D-Bus.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notifyInterface = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"

	defaultIcon = "x-office-calendar"
)

// Notifier sends desktop notifications via D-Bus.
type Notifier struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	appName string
}

// New connects to the session bus.
func New(appName string) (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}

	return &Notifier{
		conn:    conn,
		obj:     conn.Object(notifyInterface, notifyPath),
		appName: appName,
	}, nil
}

// Close closes the D-Bus connection.
func (n *Notifier) Close() error {
	return n.conn.Close()
}

// Notification represents a desktop notification.
type Notification struct {
	Summary string
	Body    string
	Icon    string
	Timeout time.Duration // 0 = server default, -1 = persistent
	Actions []Action
	Urgency Urgency
}

// Action represents a notification action button.
type Action struct {
	Key   string
	Label string
}

// Urgency levels for notifications.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// expireTimeout converts Timeout to the milliseconds the Notify call takes.
func (n Notification) expireTimeout() int32 {
	switch {
	case n.Timeout > 0:
		return int32(n.Timeout.Milliseconds())
	case n.Timeout < 0:
		return 0
	default:
		return -1
	}
}

// Send shows a notification and returns its server-assigned id.
func (n *Notifier) Send(ctx context.Context, notif Notification) (uint32, error) {
	// [key1, label1, key2, label2, ...]
	var actions []string
	for _, a := range notif.Actions {
		actions = append(actions, a.Key, a.Label)
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(notif.Urgency)),
	}

	icon := notif.Icon
	if icon == "" {
		icon = defaultIcon
	}

	call := n.obj.CallWithContext(ctx,
		notifyInterface+".Notify",
		0,
		n.appName,     // app_name
		uint32(0),     // replaces_id
		icon,          // app_icon
		notif.Summary, // summary
		notif.Body,    // body
		actions,       // actions
		hints,         // hints
		notif.expireTimeout(),
	)
	if call.Err != nil {
		return 0, fmt.Errorf("send notification: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("get notification id: %w", err)
	}

	slog.Debug("sent notification", "id", id, "summary", notif.Summary)
	return id, nil
}

// WatchActions listens for notification action invocations until ctx is done.
// The callback receives the notification ID and action key.
func (n *Notifier) WatchActions(ctx context.Context, callback func(id uint32, actionKey string)) error {
	match := []dbus.MatchOption{
		dbus.WithMatchInterface(notifyInterface),
		dbus.WithMatchMember("ActionInvoked"),
	}
	if err := n.conn.AddMatchSignal(match...); err != nil {
		return fmt.Errorf("add match signal: %w", err)
	}

	ch := make(chan *dbus.Signal, 10)
	n.conn.Signal(ch)

	go func() {
		defer func() {
			n.conn.RemoveSignal(ch)
			n.conn.RemoveMatchSignal(match...)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-ch:
				if !ok {
					return
				}
				if sig.Name != notifyInterface+".ActionInvoked" || len(sig.Body) < 2 {
					continue
				}
				id, ok1 := sig.Body[0].(uint32)
				key, ok2 := sig.Body[1].(string)
				if ok1 && ok2 {
					callback(id, key)
				}
			}
		}
	}()

	return nil
}
