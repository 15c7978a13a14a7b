package form

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cpuguy83/calgrid/internal/api"
	"github.com/cpuguy83/calgrid/internal/calendar"
)

// Store is the part of the event store the form writes through.
type Store interface {
	CreateEvent(ctx context.Context, in calendar.EventInput) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, ref calendar.EventRef, in calendar.EventInput, scope calendar.EditScope) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, ref calendar.EventRef, deleteAll bool) error
	Refresh(ctx context.Context) error
}

// Mailer sends attendee notifications.
type Mailer interface {
	Notify(ctx context.Context, n api.Notification) error
}

// Submitter saves and deletes events from a form.
type Submitter struct {
	Store  Store
	Mailer Mailer

	// NotifyAttendees enables invite, update and cancel mails.
	NotifyAttendees bool
}

// Result describes a completed save.
type Result struct {
	Event *calendar.Event
	// Recovered is set when the backend reported an error but returned the
	// saved event anyway.
	Recovered bool
}

// Save validates the form, creates or updates the event, mails attendees and
// refreshes the visible range.
func (s *Submitter) Save(ctx context.Context, f *Form) (*Result, error) {
	in, err := f.Payload()
	if err != nil {
		return nil, err
	}

	var (
		ev      *calendar.Event
		eventID calendar.ID
		kind    = api.NotifyInvite
	)
	if f.editing != nil {
		ref := f.editing.Ref()
		eventID = ref.Base()
		kind = api.NotifyUpdate
		ev, err = s.Store.UpdateEvent(ctx, ref, in, f.Scope)
	} else {
		ev, err = s.Store.CreateEvent(ctx, in)
		if ev != nil {
			eventID = ev.ID
		}
	}

	if err != nil {
		saved, ok := api.SavedDespiteError(err)
		if !ok {
			return nil, fmt.Errorf("save event: %w", err)
		}
		slog.Warn("backend reported an error but saved the event", "error", err)
		s.refresh(ctx)
		return &Result{Event: saved, Recovered: true}, nil
	}

	if len(in.Attendees) > 0 {
		s.notify(ctx, api.Notification{
			EventID:        eventID,
			EventData:      api.SummaryOf(in),
			AttendeeEmails: in.Attendees,
			Type:           kind,
		})
	}

	s.refresh(ctx)
	return &Result{Event: ev}, nil
}

// Delete removes the edited event. deleteAll removes the whole series and is
// ignored for events that do not recur. Attendees are told before the event
// is deleted.
func (s *Submitter) Delete(ctx context.Context, f *Form, deleteAll bool) error {
	if f.editing == nil {
		return ErrNotEditing
	}
	ref := f.editing.Ref()
	deleteAll = deleteAll && f.editing.IsRecurring()

	if len(f.Attendees) > 0 {
		s.notify(ctx, api.Notification{
			EventID: ref.Base(),
			EventData: api.NotificationEvent{
				Title:     f.Title,
				StartTime: f.Start,
				EndTime:   f.End,
				IsAllDay:  f.AllDay,
			},
			AttendeeEmails: f.Attendees,
			Type:           api.NotifyCancel,
		})
	}

	if err := s.Store.DeleteEvent(ctx, ref, deleteAll); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	s.refresh(ctx)
	return nil
}

// notify sends an attendee mail. Failures are logged and do not fail the
// save or delete.
func (s *Submitter) notify(ctx context.Context, n api.Notification) {
	if !s.NotifyAttendees || s.Mailer == nil {
		return
	}
	if err := s.Mailer.Notify(ctx, n); err != nil {
		slog.Warn("could not send attendee notifications", "type", n.Type, "event", n.EventID, "error", err)
		return
	}
	slog.Debug("sent attendee notifications", "type", n.Type, "event", n.EventID, "attendees", len(n.AttendeeEmails))
}

func (s *Submitter) refresh(ctx context.Context) {
	if err := s.Store.Refresh(ctx); err != nil {
		slog.Warn("refresh after save failed", "error", err)
	}
}
