// Package sync keeps the event cache fresh on a cron schedule.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/filter"
	"github.com/cpuguy83/calgrid/internal/store"
)

// Source is the store being refreshed.
type Source interface {
	Refresh(ctx context.Context) error
	State() store.State
	Today(now time.Time)
}

// Syncer refreshes the visible range on a schedule.
type Syncer struct {
	source   Source
	filter   *filter.Filter
	spec     string
	schedule cron.Schedule

	// FollowToday moves the view to the current date before every sync.
	FollowToday bool
}

// NewSyncer creates a syncer. spec is a standard five-field cron expression
// or a descriptor such as "@every 5m" or "@hourly".
func NewSyncer(src Source, f *filter.Filter, spec string) (*Syncer, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse refresh schedule %q: %w", spec, err)
	}
	return &Syncer{
		source:   src,
		filter:   f,
		spec:     spec,
		schedule: schedule,
	}, nil
}

// Next returns the next scheduled sync after t.
func (s *Syncer) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Sync refreshes the store and returns the filtered, sorted events.
func (s *Syncer) Sync(ctx context.Context) ([]calendar.Event, error) {
	if s.FollowToday {
		s.source.Today(time.Now())
	}

	slog.Debug("starting sync")
	if err := s.source.Refresh(ctx); err != nil {
		return nil, err
	}

	st := s.source.State()
	events := calendar.Merge(s.filter.Apply(st.Events))
	slog.Info("sync complete", "fetched", len(st.Events), "after_filter", len(events))
	return events, nil
}

// Run syncs once, then on every scheduled tick, calling onSync after each
// sync completes. The callback receives the synced events (or nil) and any
// error. A tick is skipped while the previous sync is still running.
// Run blocks until the context is cancelled.
func (s *Syncer) Run(ctx context.Context, onSync func([]calendar.Event, error)) {
	events, err := s.Sync(ctx)
	onSync(events, err)

	logger := slogLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() {
		events, err := s.Sync(ctx)
		onSync(events, err)
	}))

	slog.Info("sync scheduled", "schedule", s.spec, "next", s.Next(time.Now()))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
}

// slogLogger adapts slog to cron.Logger.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
