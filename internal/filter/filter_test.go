package filter

import (
	"testing"

	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/config"
)

func TestApply(t *testing.T) {
	events := []calendar.Event{
		{ID: "1", Title: "Team Standup", CalendarName: "Work", Location: "Room 1"},
		{ID: "2", Title: "Lunch", CalendarName: "Personal", Attendees: calendar.Attendees{"bob@example.com"}},
		{ID: "3", Title: "1:1 with Bob", CalendarName: "Work", Description: "weekly sync"},
	}

	tests := []struct {
		name string
		cfg  config.FilterConfig
		want []calendar.ID
	}{
		{
			name: "no rules",
			cfg:  config.FilterConfig{},
			want: []calendar.ID{"1", "2", "3"},
		},
		{
			name: "contains case-insensitive",
			cfg: config.FilterConfig{Rules: []config.FilterRule{
				{Field: "title", Contains: "standup", CaseInsensitive: true},
			}},
			want: []calendar.ID{"1"},
		},
		{
			name: "or mode",
			cfg: config.FilterConfig{Rules: []config.FilterRule{
				{Field: "title", Exact: "Lunch"},
				{Field: "description", Suffix: "sync"},
			}},
			want: []calendar.ID{"2", "3"},
		},
		{
			name: "and mode",
			cfg: config.FilterConfig{Mode: "and", Rules: []config.FilterRule{
				{Field: "calendar", Exact: "Work"},
				{Field: "title", Regex: `^1:1`},
			}},
			want: []calendar.ID{"3"},
		},
		{
			name: "attendee",
			cfg: config.FilterConfig{Rules: []config.FilterRule{
				{Field: "attendee", Prefix: "bob@"},
			}},
			want: []calendar.ID{"2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got := f.Apply(events)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("event %d = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	bad := []config.FilterConfig{
		{Mode: "xor"},
		{Rules: []config.FilterRule{{Field: "organizer", Contains: "x"}}},
		{Rules: []config.FilterRule{{Field: "title"}}},
		{Rules: []config.FilterRule{{Field: "title", Regex: "("}}},
	}
	for i, cfg := range bad {
		if _, err := New(cfg); err == nil {
			t.Errorf("config %d: expected error", i)
		}
	}
}
