package links

import (
	"testing"

	"github.com/cpuguy83/calgrid/internal/calendar"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		event       calendar.Event
		wantURL     string
		wantService string
	}{
		{
			name:        "zoom in location",
			event:       calendar.Event{Location: "https://example.zoom.us/j/123?pwd=abc"},
			wantURL:     "https://example.zoom.us/j/123?pwd=abc",
			wantService: "Zoom",
		},
		{
			name: "meeting service beats generic url",
			event: calendar.Event{
				Location:    "https://maps.example.com/office",
				Description: "Join at https://meet.google.com/abc-defg-hij",
			},
			wantURL:     "https://meet.google.com/abc-defg-hij",
			wantService: "Meet",
		},
		{
			name:        "generic fallback",
			event:       calendar.Event{Description: "Agenda: https://docs.example.com/a"},
			wantURL:     "https://docs.example.com/a",
			wantService: "Link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := Detect(tt.event)
			if !ok {
				t.Fatal("no link detected")
			}
			if l.URL != tt.wantURL || l.Service != tt.wantService {
				t.Errorf("Detect = %+v, want %s %s", l, tt.wantURL, tt.wantService)
			}
		})
	}

	if _, ok := Detect(calendar.Event{Location: "Room 4"}); ok {
		t.Error("detected a link in plain text")
	}
}
