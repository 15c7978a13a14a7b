package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		// Days
		{"1d", 24 * time.Hour, false},
		{"14d", 14 * 24 * time.Hour, false},
		{"30d", 30 * 24 * time.Hour, false},

		// Weeks
		{"1w", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"4w", 28 * 24 * time.Hour, false},

		// Standard Go durations
		{"5m", 5 * time.Minute, false},
		{"1h", time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"336h", 14 * 24 * time.Hour, false},
		{"1h30m", time.Hour + 30*time.Minute, false},

		// Edge cases
		{"0d", 0, false},
		{"0w", 0, false},
		{"", 0, false},
		{"  14d  ", 14 * 24 * time.Hour, false},

		// Errors
		{"invalid", 0, true},
		{"d", 0, true},
		{"w", 0, true},
		{"14x", 0, true},
		{"-1d", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDuration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `api:
  url: https://cal.example.com/api/
  timeout: 10s
view:
  default: week
  schedule_days: 14
events:
  notify_attendees: false
notifications:
  enabled: true
  window: 2m
filters:
  rules:
    - field: title
      contains: lunch
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvTokenFile, filepath.Join(dir, "tok"))
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvTimezone, "")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.API.URL != "https://cal.example.com/api" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v", cfg.API.Timeout)
	}
	if cfg.View.Default != "week" || cfg.View.ScheduleDays != 14 {
		t.Errorf("View = %+v", cfg.View)
	}
	if cfg.Events.NotifyAttendeesEnabled() {
		t.Error("notify_attendees: false was ignored")
	}
	if cfg.Events.Timezone != DefaultTimezone || cfg.Events.ReminderMinutes != DefaultReminderMinutes {
		t.Errorf("Events = %+v", cfg.Events)
	}
	if !cfg.Notifications.Enabled || cfg.Notifications.Window != 2*time.Minute || cfg.Notifications.Urgent != 5*time.Minute {
		t.Errorf("Notifications = %+v", cfg.Notifications)
	}
	if cfg.Auth.TokenFile != filepath.Join(dir, "tok") {
		t.Errorf("Auth.TokenFile = %q, want env override", cfg.Auth.TokenFile)
	}
	if cfg.Filters.Mode != "or" || len(cfg.Filters.Rules) != 1 {
		t.Errorf("Filters = %+v", cfg.Filters)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://backend:9000/api")
	t.Setenv(EnvTokenFile, "")
	t.Setenv(EnvTimezone, "UTC")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.URL != "http://backend:9000/api" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.Events.Location() != time.UTC {
		t.Errorf("Location = %v", cfg.Events.Location())
	}
	if cfg.Refresh.Schedule != DefaultRefreshSchedule {
		t.Errorf("Refresh.Schedule = %q", cfg.Refresh.Schedule)
	}
	if !cfg.Events.NotifyAttendeesEnabled() {
		t.Error("attendee notifications should default on")
	}
}

func TestLoadFromBadTimezone(t *testing.T) {
	t.Setenv(EnvTimezone, "Nowhere/Special")
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for unknown timezone")
	}
}
