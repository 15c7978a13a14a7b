// Package config provides configuration loading for calgrid.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvAPIURL    = "CALGRID_API_URL"
	EnvTokenFile = "CALGRID_TOKEN_FILE"
	EnvTimezone  = "CALGRID_TIMEZONE"
)

const (
	DefaultAPIURL          = "http://localhost:5050/api"
	DefaultTimezone        = "Asia/Kolkata"
	DefaultReminderMinutes = 10
	DefaultScheduleDays    = 30
	DefaultRefreshSchedule = "@every 5m"
)

// Config is the root configuration structure.
type Config struct {
	API           APIConfig          `yaml:"api"`
	Auth          AuthConfig         `yaml:"auth"`
	View          ViewConfig         `yaml:"view"`
	Events        EventsConfig       `yaml:"events"`
	Refresh       RefreshConfig      `yaml:"refresh"`
	Notifications NotificationConfig `yaml:"notifications"`
	Filters       FilterConfig       `yaml:"filters"`
	Export        ExportConfig       `yaml:"export"`
	Picker        PickerConfig       `yaml:"picker"`
	StateFile     string             `yaml:"state_file"`
}

// APIConfig configures the backend client.
type APIConfig struct {
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 disables pacing
	Burst     int           `yaml:"burst"`
}

// AuthConfig configures where the session token is kept.
type AuthConfig struct {
	TokenFile string `yaml:"token_file"`
}

// ViewConfig configures the calendar views.
type ViewConfig struct {
	Default      string `yaml:"default"`       // "day", "week", "month", "schedule"
	ScheduleDays int    `yaml:"schedule_days"` // look-ahead of the schedule view
}

// EventsConfig holds defaults for new events.
type EventsConfig struct {
	Timezone        string `yaml:"timezone"`
	ReminderMinutes int    `yaml:"reminder_minutes"`
	// NotifyAttendees controls invite/update/cancel mails. Defaults to true.
	NotifyAttendees *bool `yaml:"notify_attendees,omitempty"`
}

// RefreshConfig configures the watch loop.
type RefreshConfig struct {
	Schedule string `yaml:"schedule"` // cron spec or descriptor such as "@every 5m"
}

// NotificationConfig configures desktop reminders.
type NotificationConfig struct {
	Enabled bool          `yaml:"enabled"`
	Window  time.Duration `yaml:"window"` // how late a reminder may still fire
	Urgent  time.Duration `yaml:"urgent"` // events starting sooner are critical
}

// ExportConfig configures ICS export.
type ExportConfig struct {
	Output string `yaml:"output"`
}

// PickerConfig configures the interactive event picker.
type PickerConfig struct {
	Program string   `yaml:"program"` // fzf, rofi, wofi, fuzzel, bemenu or dmenu (auto-detect if empty)
	Args    []string `yaml:"args"`    // extra args to pass to the program
}

// FilterConfig configures event filtering.
type FilterConfig struct {
	Mode  string       `yaml:"mode"` // "or" or "and"
	Rules []FilterRule `yaml:"rules"`
}

// FilterRule defines a single filter rule.
// Use exactly one of: Contains, Exact, Prefix, Suffix, or Regex.
type FilterRule struct {
	Field           string `yaml:"field"`              // "title", "calendar", "description", "location"
	Contains        string `yaml:"contains,omitempty"` // Substring match
	Exact           string `yaml:"exact,omitempty"`    // Exact string match
	Prefix          string `yaml:"prefix,omitempty"`   // Starts with
	Suffix          string `yaml:"suffix,omitempty"`   // Ends with
	Regex           string `yaml:"regex,omitempty"`    // Regular expression
	CaseInsensitive bool   `yaml:"case_insensitive"`
}

// DefaultPath returns ~/.config/calgrid/config.yaml.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(configDir, "calgrid", "config.yaml"), nil
}

// Load reads configuration from the default location. A missing file yields
// the defaults.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific path, then applies a .env file
// in the working directory and CALGRID_* environment overrides.
func LoadFrom(path string) (*Config, error) {
	path = expandPath(path)

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv(os.Getenv)

	cfg.applyDefaults()

	cfg.Auth.TokenFile = expandPath(cfg.Auth.TokenFile)
	cfg.Export.Output = expandPath(cfg.Export.Output)
	cfg.StateFile = expandPath(cfg.StateFile)

	if _, err := time.LoadLocation(cfg.Events.Timezone); err != nil {
		return nil, fmt.Errorf("events timezone %q: %w", cfg.Events.Timezone, err)
	}

	return &cfg, nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		c.API.URL = v
	}
	if v := getenv(EnvTokenFile); v != "" {
		c.Auth.TokenFile = v
	}
	if v := getenv(EnvTimezone); v != "" {
		c.Events.Timezone = v
	}
}

// applyDefaults sets default values for unspecified config options.
func (c *Config) applyDefaults() {
	dataDir := defaultDataDir()

	if c.API.URL == "" {
		c.API.URL = DefaultAPIURL
	}
	c.API.URL = strings.TrimRight(c.API.URL, "/")
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.Burst == 0 {
		c.API.Burst = 5
	}
	if c.Auth.TokenFile == "" {
		c.Auth.TokenFile = filepath.Join(dataDir, "token")
	}
	if c.View.Default == "" {
		c.View.Default = "month"
	}
	if c.View.ScheduleDays <= 0 {
		c.View.ScheduleDays = DefaultScheduleDays
	}
	if c.Events.Timezone == "" {
		c.Events.Timezone = DefaultTimezone
	}
	if c.Events.ReminderMinutes == 0 {
		c.Events.ReminderMinutes = DefaultReminderMinutes
	}
	if c.Refresh.Schedule == "" {
		c.Refresh.Schedule = DefaultRefreshSchedule
	}
	if c.Notifications.Window == 0 {
		c.Notifications.Window = time.Minute
	}
	if c.Notifications.Urgent == 0 {
		c.Notifications.Urgent = 5 * time.Minute
	}
	if c.Filters.Mode == "" {
		c.Filters.Mode = "or"
	}
	if c.Export.Output == "" {
		c.Export.Output = filepath.Join(dataDir, "calendar.ics")
	}
	if c.StateFile == "" {
		c.StateFile = filepath.Join(dataDir, "state.yaml")
	}
}

// NotifyAttendeesEnabled reports whether attendee mails should be sent.
func (c *EventsConfig) NotifyAttendeesEnabled() bool {
	return c.NotifyAttendees == nil || *c.NotifyAttendees
}

// Location returns the default timezone for new events.
func (c *EventsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "calgrid")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// parseDuration extends time.ParseDuration with day ("14d") and week ("2w")
// units. Negative values are rejected and an empty string is zero.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	var unit time.Duration
	switch s[len(s)-1] {
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	}
	if unit != 0 {
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		if n < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return time.Duration(n) * unit, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// UnmarshalYAML implements custom unmarshaling for duration fields.
func (c *APIConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		URL       string  `yaml:"url"`
		Timeout   string  `yaml:"timeout"`
		RateLimit float64 `yaml:"rate_limit"`
		Burst     int     `yaml:"burst"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	d, err := parseDuration(raw.Timeout)
	if err != nil {
		return fmt.Errorf("parse timeout: %w", err)
	}
	c.URL = raw.URL
	c.Timeout = d
	c.RateLimit = raw.RateLimit
	c.Burst = raw.Burst
	return nil
}

// UnmarshalYAML implements custom unmarshaling for notification config.
func (c *NotificationConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Enabled bool   `yaml:"enabled"`
		Window  string `yaml:"window"`
		Urgent  string `yaml:"urgent"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	window, err := parseDuration(raw.Window)
	if err != nil {
		return fmt.Errorf("parse notification window: %w", err)
	}
	urgent, err := parseDuration(raw.Urgent)
	if err != nil {
		return fmt.Errorf("parse notification urgent: %w", err)
	}
	c.Enabled = raw.Enabled
	c.Window = window
	c.Urgent = urgent
	return nil
}
