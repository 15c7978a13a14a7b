package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/view"
)

const snapshotDate = "2006-01-02"

// Snapshot is the part of State kept between runs: the view position and
// which calendars the user has hidden.
type Snapshot struct {
	View   view.Mode     `yaml:"view"`
	Date   string        `yaml:"date,omitempty"`
	Hidden []calendar.ID `yaml:"hidden,omitempty"`
}

// SnapshotOf captures the persistent part of s.
func SnapshotOf(s State) Snapshot {
	snap := Snapshot{View: s.View}
	if !s.Date.IsZero() {
		snap.Date = s.Date.Format(snapshotDate)
	}
	for _, c := range s.Calendars {
		if !s.IsSelected(c.ID) {
			snap.Hidden = append(snap.Hidden, c.ID)
		}
	}
	return snap
}

// DateIn returns the snapshot date in loc, or the zero time if unset.
func (s Snapshot) DateIn(loc *time.Location) time.Time {
	t, err := time.ParseInLocation(snapshotDate, s.Date, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Visible returns the ids of cals not hidden by the snapshot.
func (s Snapshot) Visible(cals []calendar.Calendar) []calendar.ID {
	var ids []calendar.ID
	for _, c := range cals {
		if !slices.Contains(s.Hidden, c.ID) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// LoadSnapshot reads a snapshot. A missing file yields an empty snapshot.
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("read state file: %w", err)
	}
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parse state file: %w", err)
	}
	return snap, nil
}

// SaveSnapshot writes a snapshot atomically.
func SaveSnapshot(path string, snap Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
