// Package filter provides include filtering for displayed calendar events.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/config"
)

// MatchType specifies how a filter rule matches.
type MatchType int

const (
	MatchContains MatchType = iota // Substring match (default)
	MatchExact                     // Exact string match
	MatchPrefix                    // Starts with
	MatchSuffix                    // Ends with
	MatchRegex                     // Regular expression
)

// Filter applies include rules to events.
type Filter struct {
	mode  string // "or" or "and"
	rules []rule
}

type rule struct {
	field           string
	matchType       MatchType
	pattern         string
	regex           *regexp.Regexp
	caseInsensitive bool
}

var fields = map[string]bool{
	"title":       true,
	"calendar":    true,
	"description": true,
	"location":    true,
	"attendee":    true,
}

// New creates a new filter from configuration.
func New(cfg config.FilterConfig) (*Filter, error) {
	f := &Filter{mode: cfg.Mode}
	switch f.mode {
	case "":
		f.mode = "or"
	case "or", "and":
	default:
		return nil, fmt.Errorf("unknown filter mode %q", cfg.Mode)
	}

	for i, r := range cfg.Rules {
		compiled, err := compileRule(r)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		f.rules = append(f.rules, compiled)
	}

	return f, nil
}

func compileRule(r config.FilterRule) (rule, error) {
	compiled := rule{
		field:           strings.ToLower(r.Field),
		caseInsensitive: r.CaseInsensitive,
	}
	if !fields[compiled.field] {
		return compiled, fmt.Errorf("unknown field %q", r.Field)
	}

	switch {
	case r.Regex != "":
		compiled.matchType = MatchRegex
		pattern := r.Regex
		if r.CaseInsensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return compiled, fmt.Errorf("invalid regex %q: %w", r.Regex, err)
		}
		compiled.regex = re
		return compiled, nil
	case r.Exact != "":
		compiled.matchType, compiled.pattern = MatchExact, r.Exact
	case r.Prefix != "":
		compiled.matchType, compiled.pattern = MatchPrefix, r.Prefix
	case r.Suffix != "":
		compiled.matchType, compiled.pattern = MatchSuffix, r.Suffix
	case r.Contains != "":
		compiled.matchType, compiled.pattern = MatchContains, r.Contains
	default:
		return compiled, fmt.Errorf("no match pattern specified (use contains, exact, prefix, suffix, or regex)")
	}

	if r.CaseInsensitive {
		compiled.pattern = strings.ToLower(compiled.pattern)
	}
	return compiled, nil
}

// Empty reports whether the filter has no rules.
func (f *Filter) Empty() bool {
	return f == nil || len(f.rules) == 0
}

// Apply filters events, returning only those that match the include rules.
// If no rules are defined, all events are returned.
func (f *Filter) Apply(events []calendar.Event) []calendar.Event {
	if f.Empty() {
		return events
	}

	var filtered []calendar.Event
	for _, event := range events {
		if f.Match(event) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// Match reports whether a single event passes the filter.
func (f *Filter) Match(event calendar.Event) bool {
	if f.Empty() {
		return true
	}

	if f.mode == "and" {
		for _, r := range f.rules {
			if !r.matches(event) {
				return false
			}
		}
		return true
	}

	for _, r := range f.rules {
		if r.matches(event) {
			return true
		}
	}
	return false
}

func (r *rule) matches(event calendar.Event) bool {
	for _, value := range r.values(event) {
		if r.matchValue(value) {
			return true
		}
	}
	return false
}

func (r *rule) matchValue(value string) bool {
	if r.caseInsensitive && r.matchType != MatchRegex {
		value = strings.ToLower(value)
	}

	switch r.matchType {
	case MatchRegex:
		return r.regex.MatchString(value)
	case MatchExact:
		return value == r.pattern
	case MatchPrefix:
		return strings.HasPrefix(value, r.pattern)
	case MatchSuffix:
		return strings.HasSuffix(value, r.pattern)
	default:
		return strings.Contains(value, r.pattern)
	}
}

// values returns the event values a rule looks at. Attendee rules match if
// any attendee matches.
func (r *rule) values(event calendar.Event) []string {
	switch r.field {
	case "title":
		return []string{event.Title}
	case "calendar":
		return []string{event.CalendarName}
	case "description":
		return []string{event.Description}
	case "location":
		return []string{event.Location}
	case "attendee":
		return event.Attendees
	default:
		return nil
	}
}
