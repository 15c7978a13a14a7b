package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Common recurrence rules offered when creating an event.
const (
	RuleDaily    = "FREQ=DAILY;INTERVAL=1"
	RuleWeekly   = "FREQ=WEEKLY;INTERVAL=1"
	RuleMonthly  = "FREQ=MONTHLY;INTERVAL=1"
	RuleYearly   = "FREQ=YEARLY;INTERVAL=1"
	RuleWeekdays = "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,TU,WE,TH,FR"
)

// RecurrenceLabel returns the short label shown for a recurrence rule.
func RecurrenceLabel(rule string) string {
	switch {
	case rule == "":
		return "Does not repeat"
	case rule == RuleDaily:
		return "Daily"
	case rule == RuleWeekly:
		return "Weekly"
	case rule == RuleMonthly:
		return "Monthly"
	case rule == RuleYearly:
		return "Yearly"
	case strings.Contains(rule, "BYDAY=MO,TU,WE,TH,FR"):
		return "Every weekday"
	default:
		return "Custom"
	}
}

// ValidateRecurrence checks that rule parses as an RRULE. An empty rule is valid.
func ValidateRecurrence(rule string) error {
	if rule == "" {
		return nil
	}
	if _, err := rrule.StrToROption(strings.TrimPrefix(rule, "RRULE:")); err != nil {
		return fmt.Errorf("invalid recurrence rule %q: %w", rule, err)
	}
	return nil
}

// NextOccurrences returns up to n occurrence start times of rule at or after
// from, anchored at start.
func NextOccurrences(rule string, start, from time.Time, n int) ([]time.Time, error) {
	if rule == "" || n <= 0 {
		return nil, nil
	}
	opt, err := rrule.StrToROption(strings.TrimPrefix(rule, "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("parse recurrence: %w", err)
	}
	opt.Dtstart = start
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("build recurrence: %w", err)
	}

	var out []time.Time
	next := r.Iterator()
	for len(out) < n {
		t, ok := next()
		if !ok {
			break
		}
		if t.Before(from) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
