package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// RefKind distinguishes plain events from expanded occurrences.
type RefKind int

const (
	RefSingle RefKind = iota
	RefOccurrence
)

// EventRef identifies either a single event or one occurrence of a recurring
// event. Occurrence ids have the form "<baseId>_<index>".
type EventRef struct {
	Kind RefKind
	// ID is the event id for RefSingle and the base event id for RefOccurrence.
	ID ID
	// Index is the occurrence index, or -1 when the suffix is not numeric.
	Index int
}

// Single returns a reference to a non-recurring event.
func Single(id ID) EventRef {
	return EventRef{Kind: RefSingle, ID: id}
}

// Occurrence returns a reference to one occurrence of a recurring event.
func Occurrence(base ID, index int) EventRef {
	return EventRef{Kind: RefOccurrence, ID: base, Index: index}
}

// ParseEventRef decodes an event id. The id is split on its first underscore;
// everything before it is the base id.
func ParseEventRef(id string) EventRef {
	base, suffix, ok := strings.Cut(id, "_")
	if !ok {
		return Single(ID(id))
	}
	idx, err := strconv.Atoi(suffix)
	if err != nil || idx < 0 {
		idx = -1
	}
	return Occurrence(ID(base), idx)
}

// Base returns the id to use for backend edit and delete calls.
func (r EventRef) Base() ID {
	return r.ID
}

// IsOccurrence reports whether r names one occurrence of a recurring event.
func (r EventRef) IsOccurrence() bool {
	return r.Kind == RefOccurrence
}

// String re-encodes the reference in its wire form.
func (r EventRef) String() string {
	if r.Kind == RefOccurrence && r.Index >= 0 {
		return fmt.Sprintf("%s_%d", r.ID, r.Index)
	}
	return string(r.ID)
}

// EditScope chooses which occurrences of a recurring event a mutation applies to.
type EditScope string

const (
	ScopeThis EditScope = "this"
	ScopeAll  EditScope = "all"
)

// ErrInvalidScope is returned for scopes other than "this" and "all".
var ErrInvalidScope = errors.New("edit scope must be \"this\" or \"all\"")

// ParseEditScope parses an edit scope name.
func ParseEditScope(s string) (EditScope, error) {
	switch EditScope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeThis:
		return ScopeThis, nil
	case ScopeAll:
		return ScopeAll, nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
}
