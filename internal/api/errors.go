package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/cpuguy83/calgrid/internal/calendar"
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
	Body    []byte
}

func newError(status int, body []byte) *Error {
	e := &Error{Status: status, Body: body}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Message
		if e.Message == "" {
			e.Message = payload.Error
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend error: status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// SavedDespiteError reports whether err is a 500 whose body still carries the
// saved event. The backend answers this way when a save succeeded but a
// follow-up step failed; callers treat it as success.
func SavedDespiteError(err error) (*calendar.Event, bool) {
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		return nil, false
	}

	var payload struct {
		Event json.RawMessage `json:"event"`
	}
	if json.Unmarshal(apiErr.Body, &payload) != nil {
		return nil, false
	}
	raw := bytes.TrimSpace(payload.Event)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("false")) {
		return nil, false
	}

	var ev calendar.Event
	if json.Unmarshal(raw, &ev) != nil {
		// Truthy but not an event object; the save still happened.
		return &calendar.Event{}, true
	}
	return &ev, true
}
