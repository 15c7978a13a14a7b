package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cpuguy83/calgrid/internal/calendar"
)

// ListCalendars returns the calendars visible to the user.
func (c *Client) ListCalendars(ctx context.Context) ([]calendar.Calendar, error) {
	var cals []calendar.Calendar
	if err := c.do(ctx, http.MethodGet, "/calendars", nil, nil, &cals); err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	return cals, nil
}

// CreateCalendar creates a calendar.
func (c *Client) CreateCalendar(ctx context.Context, in calendar.CalendarInput) (*calendar.Calendar, error) {
	var cal calendar.Calendar
	if err := c.do(ctx, http.MethodPost, "/calendars", nil, in, &cal); err != nil {
		return nil, fmt.Errorf("create calendar: %w", err)
	}
	return &cal, nil
}

// UpdateCalendar replaces a calendar's name, description and color.
func (c *Client) UpdateCalendar(ctx context.Context, id calendar.ID, in calendar.CalendarInput) (*calendar.Calendar, error) {
	var cal calendar.Calendar
	if err := c.do(ctx, http.MethodPut, calendarPath(id), nil, in, &cal); err != nil {
		return nil, fmt.Errorf("update calendar %s: %w", id, err)
	}
	if cal.ID == "" {
		cal.ID = id
	}
	return &cal, nil
}

// DeleteCalendar deletes a calendar and its events.
func (c *Client) DeleteCalendar(ctx context.Context, id calendar.ID) error {
	if err := c.do(ctx, http.MethodDelete, calendarPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete calendar %s: %w", id, err)
	}
	return nil
}

// ListShares returns who a calendar is shared with.
func (c *Client) ListShares(ctx context.Context, id calendar.ID) ([]calendar.Share, error) {
	var shares []calendar.Share
	if err := c.do(ctx, http.MethodGet, calendarPath(id)+"/shares", nil, nil, &shares); err != nil {
		return nil, fmt.Errorf("list shares of %s: %w", id, err)
	}
	return shares, nil
}

// ShareCalendar grants the user with the given email access to a calendar.
func (c *Client) ShareCalendar(ctx context.Context, id calendar.ID, email string, perm calendar.Permission) error {
	body := struct {
		UserEmail  string              `json:"userEmail"`
		Permission calendar.Permission `json:"permission"`
	}{email, perm}

	if err := c.do(ctx, http.MethodPost, calendarPath(id)+"/share", nil, body, nil); err != nil {
		return fmt.Errorf("share calendar %s: %w", id, err)
	}
	return nil
}

// Unshare revokes a user's access to a calendar.
func (c *Client) Unshare(ctx context.Context, id, userID calendar.ID) error {
	path := calendarPath(id) + "/shares/" + url.PathEscape(string(userID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("unshare calendar %s: %w", id, err)
	}
	return nil
}

func calendarPath(id calendar.ID) string {
	return "/calendars/" + url.PathEscape(string(id))
}
