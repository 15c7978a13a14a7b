package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/cpuguy83/calgrid/internal/calendar"
	"github.com/cpuguy83/calgrid/internal/render"
)

const calendarsUsage = "usage: calgrid calendars list|create|update|delete|toggle|share|shares|unshare"

func runCalendars(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		return errors.New(calendarsUsage)
	}
	sub, args := args[0], args[1:]

	if err := a.open(ctx); err != nil {
		return err
	}

	switch sub {
	case "list", "ls":
		st := a.store.State()
		a.print(render.Calendars(st.Calendars, st.IsSelected))
		return nil
	case "create":
		return calendarCreate(ctx, a, args)
	case "update":
		return calendarUpdate(ctx, a, args)
	case "delete", "rm":
		return calendarDelete(ctx, a, args)
	case "toggle":
		return calendarToggle(a, args)
	case "share":
		return calendarShare(ctx, a, args)
	case "shares":
		return calendarShares(ctx, a, args)
	case "unshare":
		return calendarUnshare(ctx, a, args)
	default:
		return fmt.Errorf("unknown calendars command %q; %s", sub, calendarsUsage)
	}
}

// calendarFlags binds the editable calendar fields.
func calendarFlags(fs *flag.FlagSet, in *calendar.CalendarInput) {
	fs.StringVar(&in.Name, "name", in.Name, "calendar name")
	fs.StringVar(&in.Color, "color", in.Color, "color as #rrggbb")
	fs.StringVar(&in.Description, "description", in.Description, "description")
}

func calendarCreate(ctx context.Context, a *App, args []string) error {
	fs := flag.NewFlagSet("calendars create", flag.ContinueOnError)
	in := calendar.CalendarInput{Color: calendar.DefaultColor}
	calendarFlags(fs, &in)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.Name == "" {
		return errors.New("calendar name is required")
	}

	c, err := a.store.CreateCalendar(ctx, in)
	if err != nil {
		return err
	}
	a.save()
	a.printf("Created calendar %s (id %s)", c.Name, c.ID)
	return nil
}

func calendarUpdate(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: calgrid calendars update id [-name n] [-color c] [-description d]")
	}
	c, err := a.findCalendar(args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("calendars update", flag.ContinueOnError)
	in := calendar.CalendarInput{Name: c.Name, Color: c.Color, Description: c.Description}
	calendarFlags(fs, &in)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	updated, err := a.store.UpdateCalendar(ctx, c.ID, in)
	if err != nil {
		return err
	}
	a.printf("Updated calendar %s (id %s)", updated.Name, updated.ID)
	return nil
}

func calendarDelete(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: calgrid calendars delete id")
	}
	c, err := a.findCalendar(args[0])
	if err != nil {
		return err
	}
	if err := a.store.DeleteCalendar(ctx, c.ID); err != nil {
		return err
	}
	a.save()
	a.printf("Deleted calendar %s", c.Name)
	return nil
}

func calendarToggle(a *App, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: calgrid calendars toggle id...")
	}
	for _, id := range args {
		c, err := a.findCalendar(id)
		if err != nil {
			return err
		}
		a.store.ToggleCalendar(c.ID)
		state := "hidden"
		if a.store.State().IsSelected(c.ID) {
			state = "shown"
		}
		a.printf("%s is now %s", c.Name, state)
	}
	a.save()
	return nil
}

// shareable returns the calendar when the signed-in user may share it.
func (a *App) shareable(id string) (calendar.Calendar, error) {
	c, err := a.findCalendar(id)
	if err != nil {
		return c, err
	}
	if !c.Shareable() {
		return c, fmt.Errorf("calendar %s cannot be shared", c.Name)
	}
	return c, nil
}

func calendarShare(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: calgrid calendars share id -email addr [-permission view|edit|manage]")
	}
	c, err := a.shareable(args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("calendars share", flag.ContinueOnError)
	email := fs.String("email", "", "email of the user to share with")
	perm := fs.String("permission", string(calendar.PermissionView), "view, edit or manage")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}
	p := calendar.Permission(*perm)
	if !p.Valid() {
		return fmt.Errorf("invalid permission %q", *perm)
	}

	if err := a.client.ShareCalendar(ctx, c.ID, *email, p); err != nil {
		return err
	}
	a.printf("Shared %s with %s (%s)", c.Name, *email, p)
	return nil
}

func calendarShares(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: calgrid calendars shares id")
	}
	c, err := a.shareable(args[0])
	if err != nil {
		return err
	}
	shares, err := a.client.ListShares(ctx, c.ID)
	if err != nil {
		return err
	}
	a.print(render.Shares(c, shares))
	return nil
}

func calendarUnshare(ctx context.Context, a *App, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: calgrid calendars unshare id user-id")
	}
	c, err := a.shareable(args[0])
	if err != nil {
		return err
	}
	if err := a.client.Unshare(ctx, c.ID, calendar.ID(args[1])); err != nil {
		return err
	}
	a.printf("Removed user %s from %s", args[1], c.Name)
	return nil
}
