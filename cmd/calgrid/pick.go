package main

import (
	"context"
	"errors"
	"flag"

	"github.com/cpuguy83/calgrid/internal/links"
	"github.com/cpuguy83/calgrid/internal/picker"
	"github.com/cpuguy83/calgrid/internal/render"
)

func runPick(ctx context.Context, a *App, args []string) error {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	open := fs.Bool("open", false, "open the chosen event's link")
	var vf viewFlags
	vf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := picker.New(a.cfg.Picker.Program, a.cfg.Picker.Args)
	if err != nil {
		return err
	}
	if err := a.open(ctx); err != nil {
		return err
	}
	if err := vf.apply(a); err != nil {
		return err
	}
	if err := a.store.Refresh(ctx); err != nil {
		return err
	}

	now := a.now()
	events := a.filter.Apply(a.store.State().Events)
	if len(events) == 0 {
		a.printf("No events to pick from")
		return nil
	}

	i, err := p.Choose(ctx, "calgrid", render.PickItems(events, now))
	if errors.Is(err, picker.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	e := &events[i]
	a.print(render.EventDetails(e, now))
	if !*open {
		return nil
	}
	link, ok := links.Detect(*e)
	if !ok {
		return errors.New("event has no link")
	}
	return links.Open(link.URL)
}
