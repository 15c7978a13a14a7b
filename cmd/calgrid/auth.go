package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/cpuguy83/calgrid/internal/api"
	"github.com/cpuguy83/calgrid/internal/auth"
	"github.com/cpuguy83/calgrid/internal/calendar"
)

// alreadySignedIn applies the route guard to an auth page. Signed-in users
// are sent home instead.
func (a *App) alreadySignedIn(ctx context.Context, page string) (bool, error) {
	user, err := a.session.LoadUser(ctx)
	if err != nil && !errors.Is(err, auth.ErrNotAuthenticated) {
		if !api.IsUnauthorized(err) {
			return false, err
		}
		// The stale token was discarded; continue signed out.
		user = nil
	}
	if auth.Resolve(page, user != nil) == page {
		return false, nil
	}
	a.printf("Already signed in as %s; run 'calgrid logout' first", userLabel(a.session.User()))
	return true, nil
}

func userLabel(u *calendar.User) string {
	if u == nil {
		return "(unknown)"
	}
	if u.Name == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}

func runLogin(ctx context.Context, a *App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if done, err := a.alreadySignedIn(ctx, auth.RouteLogin); done || err != nil {
		return err
	}

	var err error
	if *email, err = a.prompt("Email", *email); err != nil {
		return err
	}
	if *password, err = a.prompt("Password", *password); err != nil {
		return err
	}

	user, err := a.session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	a.printf("Signed in as %s", userLabel(user))
	return nil
}

func runRegister(ctx context.Context, a *App, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if done, err := a.alreadySignedIn(ctx, auth.RouteRegister); done || err != nil {
		return err
	}

	var err error
	if *name, err = a.prompt("Name", *name); err != nil {
		return err
	}
	if *email, err = a.prompt("Email", *email); err != nil {
		return err
	}
	if *password, err = a.prompt("Password", *password); err != nil {
		return err
	}

	user, err := a.session.Register(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	a.printf("Registered and signed in as %s", userLabel(user))
	return nil
}

func runGoogle(ctx context.Context, a *App, args []string) error {
	fs := flag.NewFlagSet("google", flag.ContinueOnError)
	credential := fs.String("credential", "", "Google ID token from Google Identity Services")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if done, err := a.alreadySignedIn(ctx, auth.RouteLogin); done || err != nil {
		return err
	}

	cred, err := a.prompt("Google credential", *credential)
	if err != nil {
		return err
	}
	user, err := a.session.GoogleLogin(ctx, cred)
	if err != nil {
		return err
	}
	a.printf("Signed in with Google as %s", userLabel(user))
	return nil
}

func runLogout(_ context.Context, a *App, _ []string) error {
	if err := a.session.Logout(); err != nil {
		return err
	}
	a.printf("Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *App, _ []string) error {
	user, err := a.session.LoadUser(ctx)
	if err != nil {
		return err
	}
	a.printf("%s (id %s)", userLabel(user), user.ID)

	tok, err := a.tokens.Load()
	if err != nil || tok == "" {
		return err
	}
	claims, err := auth.ParseClaims(tok)
	if err != nil {
		// Opaque tokens are fine; the backend accepted it.
		return nil
	}
	if !claims.IssuedAt.IsZero() {
		a.printf("token issued %s", claims.IssuedAt.In(a.loc).Format(time.RFC1123))
	}
	if !claims.ExpiresAt.IsZero() {
		state := "expires"
		if claims.Expired(time.Now()) {
			state = "expired"
		}
		a.printf("token %s %s", state, claims.ExpiresAt.In(a.loc).Format(time.RFC1123))
	}
	return nil
}
