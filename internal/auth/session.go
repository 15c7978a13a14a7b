package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cpuguy83/calgrid/internal/api"
	"github.com/cpuguy83/calgrid/internal/calendar"
)

var (
	// ErrNoToken is returned when a login succeeds without a token in the response.
	ErrNoToken = errors.New("no token received from backend")
	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = errors.New("not signed in")
)

// Backend is the subset of the API client the session uses.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
	Register(ctx context.Context, r api.Registration) (*api.AuthResponse, error)
	GoogleLogin(ctx context.Context, credential string) (*api.AuthResponse, error)
	Profile(ctx context.Context) (*calendar.User, error)
}

// Session tracks the signed-in user.
type Session struct {
	tokens  *TokenStore
	backend Backend

	user *calendar.User
}

// NewSession creates a session over a token store and backend.
func NewSession(tokens *TokenStore, backend Backend) *Session {
	return &Session{tokens: tokens, backend: backend}
}

// User returns the signed-in user, or nil.
func (s *Session) User() *calendar.User {
	return s.user
}

// Authenticated reports whether a user is signed in.
func (s *Session) Authenticated() bool {
	return s.user != nil
}

// LoadUser restores the session from the stored token. Without a token the
// session stays signed out and no request is made. If the profile cannot be
// loaded the token is discarded.
func (s *Session) LoadUser(ctx context.Context) (*calendar.User, error) {
	tok, err := s.tokens.Load()
	if err != nil {
		return nil, err
	}
	if tok == "" {
		s.user = nil
		return nil, ErrNotAuthenticated
	}

	user, err := s.backend.Profile(ctx)
	if err != nil {
		slog.Debug("load user failed, discarding token", "error", err)
		s.user = nil
		if clearErr := s.tokens.Clear(); clearErr != nil {
			return nil, errors.Join(err, clearErr)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	s.user = user
	return user, nil
}

// Login signs in with email and password.
func (s *Session) Login(ctx context.Context, email, password string) (*calendar.User, error) {
	resp, err := s.backend.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return s.accept(ctx, resp)
}

// Register creates an account and signs in.
func (s *Session) Register(ctx context.Context, name, email, password string) (*calendar.User, error) {
	resp, err := s.backend.Register(ctx, api.Registration{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return s.accept(ctx, resp)
}

// GoogleLogin signs in with a Google ID credential obtained elsewhere.
func (s *Session) GoogleLogin(ctx context.Context, credential string) (*calendar.User, error) {
	resp, err := s.backend.GoogleLogin(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("google login: %w", err)
	}
	return s.accept(ctx, resp)
}

// Logout clears the stored token.
func (s *Session) Logout() error {
	s.user = nil
	return s.tokens.Clear()
}

// accept stores the token from a login response and resolves the user,
// fetching the profile when the response does not include it.
func (s *Session) accept(ctx context.Context, resp *api.AuthResponse) (*calendar.User, error) {
	if resp == nil || resp.Token == "" {
		return nil, ErrNoToken
	}
	if err := s.tokens.Save(resp.Token); err != nil {
		return nil, err
	}

	if resp.User != nil {
		s.user = resp.User
		return s.user, nil
	}
	return s.LoadUser(ctx)
}
