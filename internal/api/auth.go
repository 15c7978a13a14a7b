package api

import (
	"context"
	"net/http"

	"github.com/cpuguy83/calgrid/internal/calendar"
)

// Credentials are the email/password pair used by Login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the payload for creating an account.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by the login endpoints.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *calendar.User `json:"user,omitempty"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, r Registration) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GoogleLogin exchanges an already-issued Google ID credential for a session.
func (c *Client) GoogleLogin(ctx context.Context, credential string) (*AuthResponse, error) {
	body := struct {
		Credential string `json:"credential"`
	}{credential}

	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/google", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile returns the user the current token belongs to.
func (c *Client) Profile(ctx context.Context) (*calendar.User, error) {
	var user calendar.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
