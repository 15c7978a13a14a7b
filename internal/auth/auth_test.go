package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cpuguy83/calgrid/internal/api"
	"github.com/cpuguy83/calgrid/internal/calendar"
)

type fakeBackend struct {
	resp       *api.AuthResponse
	err        error
	profile    *calendar.User
	profileErr error

	profileCalls int
	lastCreds    api.Credentials
}

func (f *fakeBackend) Login(_ context.Context, creds api.Credentials) (*api.AuthResponse, error) {
	f.lastCreds = creds
	return f.resp, f.err
}

func (f *fakeBackend) Register(context.Context, api.Registration) (*api.AuthResponse, error) {
	return f.resp, f.err
}

func (f *fakeBackend) GoogleLogin(context.Context, string) (*api.AuthResponse, error) {
	return f.resp, f.err
}

func (f *fakeBackend) Profile(context.Context) (*calendar.User, error) {
	f.profileCalls++
	return f.profile, f.profileErr
}

func newStore(t *testing.T) *TokenStore {
	t.Helper()
	return NewTokenStore(filepath.Join(t.TempDir(), "calgrid", "token"))
}

func TestTokenStore(t *testing.T) {
	s := newStore(t)

	tok, err := s.Token()
	if err != nil || tok != nil {
		t.Fatalf("empty store Token() = %v, %v", tok, err)
	}

	if err := s.Save("abc"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	fi, err := os.Stat(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if perm := fi.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}

	tok, err = s.Token()
	if err != nil || tok == nil || tok.AccessToken != "abc" {
		t.Fatalf("Token() = %v, %v", tok, err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if v, _ := s.Load(); v != "" {
		t.Errorf("Load after Clear = %q", v)
	}
}

func TestLoadUser(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		b := &fakeBackend{}
		sess := NewSession(newStore(t), b)
		if _, err := sess.LoadUser(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("err = %v", err)
		}
		if b.profileCalls != 0 {
			t.Error("profile requested without a token")
		}
	})

	t.Run("profile ok", func(t *testing.T) {
		store := newStore(t)
		store.Save("abc")
		sess := NewSession(store, &fakeBackend{profile: &calendar.User{ID: "1", Name: "Ada"}})
		user, err := sess.LoadUser(context.Background())
		if err != nil {
			t.Fatalf("LoadUser: %v", err)
		}
		if user.Name != "Ada" || !sess.Authenticated() {
			t.Errorf("user = %+v, authenticated = %v", user, sess.Authenticated())
		}
	})

	t.Run("profile fails", func(t *testing.T) {
		store := newStore(t)
		store.Save("stale")
		sess := NewSession(store, &fakeBackend{profileErr: &api.Error{Status: 401}})
		if _, err := sess.LoadUser(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if sess.Authenticated() {
			t.Error("session authenticated after profile failure")
		}
		if v, _ := store.Load(); v != "" {
			t.Errorf("token kept after profile failure: %q", v)
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("stores token", func(t *testing.T) {
		store := newStore(t)
		b := &fakeBackend{resp: &api.AuthResponse{Token: "jwt", User: &calendar.User{Email: "a@example.com"}}}
		sess := NewSession(store, b)

		user, err := sess.Login(context.Background(), "a@example.com", "pw")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if user.Email != "a@example.com" || b.lastCreds.Password != "pw" {
			t.Errorf("user = %+v, creds = %+v", user, b.lastCreds)
		}
		if v, _ := store.Load(); v != "jwt" {
			t.Errorf("stored token = %q", v)
		}
		if b.profileCalls != 0 {
			t.Error("profile fetched although the response carried the user")
		}
	})

	t.Run("no token in response", func(t *testing.T) {
		sess := NewSession(newStore(t), &fakeBackend{resp: &api.AuthResponse{}})
		if _, err := sess.GoogleLogin(context.Background(), "cred"); !errors.Is(err, ErrNoToken) {
			t.Errorf("err = %v, want ErrNoToken", err)
		}
	})

	t.Run("user fetched when missing", func(t *testing.T) {
		b := &fakeBackend{resp: &api.AuthResponse{Token: "jwt"}, profile: &calendar.User{ID: "9"}}
		sess := NewSession(newStore(t), b)
		user, err := sess.Register(context.Background(), "Ada", "a@example.com", "pw")
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if user.ID != "9" || b.profileCalls != 1 {
			t.Errorf("user = %+v, profile calls = %d", user, b.profileCalls)
		}
	})

	t.Run("backend error", func(t *testing.T) {
		sess := NewSession(newStore(t), &fakeBackend{err: &api.Error{Status: 400, Message: "bad password"}})
		_, err := sess.Login(context.Background(), "a@example.com", "x")
		if api.StatusOf(err) != 400 {
			t.Errorf("err = %v", err)
		}
	})
}

func TestLogout(t *testing.T) {
	store := newStore(t)
	sess := NewSession(store, &fakeBackend{resp: &api.AuthResponse{Token: "jwt", User: &calendar.User{}}})
	if _, err := sess.Login(context.Background(), "a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := sess.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if sess.Authenticated() {
		t.Error("still authenticated")
	}
	if v, _ := store.Load(); v != "" {
		t.Errorf("token = %q", v)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		route         string
		authenticated bool
		want          string
	}{
		{RouteHome, false, RouteLogin},
		{RouteHome, true, RouteHome},
		{RouteLogin, false, RouteLogin},
		{RouteLogin, true, RouteHome},
		{RouteRegister, false, RouteRegister},
		{RouteRegister, true, RouteHome},
	}
	for _, tt := range tests {
		if got := Resolve(tt.route, tt.authenticated); got != tt.want {
			t.Errorf("Resolve(%q, %v) = %q, want %q", tt.route, tt.authenticated, got, tt.want)
		}
	}
}

func TestParseClaims(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    42,
		"email": "a@example.com",
		"exp":   exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	c, err := ParseClaims(signed)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if c.UserID != "42" || c.Email != "a@example.com" {
		t.Errorf("claims = %+v", c)
	}
	if !c.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v", c.ExpiresAt)
	}
	if c.Expired(exp.Add(-time.Hour)) || !c.Expired(exp.Add(time.Hour)) {
		t.Error("Expired is wrong")
	}

	if _, err := ParseClaims("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}
