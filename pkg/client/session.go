package client

import (
	"context"
	"sync"
)

// Session wraps a Client with the current-user state an application
// front end needs: who is logged in, and whether the startup hydration
// is still running.
type Session struct {
	client *Client

	mu        sync.Mutex
	user      *User
	hydrating bool
}

// NewSession builds a Session and its underlying Client. The session
// installs itself as the client's session-invalidated callback, so a
// dead session clears the current user automatically.
func NewSession(baseURL string, opts ...Option) (*Session, error) {
	s := &Session{}
	c, err := New(baseURL, append(opts, WithSessionInvalidated(s.clear))...)
	if err != nil {
		return nil, err
	}
	s.client = c
	return s, nil
}

// Client returns the underlying API client.
func (s *Session) Client() *Client { return s.client }

// Hydrate restores a session from the refresh cookie, typically once at
// startup. A refusal is a normal cold start, not an error; the reported
// bool says whether a user is now logged in.
func (s *Session) Hydrate(ctx context.Context) bool {
	s.mu.Lock()
	s.hydrating = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.hydrating = false
		s.mu.Unlock()
	}()

	user, err := s.client.Refresh(ctx)
	if err != nil {
		return false
	}
	s.setUser(user)
	return true
}

// Login authenticates and records the current user.
func (s *Session) Login(ctx context.Context, email, password string) (User, error) {
	user, err := s.client.Login(ctx, email, password)
	if err != nil {
		return User{}, err
	}
	s.setUser(user)
	return user, nil
}

// Logout ends the session. The local user is cleared even when the
// server call fails.
func (s *Session) Logout(ctx context.Context) {
	_ = s.client.Logout(ctx)
	s.clear()
}

// CurrentUser returns the logged-in user, or nil.
func (s *Session) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// LoggedIn reports whether a user is present.
func (s *Session) LoggedIn() bool { return s.CurrentUser() != nil }

// Hydrating reports whether the startup hydration is still in flight.
// Applications gate their first render on this instead of flashing a
// login screen at a user who is about to be restored.
func (s *Session) Hydrating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrating
}

func (s *Session) setUser(u User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}
