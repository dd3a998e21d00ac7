// Package session holds the authenticated-user state for the client.
// It replaces the web app's ambient auth context with an explicit value that
// has a defined lifecycle: bootstrapped once at startup via a who-am-I check,
// updated on login, and cleared on logout. No package-level globals.
package session

import (
	"context"
	"sync"

	"codenest/internal/api"
	"codenest/internal/logging"
)

// State is the current-user record shared by all pages. The TUI event loop
// is the primary owner, but the boot sequence writes from an errgroup
// goroutine, so access is guarded.
type State struct {
	mu   sync.RWMutex
	user *api.User
}

// NewState returns a logged-out state.
func NewState() *State {
	return &State{}
}

// Bootstrap performs the one-time who-am-I check at app start. An absent or
// stale session cookie is not an error; it just means nobody is logged in.
func (s *State) Bootstrap(ctx context.Context, client *api.Client) error {
	user, err := client.Me(ctx)
	if err != nil {
		if api.IsTransport(err) {
			return err
		}
		logging.SessionDebug("bootstrap: no active session (%v)", err)
		return nil
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	logging.Session("bootstrap: resumed session for %s", user.Email)
	return nil
}

// Login authenticates against the backend and records the account.
func (s *State) Login(ctx context.Context, client *api.Client, creds api.Credentials) (*api.User, error) {
	user, err := client.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// Logout ends the server session and clears the local user. The local state
// is cleared even if the server call fails; a dangling cookie is harmless
// and the user asked to be logged out.
func (s *State) Logout(ctx context.Context, client *api.Client) error {
	err := client.Logout(ctx)

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return err
}

// Current returns the logged-in user, or nil.
func (s *State) Current() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a user is logged in.
func (s *State) Authenticated() bool {
	return s.Current() != nil
}
