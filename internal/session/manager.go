// Package session tracks the signed-in user for a client session. A session
// value is eventually-complete: the identity is known as soon as credentials
// resolve, the profile arrives on a second, asynchronous emission.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/CROWNARC/animex-tweet-verse/internal/auth"
	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/observability"
	"github.com/CROWNARC/animex-tweet-verse/internal/repository"
)

// Identity is the minimal authenticated principal, available synchronously.
type Identity struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// Session pairs an identity with its profile. Profile is nil until the
// asynchronous hydration completes; consumers must handle both states.
type Session struct {
	Identity Identity        `json:"identity"`
	Profile  *models.Profile `json:"profile,omitempty"`
}

// Listener receives session changes. A nil session means signed out.
type Listener func(*Session)

// Manager owns the current session and fans out changes to listeners.
type Manager struct {
	provider *auth.Provider
	users    repository.UserRepository

	log *slog.Logger

	mu        sync.Mutex
	current   *Session
	seq       uint64
	listeners []Listener
}

func NewManager(provider *auth.Provider, users repository.UserRepository) *Manager {
	return &Manager{
		provider: provider,
		users:    users,
		log:      observability.Component("session"),
	}
}

// SignUp creates the identity and then fills in the initial profile fields.
// The profile write is best-effort: it is retried once, and a second failure
// is logged and accepted rather than rolling the identity back.
func (m *Manager) SignUp(ctx context.Context, username, email, password string) (*Session, error) {
	user, token, err := m.provider.CreateIdentity(ctx, username, email, password)
	if err != nil {
		return nil, err
	}

	if err := m.users.Update(ctx, user); err != nil {
		if err = m.users.Update(ctx, user); err != nil {
			m.log.Warn("profile write after signup failed, account left without profile row",
				"user_id", user.ID, "error", err)
		}
	}

	return m.establish(ctx, user, token), nil
}

// SignIn authenticates and establishes the session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, token, err := m.provider.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.establish(ctx, user, token), nil
}

// SignOut clears the session and notifies listeners once with nil.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	m.current = nil
	m.seq++
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l(nil)
	}
}

// Current returns the session as known right now, possibly pre-hydration,
// or nil when signed out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	copied := *m.current
	return &copied
}

// OnChange registers a listener for future session changes. If a session is
// already established the listener is called immediately with its current
// state.
func (m *Manager) OnChange(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	current := m.current
	m.mu.Unlock()

	if current != nil {
		copied := *current
		l(&copied)
	}
}

// establish installs a new session and performs the dual emission: listeners
// hear about the identity synchronously with Profile nil, then again once the
// profile fetch resolves. A sign-out or newer sign-in racing the fetch wins;
// the stale profile is dropped.
func (m *Manager) establish(ctx context.Context, user *models.User, token string) *Session {
	s := &Session{
		Identity: Identity{UserID: user.ID, Email: user.Email, Token: token},
	}

	m.mu.Lock()
	m.current = s
	m.seq++
	seq := m.seq
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		copied := *s
		l(&copied)
	}

	go m.hydrate(ctx, seq, user.ID)

	return s
}

func (m *Manager) hydrate(ctx context.Context, seq uint64, userID uint) {
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		m.log.Warn("profile hydration failed, session stays identity-only",
			"user_id", userID, "error", err)
		return
	}
	profile := models.ProfileOf(user)

	m.mu.Lock()
	if m.seq != seq || m.current == nil {
		m.mu.Unlock()
		return
	}
	m.current.Profile = profile
	hydrated := *m.current
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		copied := hydrated
		l(&copied)
	}
}
