package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/etay-atar/Sandbox/internal/domain"
	apperrors "github.com/etay-atar/Sandbox/internal/errors"
)

// Manager is the single source of truth for authentication state in the process.
// Token, identity and request context always change together under mu.
type Manager struct {
	store domain.CredentialStore

	mu          sync.RWMutex
	initialized bool
	token       string
	identity    *domain.Identity
	rc          domain.RequestContext

	subMu   sync.Mutex
	subs    map[int]func(domain.SessionEvent)
	nextSub int
}

func NewManager(store domain.CredentialStore) *Manager {
	return &Manager{
		store: store,
		subs:  make(map[int]func(domain.SessionEvent)),
	}
}

// Initialize rehydrates the session from the credential store. A stored token
// yields the placeholder identity; nothing is sent to the backend. Calling it
// again after success is a no-op.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	token, ok, err := m.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stored credential: %w", err)
	}

	if ok && token != "" {
		m.setLocked(token, domain.PlaceholderUsername)
		slog.DebugContext(ctx, "Session rehydrated from credential store")
	}
	m.initialized = true
	return nil
}

func (m *Manager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// Login installs token as the active credential. The in-memory transition
// happens even when persisting fails; the persistence error is returned.
func (m *Manager) Login(ctx context.Context, token, username string) error {
	if token == "" {
		return apperrors.ValidationError("empty access token")
	}

	persistErr := m.store.Set(ctx, token)
	if persistErr != nil {
		slog.WarnContext(ctx, "Failed to persist credential", "error", persistErr)
	}

	m.mu.Lock()
	m.setLocked(token, username)
	m.initialized = true
	m.mu.Unlock()

	slog.InfoContext(ctx, "Logged in", "username", username)
	m.notify(domain.SessionEvent{Authenticated: true, Username: username})

	if persistErr != nil {
		return fmt.Errorf("failed to persist credential: %w", persistErr)
	}
	return nil
}

// Logout clears the credential everywhere. Logging out while unauthenticated
// does nothing and notifies no one.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if m.token == "" {
		m.mu.Unlock()
		return nil
	}
	username := m.identity.Username
	m.token = ""
	m.identity = nil
	m.rc = domain.NewRequestContext("")
	m.mu.Unlock()

	persistErr := m.store.Remove(ctx)
	if persistErr != nil {
		slog.WarnContext(ctx, "Failed to remove stored credential", "error", persistErr)
	}

	slog.InfoContext(ctx, "Logged out", "username", username)
	m.notify(domain.SessionEvent{Authenticated: false, Username: username})

	if persistErr != nil {
		return fmt.Errorf("failed to remove stored credential: %w", persistErr)
	}
	return nil
}

func (m *Manager) setLocked(token, username string) {
	m.token = token
	m.identity = &domain.Identity{Username: username, Role: domain.DefaultRole}
	m.rc = domain.NewRequestContext(token)
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Identity returns a copy of the current identity, or nil when unauthenticated.
func (m *Manager) Identity() *domain.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return nil
	}
	id := *m.identity
	return &id
}

func (m *Manager) Session() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := domain.Session{Token: m.token}
	if m.identity != nil {
		id := *m.identity
		s.Identity = &id
	}
	return s
}

func (m *Manager) RequestContext() domain.RequestContext {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rc
}

// Subscribe registers fn for every later transition. Callbacks run
// synchronously on the goroutine that called Login or Logout.
func (m *Manager) Subscribe(fn func(domain.SessionEvent)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

func (m *Manager) notify(ev domain.SessionEvent) {
	m.subMu.Lock()
	fns := make([]func(domain.SessionEvent), 0, len(m.subs))
	for id := 0; id < m.nextSub; id++ {
		if fn, ok := m.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
