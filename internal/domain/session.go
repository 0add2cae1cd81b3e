package domain

import "context"

// DefaultRole is the only role the client ever assigns. The backend exposes no
// profile endpoint, so identity is never re-validated after login.
const DefaultRole = "Analyst"

// PlaceholderUsername is used when a session is rehydrated from a stored token
// and the original username is unknown.
const PlaceholderUsername = "Analyst"

type Identity struct {
	Username string
	Role     string
}

// Session is a point-in-time view of the client-held credential.
// Identity is non-nil iff Token is non-empty.
type Session struct {
	Token    string
	Identity *Identity
}

func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// SessionEvent is emitted after every authentication state transition.
type SessionEvent struct {
	Authenticated bool
	Username      string
}

// SessionSource is the read side of the session manager consumed by pollers.
type SessionSource interface {
	IsAuthenticated() bool
	RequestContext() RequestContext
	Subscribe(fn func(SessionEvent)) (unsubscribe func())
}

// CredentialStore persists a single credential string across process restarts.
type CredentialStore interface {
	// Get returns the stored credential and whether one exists.
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, value string) error
	Remove(ctx context.Context) error
}
