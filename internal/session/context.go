package session

import (
	"context"

	"github.com/etay-atar/Sandbox/internal/domain"
)

type contextKey struct{}

// WithManager returns a context scoped to m.
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, contextKey{}, m)
}

// FromContext returns the manager in scope. It panics when none was installed
// or it was never initialized: that is a wiring bug, not a runtime condition.
func FromContext(ctx context.Context) *Manager {
	m, ok := ctx.Value(contextKey{}).(*Manager)
	if !ok || m == nil || !m.Initialized() {
		panic(domain.ErrNoSession)
	}
	return m
}
