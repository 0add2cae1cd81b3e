package session

import (
	"context"
	"log/slog"

	"github.com/etay-atar/Sandbox/internal/domain"
	apperrors "github.com/etay-atar/Sandbox/internal/errors"
)

// SignIn runs the credential exchange: a best-effort registration (an existing
// account makes it fail, which is expected), then the login proper. Any login
// failure surfaces as the same generic auth error and leaves the session as it was.
func (m *Manager) SignIn(ctx context.Context, auth domain.Authenticator, username, password string) error {
	if err := auth.Register(ctx, username, password); err != nil {
		slog.DebugContext(ctx, "Registration skipped", "username", username, "error", err)
	}

	token, err := auth.Login(ctx, username, password)
	if err != nil {
		slog.WarnContext(ctx, "Login failed", "username", username, "error", err)
		return apperrors.AuthError("login failed", err)
	}
	if token == "" {
		return apperrors.AuthError("login failed", nil)
	}

	return m.Login(ctx, token, username)
}
