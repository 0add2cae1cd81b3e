package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/etay-atar/Sandbox/internal/dashboard"
	"github.com/etay-atar/Sandbox/internal/session"
)

// Run mounts the dashboard and blocks until the user quits or ctx is done.
// A nil deps.Sessions resolves to the session manager installed in ctx.
func Run(ctx context.Context, deps Deps, opts ...tea.ProgramOption) error {
	deps = resolveDeps(ctx, deps)
	deps.Coordinator.Mount()
	defer deps.Coordinator.Unmount()

	options := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewModel(ctx, deps), options...)

	unsubscribe := deps.Coordinator.Subscribe(func(s dashboard.State) {
		p.Send(stateMsg(s))
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

func resolveDeps(ctx context.Context, deps Deps) Deps {
	if deps.Sessions == nil {
		deps.Sessions = session.FromContext(ctx)
	}
	return deps
}
