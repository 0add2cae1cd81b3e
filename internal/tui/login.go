package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/etay-atar/Sandbox/internal/domain"
)

const (
	fieldUsername = iota
	fieldPassword
	fieldCount
)

type loginForm struct {
	username textinput.Model
	password textinput.Model
	focus    int
}

func newLoginForm() loginForm {
	u := textinput.New()
	u.Placeholder = "username"
	u.CharLimit = 64
	u.SetValue(domain.PlaceholderUsername)
	u.CursorEnd()
	u.Focus()

	p := textinput.New()
	p.Placeholder = "password"
	p.CharLimit = 128
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'

	return loginForm{username: u, password: p, focus: fieldUsername}
}

func (f *loginForm) blurCurrent() {
	if f.focus == fieldUsername {
		f.username.Blur()
	} else {
		f.password.Blur()
	}
}

func (f *loginForm) focusCurrent() {
	if f.focus == fieldUsername {
		f.username.Focus()
	} else {
		f.password.Focus()
	}
}

type signInMsg struct {
	username string
	err      error
}

type logoutMsg struct {
	err error
}

func signInCmd(ctx context.Context, sessions Sessions, auth domain.Authenticator, username, password string) tea.Cmd {
	return func() tea.Msg {
		err := sessions.SignIn(ctx, auth, username, password)
		return signInMsg{username: username, err: err}
	}
}

func logoutCmd(ctx context.Context, sessions Sessions) tea.Cmd {
	return func() tea.Msg {
		return logoutMsg{err: sessions.Logout(ctx)}
	}
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	f := &m.login

	switch msg.String() {
	case "tab", "down", "shift+tab", "up":
		f.blurCurrent()
		f.focus = (f.focus + 1) % fieldCount
		f.focusCurrent()
		return m, nil

	case "enter":
		if f.focus == fieldUsername {
			f.blurCurrent()
			f.focus = fieldPassword
			f.focusCurrent()
			return m, nil
		}
		username := strings.TrimSpace(f.username.Value())
		password := f.password.Value()
		if username == "" || password == "" {
			m.errMsg = "Username and password are required"
			return m, nil
		}
		m.busy = true
		m.errMsg = ""
		return m, signInCmd(m.ctx, m.deps.Sessions, m.deps.Auth, username, password)
	}

	var cmd tea.Cmd
	if f.focus == fieldUsername {
		f.username, cmd = f.username.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return m, cmd
}

func (m Model) applySignIn(msg signInMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.errMsg = "Login failed: " + msg.err.Error()
		m.login.password.SetValue("")
		return m, nil
	}
	m.errMsg = ""
	m.notice = "Signed in as " + msg.username
	m.mode = modeList
	m.state.Authenticated = true
	return m, nil
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sandbox") + dimStyle.Render("  sign in to continue") + "\n\n")
	b.WriteString("Username\n" + m.login.username.View() + "\n\n")
	b.WriteString("Password\n" + m.login.password.View() + "\n")

	form := formStyle.Render(b.String())
	status := helpStyle.Render("Tab: next field  Enter: sign in  Ctrl+C: quit")
	if m.busy {
		status = dimStyle.Render("Signing in...")
	}
	if m.errMsg != "" {
		status = errorStyle.Render(m.errMsg) + "\n" + status
	}

	return lipgloss.JoinVertical(lipgloss.Left, form, status)
}
