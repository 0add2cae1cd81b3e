package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/etay-atar/Sandbox/internal/dashboard"
	"github.com/etay-atar/Sandbox/internal/domain"
)

// Coordinator is the part of dashboard.Coordinator the TUI drives.
type Coordinator interface {
	Mount()
	Unmount()
	Select(submissionID string)
	Deselect()
	Refresh()
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
	Subscribe(fn func(dashboard.State)) (unsubscribe func())
}

// Sessions is the part of session.Manager the TUI drives.
type Sessions interface {
	IsAuthenticated() bool
	Identity() *domain.Identity
	SignIn(ctx context.Context, auth domain.Authenticator, username, password string) error
	Logout(ctx context.Context) error
}

// Deps wires the TUI to the engine.
type Deps struct {
	Coordinator Coordinator
	Sessions    Sessions
	Auth        domain.Authenticator
	// OpenFile opens an upload; nil means os.Open.
	OpenFile func(path string) (io.ReadCloser, int64, error)
}

type mode int

const (
	modeLogin mode = iota
	modeList
	modeUpload
)

// stateMsg carries a coordinator snapshot into the update loop.
type stateMsg dashboard.State

type Model struct {
	ctx  context.Context
	deps Deps

	state  dashboard.State
	cursor int
	offset int
	width  int
	height int
	mode   mode

	login  loginForm
	upload textinput.Model
	busy   bool

	notice   string
	errMsg   string
	quitting bool
}

func NewModel(ctx context.Context, deps Deps) Model {
	if deps.OpenFile == nil {
		deps.OpenFile = openFile
	}

	ui := textinput.New()
	ui.Placeholder = "path/to/sample.exe"
	ui.CharLimit = 1024

	m := Model{
		ctx:    ctx,
		deps:   deps,
		login:  newLoginForm(),
		upload: ui,
		width:  100,
		height: 30,
		mode:   modeList,
	}
	if !deps.Sessions.IsAuthenticated() {
		m.mode = modeLogin
	}
	m.state.Authenticated = deps.Sessions.IsAuthenticated()
	return m
}

func (m Model) Init() tea.Cmd {
	if m.mode == modeLogin {
		return textinput.Blink
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		return m, nil

	case stateMsg:
		return m.applyState(dashboard.State(msg)), nil

	case signInMsg:
		return m.applySignIn(msg)

	case logoutMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		m.mode = modeLogin
		m.login = newLoginForm()
		return m, textinput.Blink

	case uploadDoneMsg:
		return m.applyUpload(msg), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeLogin:
			return m.updateLogin(msg)
		case modeList:
			return m.updateList(msg)
		case modeUpload:
			return m.updateUpload(msg)
		}
	}
	return m, nil
}

// applyState adopts a snapshot. Losing authentication always lands on the login form.
func (m Model) applyState(s dashboard.State) Model {
	m.state = s

	if !s.Authenticated && m.mode != modeLogin {
		m.mode = modeLogin
		m.login = newLoginForm()
	}
	if s.Authenticated && m.mode == modeLogin && !m.busy {
		m.mode = modeList
	}

	if m.cursor >= len(s.Submissions) {
		m.cursor = max(0, len(s.Submissions)-1)
	}
	m.clampOffset()
	return m
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.clampOffset()
		}

	case "down", "j":
		if m.cursor < len(m.state.Submissions)-1 {
			m.cursor++
			m.clampOffset()
		}

	case "home", "g":
		m.cursor = 0
		m.clampOffset()

	case "end", "G":
		m.cursor = max(0, len(m.state.Submissions)-1)
		m.clampOffset()

	case "enter":
		if len(m.state.Submissions) > 0 {
			id := m.state.Submissions[m.cursor].SubmissionID
			m.deps.Coordinator.Select(id)
			m.state.SelectedID = id
		}

	case "esc":
		m.deps.Coordinator.Deselect()
		m.state.SelectedID = ""
		m.state.Detail = nil

	case "r":
		m.deps.Coordinator.Refresh()
		m.notice = "Refreshing..."

	case "u":
		if m.state.Uploading || m.busy {
			m.errMsg = domain.ErrUploadInProgress.Error()
			return m, nil
		}
		m.upload.SetValue("")
		m.upload.Focus()
		m.mode = modeUpload
		m.errMsg = ""
		return m, textinput.Blink

	case "x":
		m.busy = true
		return m, logoutCmd(m.ctx, m.deps.Sessions)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.mode {
	case modeLogin:
		return m.viewLogin()
	}

	var b strings.Builder
	b.WriteString(m.viewTitle() + "\n")
	b.WriteString(m.renderHeader() + "\n")

	visible := m.visibleRows()
	end := min(m.offset+visible, len(m.state.Submissions))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.state.Submissions[i], i == m.cursor) + "\n")
	}
	if len(m.state.Submissions) == 0 {
		b.WriteString(dimStyle.Render("  No submissions yet. Press u to upload a file.") + "\n")
	}

	if m.state.ListError != "" {
		b.WriteString(errorStyle.Render("  List refresh failed: "+m.state.ListError) + "\n")
	}

	if m.state.SelectedID != "" {
		b.WriteString(m.viewDetail() + "\n")
	}

	switch m.mode {
	case modeUpload:
		b.WriteString(statusBarStyle.Render("Upload: ") + m.upload.View() + "\n")
		b.WriteString(helpStyle.Render("  Enter: submit  Esc: cancel"))
	default:
		b.WriteString(m.viewMessages())
		b.WriteString(helpStyle.Render("  ↑/↓: move  Enter: inspect  Esc: close  u: upload  r: refresh  x: logout  q: quit"))
	}
	return b.String()
}

func (m Model) viewTitle() string {
	title := titleStyle.Render("Sandbox")
	who := ""
	if id := m.deps.Sessions.Identity(); id != nil {
		who = fmt.Sprintf("  %s (%s)", id.Username, id.Role)
	}
	info := fmt.Sprintf("%s  %d submissions", who, len(m.state.Submissions))
	if !m.state.ListUpdatedAt.IsZero() {
		info += "  updated " + m.state.ListUpdatedAt.Local().Format("15:04:05")
	}
	if m.state.Uploading {
		info += "  uploading..."
	}
	return title + dimStyle.Render(info)
}

func (m Model) viewMessages() string {
	var b strings.Builder
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("  "+m.errMsg) + "\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render("  "+m.notice) + "\n")
	}
	return b.String()
}

type colWidths struct {
	status   int
	filename int
	verdict  int
	created  int
	id       int
}

func (m Model) colWidths() colWidths {
	w := colWidths{status: 11, verdict: 11, created: 12, id: 9}
	used := w.status + w.verdict + w.created + w.id + 6
	w.filename = max(m.width-used, 16)
	return w
}

func (m Model) renderHeader() string {
	w := m.colWidths()
	cols := []string{
		pad("Status", w.status),
		pad("File", w.filename),
		pad("Verdict", w.verdict),
		pad("Created", w.created),
		pad("ID", w.id),
	}
	return headerStyle.Render(" " + strings.Join(cols, " "))
}

func (m Model) renderRow(s domain.Submission, cursor bool) string {
	w := m.colWidths()

	created := ""
	if !s.CreatedAt.IsZero() {
		created = s.CreatedAt.Local().Format("01-02 15:04")
	}
	verdict := s.FinalVerdict
	if verdict == "" {
		verdict = domain.VerdictPending
	}
	marker := " "
	if s.SubmissionID == m.state.SelectedID {
		marker = "▸"
	}

	plain := []string{
		pad(string(s.Status), w.status),
		pad(s.Filename, w.filename),
		pad(verdict, w.verdict),
		pad(created, w.created),
		pad(shortID(s.SubmissionID), w.id),
	}
	if cursor {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, selectedStyle.Render(marker+strings.Join(plain, " ")))
	}

	plain[0] = statusStyle(s.Status).Render(plain[0])
	plain[2] = verdictStyle(verdict).Render(plain[2])
	return marker + strings.Join(plain, " ")
}

func (m Model) visibleRows() int {
	rows := m.height - 4
	if m.state.SelectedID != "" {
		rows = m.height / 3
	}
	return max(rows, 1)
}

func (m *Model) clampOffset() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width > 2 {
			return string(runes[:width-2]) + ".."
		}
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
