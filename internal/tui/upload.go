package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/docker/go-units"
)

type uploadDoneMsg struct {
	id       string
	filename string
	size     int64
	err      error
}

func (m Model) updateUpload(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.upload.Blur()
		m.mode = modeList
		return m, nil

	case "enter":
		path := strings.TrimSpace(m.upload.Value())
		if path == "" {
			m.errMsg = "Enter a file path"
			return m, nil
		}
		m.upload.Blur()
		m.mode = modeList
		m.busy = true
		m.errMsg = ""
		m.notice = "Uploading " + filepath.Base(path) + "..."
		return m, uploadCmd(m.ctx, m.deps, path)
	}

	var cmd tea.Cmd
	m.upload, cmd = m.upload.Update(msg)
	return m, cmd
}

func uploadCmd(ctx context.Context, deps Deps, path string) tea.Cmd {
	return func() tea.Msg {
		name := filepath.Base(path)
		f, size, err := deps.OpenFile(path)
		if err != nil {
			return uploadDoneMsg{filename: name, err: err}
		}
		defer func() { _ = f.Close() }()

		id, err := deps.Coordinator.Upload(ctx, name, f)
		return uploadDoneMsg{id: id, filename: name, size: size, err: err}
	}
}

func (m Model) applyUpload(msg uploadDoneMsg) Model {
	m.busy = false
	if msg.err != nil {
		m.notice = ""
		m.errMsg = "Upload failed: " + msg.err.Error()
		return m
	}

	m.errMsg = ""
	m.notice = fmt.Sprintf("Uploaded %s (%s) as %s", msg.filename, units.HumanSize(float64(msg.size)), shortID(msg.id))
	m.state.SelectedID = msg.id
	for i, s := range m.state.Submissions {
		if s.SubmissionID == msg.id {
			m.cursor = i
			m.clampOffset()
			break
		}
	}
	return m
}

func openFile(path string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, 0, errors.New(path + " is a directory")
	}
	return f, st.Size(), nil
}
