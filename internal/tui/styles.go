package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/etay-atar/Sandbox/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("25")).
			Foreground(lipgloss.Color("255"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	formStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(1, 2)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	queuedTag     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	processingTag = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	completedTag  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failedTag     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	maliciousTag = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	benignTag    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func statusStyle(s domain.SubmissionStatus) lipgloss.Style {
	switch s {
	case domain.StatusQueued:
		return queuedTag
	case domain.StatusProcessing, domain.StatusRunning:
		return processingTag
	case domain.StatusCompleted:
		return completedTag
	case domain.StatusFailed:
		return failedTag
	default:
		return dimStyle
	}
}

func verdictStyle(v string) lipgloss.Style {
	switch v {
	case domain.VerdictMalicious:
		return maliciousTag
	case domain.VerdictSuspicious:
		return processingTag
	case domain.VerdictBenign:
		return benignTag
	default:
		return dimStyle
	}
}
