package dashboard

import (
	"time"

	"github.com/etay-atar/Sandbox/internal/domain"
	"github.com/etay-atar/Sandbox/internal/platform/config"
)

// Phase tracks whether the selected submission's report has been retrieved.
// It only moves Pending -> Terminal, and back to Pending when the selection changes.
type Phase int

const (
	PhasePending Phase = iota
	PhaseTerminal
)

func (p Phase) String() string {
	if p == PhaseTerminal {
		return "terminal"
	}
	return "pending"
}

// State is an immutable snapshot of the dashboard.
type State struct {
	Mounted       bool
	Authenticated bool

	Submissions   []domain.Submission
	ListUpdatedAt time.Time
	ListError     string

	SelectedID  string
	Detail      *domain.Detail
	Phase       Phase
	DetailError string

	Uploading bool
}

// Selected returns the listed submission matching SelectedID, if present.
func (s State) Selected() (domain.Submission, bool) {
	for _, sub := range s.Submissions {
		if sub.SubmissionID == s.SelectedID {
			return sub, true
		}
	}
	return domain.Submission{}, false
}

func (s State) clone() State {
	out := s
	if s.Submissions != nil {
		out.Submissions = append([]domain.Submission(nil), s.Submissions...)
	}
	return out
}

type Config struct {
	ListInterval   time.Duration
	DetailInterval time.Duration
	RequestTimeout time.Duration
	// FreezeOnTerminal stops the detail loop once the report was retrieved.
	FreezeOnTerminal bool
}

func DefaultConfig() Config {
	return Config{
		ListInterval:     5 * time.Second,
		DetailInterval:   2 * time.Second,
		RequestTimeout:   10 * time.Second,
		FreezeOnTerminal: true,
	}
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		ListInterval:     cfg.ListPollInterval,
		DetailInterval:   cfg.DetailPollInterval,
		RequestTimeout:   cfg.RequestTimeout,
		FreezeOnTerminal: cfg.FreezeOnTerminal,
	}
}
