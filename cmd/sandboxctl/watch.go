package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/etay-atar/Sandbox/internal/dashboard"
	"github.com/etay-atar/Sandbox/internal/domain"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var selectID, metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll submissions and print changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()
			mgr, err := requireSession(cmd.Context())
			if err != nil {
				return err
			}

			if err := a.waitReady(cmd.Context()); err != nil {
				return err
			}

			if metricsAddr == "" {
				metricsAddr = a.cfg.MetricsAddr
			}
			stopServer := a.startStatusServer(metricsAddr)
			defer stopServer()

			c := a.coordinator(mgr)
			defer c.Close()

			p := &statePrinter{w: cmd.OutOrStdout()}
			unsubscribe := c.Subscribe(p.print)
			defer unsubscribe()

			c.Mount()
			defer c.Unmount()
			if selectID != "" {
				c.Select(selectID)
			}

			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&selectID, "select", "", "also follow the detail of this submission")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve health and metrics on this address (default $METRICS_ADDR)")
	return cmd
}

// statePrinter writes one line per observed change.
type statePrinter struct {
	w io.Writer

	mu         sync.Mutex
	listAt     time.Time
	listError  string
	detailLine string
}

func (p *statePrinter) print(s dashboard.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !s.ListUpdatedAt.IsZero() && !s.ListUpdatedAt.Equal(p.listAt) {
		p.listAt = s.ListUpdatedAt
		fmt.Fprintf(p.w, "%s  %s\n", s.ListUpdatedAt.Local().Format("15:04:05"), summarize(s.Submissions))
	}
	if s.ListError != p.listError {
		p.listError = s.ListError
		if s.ListError != "" {
			fmt.Fprintf(p.w, "list refresh failed: %s\n", s.ListError)
		}
	}

	line := detailLine(s)
	if line != p.detailLine {
		p.detailLine = line
		if line != "" {
			fmt.Fprintln(p.w, line)
		}
	}
}

func summarize(subs []domain.Submission) string {
	counts := map[domain.SubmissionStatus]int{}
	for _, s := range subs {
		counts[s.Status]++
	}
	parts := []string{fmt.Sprintf("%d submissions", len(subs))}
	for _, st := range []domain.SubmissionStatus{domain.StatusQueued, domain.StatusProcessing, domain.StatusRunning, domain.StatusCompleted, domain.StatusFailed} {
		if n := counts[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, st))
		}
	}
	return strings.Join(parts, ", ")
}

func detailLine(s dashboard.State) string {
	switch {
	case s.SelectedID == "":
		return ""
	case s.Detail == nil && s.DetailError != "":
		return fmt.Sprintf("%s  error: %s", s.SelectedID, s.DetailError)
	case s.Detail == nil:
		return ""
	case s.Detail.Kind == domain.DetailReport:
		line := fmt.Sprintf("%s  report: verdict %s", s.SelectedID, s.Detail.Report.Verdict())
		if score, ok := s.Detail.Report.Score(); ok {
			line += fmt.Sprintf(", score %.1f", score)
		}
		return line
	case s.Detail.Progress != nil:
		return fmt.Sprintf("%s  %s %d%%", s.SelectedID, s.Detail.Progress.Status, s.Detail.Progress.Progress)
	}
	return ""
}
