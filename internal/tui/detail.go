package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etay-atar/Sandbox/internal/domain"
)

const progressBarWidth = 30

func (m Model) viewDetail() string {
	var b strings.Builder
	b.WriteString(detailTitleStyle.Render("Submission "+m.state.SelectedID) + "\n")

	d := m.state.Detail
	switch {
	case d == nil && m.state.DetailError != "":
		b.WriteString(errorStyle.Render("Failed to load: " + m.state.DetailError))
		return detailStyle.Render(b.String())
	case d == nil:
		b.WriteString(dimStyle.Render("Loading..."))
		return detailStyle.Render(b.String())
	}

	if d.Kind == domain.DetailReport {
		verdict := d.Report.Verdict()
		line := "Analysis complete  verdict " + verdictStyle(verdict).Render(verdict)
		if score, ok := d.Report.Score(); ok {
			line += fmt.Sprintf("  score %.1f", score)
		}
		b.WriteString(line + "\n")
	} else if d.Progress != nil {
		b.WriteString(statusStyle(d.Progress.Status).Render(string(d.Progress.Status)) + "  " +
			progressBar(d.Progress.Progress, progressBarWidth) + "\n")
	}

	if m.state.DetailError != "" {
		b.WriteString(errorStyle.Render("Last refresh failed: "+m.state.DetailError) + "\n")
	}

	lines := strings.Split(prettyJSON(d.Payload()), "\n")
	if limit := m.detailLines(); len(lines) > limit {
		lines = append(lines[:limit], dimStyle.Render(fmt.Sprintf("... %d more lines", len(lines)-limit)))
	}
	b.WriteString(strings.Join(lines, "\n"))

	return detailStyle.Render(b.String())
}

func (m Model) detailLines() int {
	return max(m.height-m.visibleRows()-9, 5)
}

func prettyJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}

func progressBar(pct, width int) string {
	pct = min(max(pct, 0), 100)
	filled := pct * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %3d%%", pct)
}
