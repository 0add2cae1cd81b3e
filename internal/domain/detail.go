package domain

// DetailKind discriminates what a Detail currently holds.
type DetailKind int

const (
	DetailProgress DetailKind = iota
	DetailReport
)

func (k DetailKind) String() string {
	switch k {
	case DetailProgress:
		return "progress"
	case DetailReport:
		return "report"
	default:
		return "unknown"
	}
}

// Detail is the report-or-progress view of the selected submission.
type Detail struct {
	Kind         DetailKind
	SubmissionID string
	Progress     *AnalysisStatus
	Report       Report
}

func ProgressDetail(submissionID string, status AnalysisStatus) *Detail {
	return &Detail{Kind: DetailProgress, SubmissionID: submissionID, Progress: &status}
}

func ReportDetail(submissionID string, status AnalysisStatus, report Report) *Detail {
	return &Detail{Kind: DetailReport, SubmissionID: submissionID, Progress: &status, Report: report}
}

// Payload returns what a presentation layer renders: the report once terminal,
// otherwise the raw status payload.
func (d *Detail) Payload() any {
	if d == nil {
		return nil
	}
	if d.Kind == DetailReport {
		return d.Report
	}
	if d.Progress != nil && len(d.Progress.Raw) > 0 {
		return d.Progress.Raw
	}
	return d.Progress
}
