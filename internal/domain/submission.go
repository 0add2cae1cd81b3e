package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// SubmissionStatus is an open, string-valued set. Only StatusCompleted unlocks the report.
type SubmissionStatus string

const (
	StatusQueued     SubmissionStatus = "Queued"
	StatusProcessing SubmissionStatus = "Processing"
	StatusRunning    SubmissionStatus = "Running"
	StatusCompleted  SubmissionStatus = "Completed"
	StatusFailed     SubmissionStatus = "Failed"
)

func (s SubmissionStatus) IsTerminal() bool {
	return s == StatusCompleted
}

const (
	VerdictMalicious  = "Malicious"
	VerdictBenign     = "Benign"
	VerdictSuspicious = "Suspicious"
	VerdictPending    = "Pending"
)

// Submission is an immutable snapshot of one uploaded file as listed by the backend.
type Submission struct {
	SubmissionID string           `json:"submission_id"`
	Filename     string           `json:"filename"`
	Status       SubmissionStatus `json:"status"`
	FinalVerdict string           `json:"final_verdict,omitempty"`
	CreatedAt    Timestamp        `json:"created_at"`
}

// Timestamp accepts RFC 3339 as well as the zone-less ISO form some backend
// databases emit; zone-less values are taken as UTC.
type Timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

// AnalysisStatus is the progress payload of GET /submissions/{id}/status.
// Raw keeps the complete body so fields unknown to the client are not lost.
type AnalysisStatus struct {
	Status   SubmissionStatus `json:"status"`
	Progress int              `json:"progress"`
	Raw      json.RawMessage  `json:"-"`
}

func (a *AnalysisStatus) UnmarshalJSON(data []byte) error {
	type plain AnalysisStatus
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = AnalysisStatus(p)
	a.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Report is the opaque analysis report returned once a submission completed.
type Report map[string]any

func (r Report) Verdict() string {
	v, _ := r["verdict"].(string)
	return v
}

func (r Report) Score() (float64, bool) {
	v, ok := r["score"].(float64)
	return v, ok
}

// SubmissionAPI is the part of the backend contract the pollers and upload consume.
type SubmissionAPI interface {
	ListSubmissions(ctx context.Context, rc RequestContext) ([]Submission, error)
	CreateSubmission(ctx context.Context, rc RequestContext, filename string, content io.Reader) (Submission, error)
	GetStatus(ctx context.Context, rc RequestContext, submissionID string) (AnalysisStatus, error)
	GetReport(ctx context.Context, rc RequestContext, submissionID string) (Report, error)
}

// Authenticator is the credential exchange side of the backend contract.
type Authenticator interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}
