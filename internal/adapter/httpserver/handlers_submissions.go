package httpserver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/etay-atar/Sandbox/internal/domain"
	apperrors "github.com/etay-atar/Sandbox/internal/errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type submissionResponse struct {
	SubmissionID string                  `json:"submission_id"`
	Filename     string                  `json:"filename"`
	Status       domain.SubmissionStatus `json:"status"`
	FinalVerdict string                  `json:"final_verdict"`
	CreatedAt    time.Time               `json:"created_at"`
}

func toSubmissionResponse(r submissionRecord) submissionResponse {
	return submissionResponse{
		SubmissionID: r.ID.String(),
		Filename:     r.Filename,
		Status:       r.Status,
		FinalVerdict: r.Verdict,
		CreatedAt:    r.CreatedAt,
	}
}

func (b *backend) handleListSubmissions(c echo.Context) error {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil {
		return err
	}

	records := b.store.listSubmissions(skip, limit)
	out := make([]submissionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toSubmissionResponse(rec))
	}
	return c.JSON(http.StatusOK, out)
}

func (b *backend) handleCreateSubmission(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "file is required").SetInternal(err)
	}
	f, err := fh.Open()
	if err != nil {
		return apperrors.InternalError("failed to open upload", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return apperrors.InternalError("failed to read upload", err)
	}

	user, _ := c.Get(userKey).(userRecord)
	rec, created := b.store.addSubmission(submissionRecord{
		ID:        uuid.New(),
		UserID:    user.ID,
		Filename:  fh.Filename,
		SHA256:    hex.EncodeToString(h.Sum(nil)),
		Status:    domain.StatusQueued,
		Verdict:   domain.VerdictPending,
		CreatedAt: b.clock.Now().UTC(),
	})

	slog.InfoContext(c.Request().Context(), "Submission received",
		"submission_id", rec.ID, "filename", fh.Filename, "size", size, "duplicate", !created)
	return c.JSON(http.StatusOK, toSubmissionResponse(rec))
}

// handleStatus advances the simulated analysis by one step per poll.
func (b *backend) handleStatus(c echo.Context) error {
	id, err := submissionID(c)
	if err != nil {
		return err
	}

	var status domain.AnalysisStatus
	if _, ok := b.store.update(id, func(r *submissionRecord) { status = b.advance(r) }); !ok {
		return apperrors.NotFoundError("Submission not found")
	}
	return c.JSON(http.StatusOK, status)
}

func (b *backend) advance(r *submissionRecord) domain.AnalysisStatus {
	switch r.Status {
	case domain.StatusQueued:
		r.Status = domain.StatusProcessing
		return domain.AnalysisStatus{Status: domain.StatusProcessing, Progress: 10}
	case domain.StatusProcessing:
		if b.cfg.Rand() < b.cfg.CompleteChance {
			r.Status = domain.StatusCompleted
			r.Verdict = domain.VerdictMalicious
			return domain.AnalysisStatus{Status: domain.StatusCompleted, Progress: 100}
		}
		return domain.AnalysisStatus{Status: domain.StatusProcessing, Progress: 50}
	case domain.StatusCompleted:
		return domain.AnalysisStatus{Status: r.Status, Progress: 100}
	default:
		return domain.AnalysisStatus{Status: r.Status, Progress: 0}
	}
}

func (b *backend) handleReport(c echo.Context) error {
	id, err := submissionID(c)
	if err != nil {
		return err
	}

	rec, ok := b.store.submission(id)
	if !ok {
		return apperrors.NotFoundError("Submission not found")
	}
	if rec.Status != domain.StatusCompleted {
		return apperrors.ValidationError("Analysis still in progress")
	}
	return c.JSON(http.StatusOK, mockReport(rec))
}

func mockReport(rec submissionRecord) map[string]any {
	score := 0.0
	if rec.Verdict == domain.VerdictMalicious {
		score = 98.5
	}
	return map[string]any{
		"submission_id": rec.ID.String(),
		"verdict":       rec.Verdict,
		"score":         score,
		"static_analysis": map[string]any{
			"has_pe_header":      true,
			"suspicious_imports": []string{"VirtualAlloc", "WriteProcessMemory"},
			"entropy":            7.8,
		},
		"dynamic_analysis": map[string]any{
			"network_connections": []string{"192.168.1.105", "evil-site.com"},
			"file_changes":        []string{`C:\Windows\Temp\malware.exe`},
		},
		"ai_analysis": map[string]any{
			"model":      "MalConv-v1",
			"confidence": 0.99,
		},
	}
}

func submissionID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.UUID{}, apperrors.ValidationError("Invalid UUID")
	}
	return id, nil
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return v, nil
}
