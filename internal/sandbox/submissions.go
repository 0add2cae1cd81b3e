package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/etay-atar/Sandbox/internal/domain"
	apperrors "github.com/etay-atar/Sandbox/internal/errors"
	"golang.org/x/sync/singleflight"
)

// ListSubmissions returns the backend's default page of recent submissions,
// newest first.
func (c *Client) ListSubmissions(ctx context.Context, rc domain.RequestContext) ([]domain.Submission, error) {
	return c.ListPage(ctx, rc, 0, 0)
}

// ListPage lists with explicit paging. A zero limit leaves the page size to the backend.
//
// Identical concurrent list requests share one round trip. The shared request
// is detached from the first caller's cancellation and bounded by the client
// timeout; each caller stops waiting when its own ctx is done.
func (c *Client) ListPage(ctx context.Context, rc domain.RequestContext, skip, limit int) ([]domain.Submission, error) {
	query := url.Values{}
	if skip > 0 {
		query.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	target := c.endpoint("/submissions/", query)

	if err := ctx.Err(); err != nil {
		return nil, apperrors.TransportError("request cancelled", err).WithField("operation", "list_submissions")
	}

	shared := context.WithoutCancel(ctx)
	results := c.inflight.DoChan(rc.Authorization()+" "+target, func() (any, error) {
		return c.do(shared, request{
			operation: "list_submissions",
			method:    http.MethodGet,
			url:       target,
			rc:        rc,
		})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, apperrors.TransportError("request cancelled", ctx.Err()).WithField("operation", "list_submissions")
	case res = <-results:
	}

	if res.Shared && c.metrics != nil {
		c.metrics.CoalescedRequests.Inc()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	return decode[[]domain.Submission]("list_submissions", res.Val.(*response))
}

// CreateSubmission uploads content as the multipart field "file".
func (c *Client) CreateSubmission(ctx context.Context, rc domain.RequestContext, filename string, content io.Reader) (domain.Submission, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return domain.Submission{}, apperrors.InternalError("failed to build upload form", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return domain.Submission{}, apperrors.UploadError("failed to read upload content", err)
	}
	if err := mw.Close(); err != nil {
		return domain.Submission{}, apperrors.InternalError("failed to build upload form", err)
	}

	res, err := c.do(ctx, request{
		operation:   "create_submission",
		method:      http.MethodPost,
		url:         c.endpoint("/submissions/", nil),
		rc:          rc,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return domain.Submission{}, err
	}

	created, err := decode[domain.Submission]("create_submission", res)
	if err != nil {
		return domain.Submission{}, err
	}
	if created.SubmissionID == "" {
		return domain.Submission{}, apperrors.ExternalError("backend returned no submission id", nil)
	}
	return created, nil
}

func (c *Client) GetStatus(ctx context.Context, rc domain.RequestContext, submissionID string) (domain.AnalysisStatus, error) {
	res, err := c.do(ctx, request{
		operation: "get_status",
		method:    http.MethodGet,
		url:       c.endpoint(fmt.Sprintf("/submissions/%s/status", url.PathEscape(submissionID)), nil),
		rc:        rc,
	})
	if err != nil {
		return domain.AnalysisStatus{}, err
	}
	return decode[domain.AnalysisStatus]("get_status", res)
}

func (c *Client) GetReport(ctx context.Context, rc domain.RequestContext, submissionID string) (domain.Report, error) {
	res, err := c.do(ctx, request{
		operation: "get_report",
		method:    http.MethodGet,
		url:       c.endpoint(fmt.Sprintf("/submissions/%s/report", url.PathEscape(submissionID)), nil),
		rc:        rc,
	})
	if err != nil {
		return nil, err
	}
	return decode[domain.Report]("get_report", res)
}
