package dashboard

import (
	"context"
	"io"

	"github.com/etay-atar/Sandbox/internal/domain"
	apperrors "github.com/etay-atar/Sandbox/internal/errors"
	"github.com/etay-atar/Sandbox/internal/metrics"
	"github.com/etay-atar/Sandbox/internal/platform/correlation"
)

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Upload submits content for analysis. Only one upload runs at a time; a
// second call returns domain.ErrUploadInProgress. On success the list is
// refreshed and the new submission selected before Upload returns its id.
func (c *Coordinator) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	reply := make(chan uploadTicket, 1)
	if !c.send(uploadStartCmd{reply: reply}) {
		return "", domain.ErrCoordinatorClosed
	}

	var ticket uploadTicket
	select {
	case ticket = <-reply:
	case <-c.done:
		return "", domain.ErrCoordinatorClosed
	}
	if ticket.err != nil {
		return "", ticket.err
	}

	ctx = correlation.Ensure(ctx)
	counter := &countingReader{r: content}
	created, err := c.api.CreateSubmission(ctx, ticket.rc, filename, counter)

	c.call(func(reply chan struct{}) coordinatorCmd { return uploadDoneCmd{reply: reply} })

	if err != nil {
		c.metrics.Upload.UploadsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		if apperrors.IsType(err, apperrors.TypeUpload) {
			return "", err
		}
		return "", apperrors.UploadError("upload failed", err).WithField("filename", filename)
	}

	c.metrics.Upload.UploadsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	c.metrics.Upload.UploadBytes.Observe(float64(counter.n))

	c.Refresh()
	c.Select(created.SubmissionID)
	return created.SubmissionID, nil
}
