package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/etay-atar/Sandbox/internal/domain"
	"github.com/etay-atar/Sandbox/internal/metrics"
	"github.com/etay-atar/Sandbox/internal/platform/correlation"
	"github.com/jonboulle/clockwork"
)

// poller is the actor-owned bookkeeping of one polling loop.
type poller struct {
	name     string
	ticker   clockwork.Ticker
	gen      uint64
	ctx      context.Context
	cancel   context.CancelFunc
	inFlight bool
	pending  bool
}

func (p *poller) running() bool {
	return p.ticker != nil
}

// tickChan is nil while stopped, which disables its select case.
func (p *poller) tickChan() <-chan time.Time {
	if p.ticker == nil {
		return nil
	}
	return p.ticker.Chan()
}

func (p *poller) start(parent context.Context, clock clockwork.Clock, interval time.Duration) {
	p.gen++
	p.ctx, p.cancel = context.WithCancel(parent)
	p.ticker = clock.NewTicker(interval)
	p.inFlight = false
	p.pending = false
}

// stop cancels outstanding requests and invalidates their results.
func (p *poller) stop() bool {
	if p.ticker == nil {
		return false
	}
	p.ticker.Stop()
	p.cancel()
	p.ticker = nil
	p.ctx, p.cancel = nil, nil
	p.gen++
	p.inFlight = false
	p.pending = false
	return true
}

type listResult struct {
	gen         uint64
	submissions []domain.Submission
	err         error
	elapsed     time.Duration
}

type detailResult struct {
	gen          uint64
	submissionID string
	status       domain.AnalysisStatus
	report       domain.Report
	hasReport    bool
	err          error
	elapsed      time.Duration
}

func (c *Coordinator) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx := correlation.WithID(parent, correlation.NewID())
	return context.WithTimeout(ctx, c.cfg.RequestTimeout)
}

func (c *Coordinator) startList() {
	if c.list.running() {
		return
	}
	c.list.start(c.rootCtx, c.clock, c.cfg.ListInterval)
	c.metrics.Poller.SetActive(metrics.PollerList, true)
	slog.Debug("List poller started", "interval", c.cfg.ListInterval)
	c.dispatchList()
}

func (c *Coordinator) stopList() {
	if c.list.stop() {
		c.metrics.Poller.SetActive(metrics.PollerList, false)
		slog.Debug("List poller stopped")
	}
}

func (c *Coordinator) tickList() {
	if !c.session.IsAuthenticated() || c.list.inFlight {
		c.metrics.Poller.Tick(metrics.PollerList, metrics.OutcomeSkipped)
		return
	}
	c.dispatchList()
}

func (c *Coordinator) dispatchList() {
	rc := c.session.RequestContext()
	if !rc.Authenticated() {
		c.metrics.Poller.Tick(metrics.PollerList, metrics.OutcomeSkipped)
		return
	}

	c.list.inFlight = true
	gen, parent := c.list.gen, c.list.ctx

	go func() {
		ctx, cancel := c.requestContext(parent)
		defer cancel()

		start := c.clock.Now()
		subs, err := c.api.ListSubmissions(ctx, rc)
		res := listResult{gen: gen, submissions: subs, err: err, elapsed: c.clock.Since(start)}

		select {
		case c.listResults <- res:
		case <-c.done:
		}
	}()
}

func (c *Coordinator) applyList(res listResult) {
	if res.gen != c.list.gen || !c.session.IsAuthenticated() {
		c.metrics.Poller.Tick(metrics.PollerList, metrics.OutcomeDiscarded)
		return
	}
	c.list.inFlight = false
	c.metrics.Poller.ObserveFetch(metrics.PollerList, res.elapsed)

	switch {
	case errors.Is(res.err, context.Canceled):
		c.metrics.Poller.Tick(metrics.PollerList, metrics.OutcomeDiscarded)
	case res.err != nil:
		slog.Warn("Submission list fetch failed", "error", res.err)
		c.metrics.Poller.Tick(metrics.PollerList, metrics.OutcomeFailure)
		c.state.ListError = res.err.Error()
		c.publish()
	default:
		c.metrics.Poller.Tick(metrics.PollerList, metrics.OutcomeSuccess)
		c.state.Submissions = res.submissions
		c.state.ListUpdatedAt = c.clock.Now()
		c.state.ListError = ""
		c.publish()
	}

	if c.list.pending {
		c.list.pending = false
		c.dispatchList()
	}
}

func (c *Coordinator) startDetail() {
	if c.detail.running() {
		return
	}
	c.detail.start(c.rootCtx, c.clock, c.cfg.DetailInterval)
	c.metrics.Poller.SetActive(metrics.PollerDetail, true)
	slog.Debug("Detail poller started", "submission_id", c.state.SelectedID, "interval", c.cfg.DetailInterval)
	c.dispatchDetail()
}

func (c *Coordinator) stopDetail() {
	if c.detail.stop() {
		c.metrics.Poller.SetActive(metrics.PollerDetail, false)
		slog.Debug("Detail poller stopped")
	}
}

func (c *Coordinator) tickDetail() {
	if !c.session.IsAuthenticated() || c.detail.inFlight {
		c.metrics.Poller.Tick(metrics.PollerDetail, metrics.OutcomeSkipped)
		return
	}
	c.dispatchDetail()
}

// dispatchDetail runs one two-phase tick: status, then the report once the
// status is terminal. A failure in either phase abandons the whole tick.
func (c *Coordinator) dispatchDetail() {
	rc := c.session.RequestContext()
	if !rc.Authenticated() || c.state.SelectedID == "" {
		c.metrics.Poller.Tick(metrics.PollerDetail, metrics.OutcomeSkipped)
		return
	}

	c.detail.inFlight = true
	gen, parent, id := c.detail.gen, c.detail.ctx, c.state.SelectedID

	go func() {
		ctx, cancel := c.requestContext(parent)
		defer cancel()

		start := c.clock.Now()
		res := detailResult{gen: gen, submissionID: id}
		res.status, res.err = c.api.GetStatus(ctx, rc, id)
		if res.err == nil && res.status.Status.IsTerminal() {
			res.report, res.err = c.api.GetReport(ctx, rc, id)
			res.hasReport = res.err == nil
		}
		res.elapsed = c.clock.Since(start)

		select {
		case c.detailResults <- res:
		case <-c.done:
		}
	}()
}

func (c *Coordinator) applyDetail(res detailResult) {
	if res.gen != c.detail.gen || res.submissionID != c.state.SelectedID || !c.session.IsAuthenticated() {
		c.metrics.Poller.Tick(metrics.PollerDetail, metrics.OutcomeDiscarded)
		return
	}
	c.detail.inFlight = false
	c.metrics.Poller.ObserveFetch(metrics.PollerDetail, res.elapsed)

	switch {
	case errors.Is(res.err, context.Canceled):
		c.metrics.Poller.Tick(metrics.PollerDetail, metrics.OutcomeDiscarded)

	case res.err != nil:
		slog.Warn("Submission detail fetch failed", "submission_id", res.submissionID, "error", res.err)
		c.metrics.Poller.Tick(metrics.PollerDetail, metrics.OutcomeFailure)
		c.state.DetailError = res.err.Error()
		c.publish()

	case res.hasReport:
		c.metrics.Poller.Tick(metrics.PollerDetail, metrics.OutcomeSuccess)
		if c.state.Phase != PhaseTerminal {
			c.state.Phase = PhaseTerminal
			slog.Info("Analysis complete", "submission_id", res.submissionID, "verdict", res.report.Verdict())
		}
		c.state.Detail = domain.ReportDetail(res.submissionID, res.status, res.report)
		c.state.DetailError = ""
		if c.cfg.FreezeOnTerminal {
			c.stopDetail()
		}
		c.publish()

	case c.state.Phase == PhaseTerminal:
		// A report is never replaced by progress.
		c.metrics.Poller.Tick(metrics.PollerDetail, metrics.OutcomeDiscarded)

	default:
		c.metrics.Poller.Tick(metrics.PollerDetail, metrics.OutcomeSuccess)
		c.state.Detail = domain.ProgressDetail(res.submissionID, res.status)
		c.state.DetailError = ""
		c.publish()
	}
}
