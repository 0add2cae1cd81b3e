package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/etay-atar/Sandbox/internal/domain"
	apperrors "github.com/etay-atar/Sandbox/internal/errors"
	"github.com/etay-atar/Sandbox/internal/metrics"
	"github.com/etay-atar/Sandbox/internal/platform/config"
	"github.com/etay-atar/Sandbox/internal/platform/correlation"
	"github.com/etay-atar/Sandbox/internal/platform/version"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 8 << 20

// Options configures a Client. Zero values fall back to the defaults below.
type Options struct {
	BaseURL            string
	Timeout            time.Duration
	RequestsPerSecond  float64
	Burst              int
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	Metrics            *metrics.ClientMetrics
	Transport          http.RoundTripper // nil means http.DefaultTransport
}

const (
	defaultTimeout            = 10 * time.Second
	defaultRequestsPerSecond  = 20
	defaultBurst              = 10
	defaultBreakerMaxFailures = 5
	defaultBreakerOpenTimeout = 30 * time.Second
)

func OptionsFromConfig(cfg *config.Config, m *metrics.ClientMetrics) Options {
	return Options{
		BaseURL:            cfg.APIURL,
		Timeout:            cfg.RequestTimeout,
		RequestsPerSecond:  cfg.RequestsPerSecond,
		Burst:              cfg.RequestBurst,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
		Metrics:            m,
	}
}

// Client talks to the analysis backend. It is safe for concurrent use.
type Client struct {
	baseURL  string
	hostRoot string

	http     *http.Client
	breaker  *breakerTransport
	limiter  *rate.Limiter
	metrics  *metrics.ClientMetrics
	inflight singleflight.Group
}

var (
	_ domain.SubmissionAPI = (*Client)(nil)
	_ domain.Authenticator = (*Client)(nil)
)

func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", opts.BaseURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRequestsPerSecond
	}
	if opts.Burst < 1 {
		opts.Burst = defaultBurst
	}
	if opts.BreakerMaxFailures == 0 {
		opts.BreakerMaxFailures = defaultBreakerMaxFailures
	}
	if opts.BreakerOpenTimeout <= 0 {
		opts.BreakerOpenTimeout = defaultBreakerOpenTimeout
	}
	next := opts.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	breaker := newBreakerTransport(next, opts.BreakerMaxFailures, opts.BreakerOpenTimeout, opts.Metrics)

	return &Client{
		baseURL:  strings.TrimRight(u.String(), "/"),
		hostRoot: u.Scheme + "://" + u.Host + "/",
		http:     &http.Client{Timeout: opts.Timeout, Transport: breaker},
		breaker:  breaker,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		metrics:  opts.Metrics,
	}, nil
}

// BreakerState reports the circuit breaker state for health checks.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

type request struct {
	operation   string
	method      string
	url         string
	rc          domain.RequestContext
	body        io.Reader
	contentType string
}

type response struct {
	status int
	body   []byte
}

func (c *Client) endpoint(path string, query url.Values) string {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func (c *Client) do(ctx context.Context, r request) (*response, error) {
	ctx = correlation.Ensure(ctx)

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return nil, apperrors.InternalError("failed to build request", err).WithField("operation", r.operation)
	}
	r.rc.Apply(req.Header)
	correlation.SetHeader(ctx, req.Header)
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.TransportError("request not sent", err).WithField("operation", r.operation)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(r.operation, 0, start)
		if isBreakerRejection(err) {
			return nil, apperrors.TransportError("circuit breaker open", err).WithField("operation", r.operation)
		}
		return nil, apperrors.TransportError("request failed", err).WithField("operation", r.operation)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observe(r.operation, resp.StatusCode, start)
	if err != nil {
		return nil, apperrors.TransportError("failed to read response", err).WithField("operation", r.operation)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.FromStatus(resp.StatusCode, detailFromBody(data)).WithField("operation", r.operation)
	}

	return &response{status: resp.StatusCode, body: data}, nil
}

func (c *Client) observe(operation string, status int, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveRequest(operation, status, time.Since(start).Seconds())
}

func decode[T any](operation string, res *response) (T, error) {
	var out T
	if err := json.Unmarshal(res.body, &out); err != nil {
		return out, apperrors.ExternalError("malformed backend response", err).WithField("operation", operation)
	}
	return out, nil
}

// detailFromBody extracts FastAPI's error detail, which is either a string or
// a list of validation issues each carrying a msg.
func detailFromBody(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var issues []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg != "" {
				msgs = append(msgs, issue.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(envelope.Detail)
}
