// Package analysis delivers content to the remote AI-likelihood backend.
//
// A [Pipeline] tries a fixed, ordered list of endpoints once each and turns
// every failure mode into a well-formed [Result]: callers never see an error.
package analysis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vectora-ai/vectora/pkg/metrics"
)

// Default endpoints: the hosted backend first, then a local development server.
const (
	HostedEndpoint = "https://vectora.vercel.app/ai-check"
	LocalEndpoint  = "http://127.0.0.1:5001/ai-check"
)

// DefaultAttemptTimeout bounds a single endpoint attempt.
const DefaultAttemptTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// DefaultEndpoints returns the standard candidate list.
func DefaultEndpoints() []string {
	return []string{HostedEndpoint, LocalEndpoint}
}

// AttemptError records why one endpoint was skipped.
type AttemptError struct {
	Endpoint   string
	StatusCode int // zero for transport failures
	Err        error
}

func (e *AttemptError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("analysis: %s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("analysis: %s: %v", e.Endpoint, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// Submitter delivers a request and always produces a result.
type Submitter interface {
	Submit(ctx context.Context, req Request) Result
}

var _ Submitter = (*Pipeline)(nil)

// Pipeline posts requests to the first working endpoint.
type Pipeline struct {
	Endpoints      []string      // Tried in order, once each.
	Client         *http.Client  // nil uses http.DefaultClient.
	AttemptTimeout time.Duration // Per-endpoint deadline; zero uses DefaultAttemptTimeout.
	Logger         *slog.Logger  // nil uses slog.Default().
}

// New creates a Pipeline over the given endpoints, or the defaults when none
// are given.
func New(endpoints ...string) *Pipeline {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints()
	}
	return &Pipeline{Endpoints: endpoints}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Pipeline) httpClient() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

// Submit delivers req to the first endpoint that answers with a 2xx status and
// returns its result. Endpoints are tried strictly in order with no retries.
// When every endpoint fails, or ctx is done, it returns Unreachable().
func (p *Pipeline) Submit(ctx context.Context, req Request) Result {
	body, err := req.MarshalJSON()
	if err != nil {
		p.logger().ErrorContext(ctx, "analysis request rejected", "error", err)
		return Unreachable()
	}

	var lastErr error
	for _, endpoint := range p.Endpoints {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		res, err := p.attempt(ctx, endpoint, body)
		if err == nil {
			p.logger().DebugContext(ctx, "analysis complete",
				"endpoint", endpoint,
				"kind", req.Kind(),
				"ai_percent", res.AIPercent,
			)
			return res
		}

		lastErr = err
		p.logger().WarnContext(ctx, "analysis endpoint failed", "endpoint", endpoint, "error", err)
	}

	metrics.AnalysisFallbacks.Inc()
	p.logger().ErrorContext(ctx, "all analysis endpoints failed", "error", lastErr)

	return Unreachable()
}

func (p *Pipeline) attempt(ctx context.Context, endpoint string, body []byte) (res Result, err error) {
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.AnalysisAttempts.WithLabelValues(endpoint, outcome).Inc()
		metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	timeout := p.AttemptTimeout
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, &AttemptError{Endpoint: endpoint, Err: fmt.Errorf("build request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient().Do(req) //nolint:gosec // endpoints come from configuration
	if err != nil {
		return Result{}, &AttemptError{Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return Result{}, &AttemptError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		// The endpoint accepted the request; an unreadable body is treated as malformed.
		p.logger().WarnContext(ctx, "analysis response unreadable", "endpoint", endpoint, "error", err)
		return Complete(), nil
	}

	if len(data) > maxResponseBytes {
		p.logger().WarnContext(ctx, "analysis response truncated",
			"endpoint", endpoint,
			"limit_bytes", maxResponseBytes,
		)
		data = data[:maxResponseBytes]
	}

	return decodeResult(data), nil
}
