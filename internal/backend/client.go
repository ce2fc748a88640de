package backend

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/netlens/netsummary/internal/errortypes"
	"github.com/netlens/netsummary/internal/telemetry"
)

// Client performs one HTTP round trip through an Adapter. It never retries;
// retry policy belongs to the caller.
type Client struct {
	adapter    Adapter
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *telemetry.MetricsCollector
}

// NewClient creates a request client for the given adapter. A nil logger
// falls back to slog.Default; a nil metrics collector gets a private one.
func NewClient(adapter Adapter, cfg Config, logger *slog.Logger, metrics *telemetry.MetricsCollector) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		adapter:    adapter,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// Adapter returns the adapter this client sends through.
func (c *Client) Adapter() Adapter {
	return c.adapter
}

// Send performs the round trip for one prepared request and returns the
// extracted text. Failures are classified errortypes.AppErrors:
// connectivity (no response), protocol (non-200 status), or malformed
// response (200 with a missing field). Every failure is logged before it is
// returned.
func (c *Client) Send(ctx context.Context, req *Request) (string, error) {
	c.logger.Info("Dispatching backend request",
		"backend", req.Backend,
		"url", req.URL,
		"request_bytes", len(req.Body),
		"prompt_bytes", req.PromptLen)
	c.metrics.IncrementCounter(telemetry.MetricBackendCalls, 1)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		appErr := errortypes.InternalError(err, "failed to build HTTP request").
			WithField("url", req.URL)
		errortypes.LogError(c.logger, appErr)
		return "", appErr
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	latency := time.Since(start)
	c.metrics.RecordTimer(responseTimeMetric(req.Backend), latency)

	if err != nil {
		c.metrics.IncrementCounter(telemetry.MetricBackendFailuresConnectivity, 1)
		appErr := errortypes.ConnectivityError(err, "network error talking to backend").
			WithField("backend", req.Backend).
			WithField("latency_ms", latency.Milliseconds())
		errortypes.LogError(c.logger, appErr)
		return "", appErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncrementCounter(telemetry.MetricBackendFailuresConnectivity, 1)
		appErr := errortypes.ConnectivityError(err, "failed to read backend response").
			WithField("backend", req.Backend)
		errortypes.LogError(c.logger, appErr)
		return "", appErr
	}

	c.logger.Info("Backend answered",
		"backend", req.Backend,
		"status", resp.StatusCode,
		"latency_ms", latency.Milliseconds())

	text, err := c.adapter.ParseResponse(req, resp.StatusCode, body)
	if err != nil {
		switch errortypes.TypeOf(err) {
		case errortypes.ErrorTypeProtocol:
			c.metrics.IncrementCounter(telemetry.MetricBackendFailuresProtocol, 1)
		case errortypes.ErrorTypeMalformed:
			c.metrics.IncrementCounter(telemetry.MetricBackendFailuresMalformed, 1)
		}
		errortypes.LogError(c.logger, err)
		return "", err
	}

	c.metrics.IncrementCounter(telemetry.MetricBackendCallsSuccess, 1)
	return text, nil
}

func responseTimeMetric(backendName string) string {
	if backendName == VariantConversational {
		return telemetry.MetricResponseTimeConversational
	}
	return telemetry.MetricResponseTimeCompletion
}
