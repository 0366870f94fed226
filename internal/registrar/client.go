// Package registrar implements the upstream registrar API client. It issues
// domain availability checks and key-validation pings, and resolves the
// relay's public egress IP (registrars whitelist caller IPs).
package registrar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	dErrors "onboardly/pkg/domain-errors"
	"onboardly/pkg/platform/circuit"
)

// Config holds the immutable registrar connection settings.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
	IPEchoURL string
}

// Client is a single-attempt registrar client: no retries, bounded timeout,
// a circuit breaker, and a cap on concurrent in-flight calls so a slow
// registrar can't absorb every handler goroutine.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	breaker    *circuit.Breaker
	inflight   *semaphore.Weighted
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBreaker overrides the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// WithMaxInFlight caps concurrent upstream calls (default 8).
func WithMaxInFlight(n int64) Option {
	return func(c *Client) { c.inflight = semaphore.NewWeighted(n) }
}

// New constructs a registrar client.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		breaker:    circuit.New("registrar"),
		inflight:   semaphore.NewWeighted(8),
		tracer:     otel.Tracer("onboardly/internal/registrar"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckDomain asks the registrar whether a domain is available. A response
// with a failure status is returned as-is; only transport-level problems
// surface as errors.
func (c *Client) CheckDomain(ctx context.Context, domain string) (*RawResponse, error) {
	return c.post(ctx, "/check", map[string]string{"domain": domain})
}

// Ping validates the configured API keys against the registrar.
func (c *Client) Ping(ctx context.Context) (*RawResponse, error) {
	return c.post(ctx, "/ping", nil)
}

func (c *Client) post(ctx context.Context, path string, fields map[string]string) (*RawResponse, error) {
	ctx, span := c.tracer.Start(ctx, "registrar.post")
	defer span.End()

	if err := c.inflight.Acquire(ctx, 1); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "registrar call canceled while queued")
	}
	defer c.inflight.Release(1)

	if !c.breaker.Allow() {
		return nil, dErrors.New(dErrors.CodeUpstreamUnavailable, "registrar circuit open")
	}

	payload := map[string]string{
		"api_key":    c.cfg.APIKey,
		"api_secret": c.cfg.APISecret,
	}
	for k, v := range fields {
		payload[k] = v
	}

	c.logger.DebugContext(ctx, "registrar request",
		"path", path,
		"payload", Redact(payload),
	)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encoding registrar request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "building registrar request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(ctx)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "registrar unreachable")
	}
	defer resp.Body.Close()

	raw, err := decodeResponse(resp)
	if err != nil {
		c.recordFailure(ctx)
		return nil, err
	}

	c.recordSuccess(ctx)
	return raw, nil
}

func decodeResponse(resp *http.Response) (*RawResponse, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "reading registrar response")
	}

	var raw RawResponse
	if jsonErr := json.Unmarshal(data, &raw); jsonErr == nil && raw.Status != "" {
		// Structured responses are valid results even on non-2xx: the
		// evaluator decides what a failure status means.
		return &raw, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, dErrors.New(dErrors.CodeUpstreamUnavailable,
			fmt.Sprintf("registrar returned status %d without a structured body", resp.StatusCode))
	}
	return nil, dErrors.New(dErrors.CodeUpstreamUnavailable, "registrar returned an unparseable body")
}

func (c *Client) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "registrar circuit opened")
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "registrar circuit closed")
	}
}

// EgressIP resolves this deployment's public IP via the configured echo
// service. Exposed through GET /my-ip so operators know what to whitelist
// with the registrar.
func (c *Client) EgressIP(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.IPEchoURL, nil)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "building IP echo request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "IP echo service unreachable")
	}
	defer resp.Body.Close()

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.IP == "" {
		return "", dErrors.New(dErrors.CodeUpstreamUnavailable, "IP echo service returned an unparseable body")
	}
	return body.IP, nil
}
