// Package soap queries the core banking checkbook service. Calls are never
// retried here; a circuit breaker fails fast while the service is down.
package soap

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"chequeprint/internal/checkbook/metrics"
	"chequeprint/internal/checkbook/models"
	dErrors "chequeprint/pkg/domain-errors"
	"chequeprint/pkg/platform/circuit"
)

const (
	tracerName     = "chequeprint/corebanking"
	maxBodyBytes   = 4 << 20
	defaultTimeout = 10 * time.Second
)

type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	breaker    *circuit.Breaker
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		breaker:    circuit.New("core-banking"),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryCheckbook fetches the raw checkbook for an account. Transport errors,
// non-2xx replies and SOAP faults are CodeUnavailable; a reply that cannot be
// decoded or carries no result is CodeUpstreamData.
func (c *Client) QueryCheckbook(ctx context.Context, accountNumber string) (*models.ExternalCheckbookResult, error) {
	if !c.breaker.Allow() {
		c.metrics.ObserveSOAP("circuit_open", 0)
		return nil, dErrors.New(dErrors.CodeUnavailable, "core banking is temporarily unavailable, try again shortly")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "corebanking.QueryCheckbook")
	defer span.End()
	span.SetAttributes(attribute.String("account_number", accountNumber))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	result, outcome, err := c.call(ctx, accountNumber)
	c.metrics.ObserveSOAP(outcome, time.Since(start))

	if dErrors.HasCode(err, dErrors.CodeUnavailable) || dErrors.HasCode(err, dErrors.CodeTimeout) {
		c.recordFailure(ctx)
	} else {
		c.recordSuccess(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		c.logger.WarnContext(ctx, "core banking checkbook query failed",
			"account_number", accountNumber,
			"outcome", outcome,
			"error", err,
		)
		return nil, err
	}
	span.SetAttributes(attribute.Int("cheque_statuses", len(result.ChequeStatuses)))
	return result, nil
}

func (c *Client) call(ctx context.Context, accountNumber string) (*models.ExternalCheckbookResult, string, error) {
	body, err := encodeQuery(accountNumber)
	if err != nil {
		return nil, "encode_error", dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode checkbook query")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "encode_error", dErrors.Wrap(err, dErrors.CodeInternal, "failed to build checkbook query")
	}
	req.Header.Set("Content-Type", contentTypeXML)
	req.Header.Set("SOAPAction", `"`+queryAction+`"`)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, "timeout", dErrors.Wrap(err, dErrors.CodeTimeout, "core banking did not answer in time")
		}
		return nil, "transport_error", dErrors.Wrap(err, dErrors.CodeUnavailable, "core banking is unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "transport_error", dErrors.Wrap(err, dErrors.CodeUnavailable, "core banking reply was interrupted")
	}

	var env responseEnvelope
	decodeErr := xml.Unmarshal(raw, &env)
	if decodeErr == nil && env.Body.Fault != nil {
		return nil, "fault", dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("core banking rejected the query: %s", env.Body.Fault.String))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "http_error", dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("core banking answered with status %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return nil, "bad_response", dErrors.Wrap(decodeErr, dErrors.CodeUpstreamData, "core banking returned an unreadable checkbook response")
	}
	if env.Body.Response == nil || env.Body.Response.Result == nil {
		return nil, "bad_response", dErrors.New(dErrors.CodeUpstreamData, "core banking returned no checkbook for this account")
	}
	return env.Body.Response.Result.toModel(), "ok", nil
}

func (c *Client) recordFailure(ctx context.Context) {
	_, change := c.breaker.RecordFailure()
	if change.Opened {
		c.metrics.SetBreakerOpen(true)
		c.logger.ErrorContext(ctx, "core banking circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	_, change := c.breaker.RecordSuccess()
	if change.Closed {
		c.metrics.SetBreakerOpen(false)
		c.logger.InfoContext(ctx, "core banking circuit closed", "breaker", c.breaker.Name())
	}
}
