// Package httpclient is the outbound HTTP capability used for DID documents and
// AnonCreds resources. It adds a request timeout, a per-host circuit breaker and
// client spans on top of net/http. It never retries.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"didweb-anoncreds/pkg/platform/circuit"
)

const tracerName = "didweb-anoncreds/httpclient"

// Doer performs a single HTTP exchange. *http.Client and *Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps http.Client with per-host breakers and tracing.
type Client struct {
	http   *http.Client
	tracer trace.Tracer
	logger *slog.Logger

	breakerOpts []circuit.Option
	noBreaker   bool

	mu       sync.Mutex
	breakers map[string]*circuit.Breaker
}

type Option func(*Client)

// WithTimeout bounds every request end to end.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTransport replaces the round tripper (tests, custom TLS).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = rt
	}
}

// WithBreaker configures the per-host circuit breakers.
func WithBreaker(failureThreshold int, cooldown time.Duration) Option {
	return func(c *Client) {
		c.breakerOpts = []circuit.Option{
			circuit.WithFailureThreshold(failureThreshold),
			circuit.WithCooldown(cooldown),
		}
	}
}

// WithoutBreaker disables circuit breaking.
func WithoutBreaker() Option {
	return func(c *Client) {
		c.noBreaker = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// New constructs a Client with a 10s timeout and default breakers.
func New(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		tracer:   otel.Tracer(tracerName),
		logger:   slog.Default(),
		breakers: make(map[string]*circuit.Breaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req. Hosts whose breaker is open fail fast with circuit.ErrOpen.
// Transport errors and 5xx responses count as failures. Requests cancelled by
// the caller are not held against the host.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	host := req.URL.Host
	breaker := c.breaker(host)
	if breaker != nil && !breaker.Allow() {
		return nil, fmt.Errorf("request to %s: %w", host, circuit.ErrOpen)
	}

	ctx, span := c.tracer.Start(req.Context(), "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
			attribute.String("server.address", host),
		))
	defer span.End()

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, context.Canceled) {
			if breaker != nil {
				breaker.ReleaseTrial()
			}
			return nil, err
		}
		c.recordFailure(req, breaker)
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, resp.Status)
		c.recordFailure(req, breaker)
	} else if breaker != nil {
		if _, change := breaker.RecordSuccess(); change.Closed {
			c.logger.InfoContext(req.Context(), "circuit closed", "host", host)
		}
	}
	return resp, nil
}

func (c *Client) recordFailure(req *http.Request, breaker *circuit.Breaker) {
	if breaker == nil {
		return
	}
	if _, change := breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(req.Context(), "circuit opened", "host", req.URL.Host)
	}
}

func (c *Client) breaker(host string) *circuit.Breaker {
	if c.noBreaker {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[host]
	if !ok {
		b = circuit.New(host, c.breakerOpts...)
		c.breakers[host] = b
	}
	return b
}
