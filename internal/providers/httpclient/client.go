package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/config"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// StatusError is returned for any response with status >= 400.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return types.ErrProviderFailure }

// Options configures a Client. Zero values fall back to sane defaults.
type Options struct {
	Name        string
	Timeout     time.Duration
	MaxAttempts int
	BaseBackoff time.Duration
	RatePerSec  float64
	Burst       int
	Headers     map[string]string
	HTTPClient  *http.Client
}

// Client is a JSON-over-HTTP client shared by the provider adapters. It
// rate limits outgoing calls and retries transient failures with
// exponential backoff.
type Client struct {
	name        string
	http        *http.Client
	limiter     *rate.Limiter
	headers     map[string]string
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 200 * time.Millisecond
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		name:        opts.Name,
		http:        hc,
		limiter:     rate.NewLimiter(limit, burst),
		headers:     opts.Headers,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.BaseBackoff,
		logger:      logger.With(slog.String("provider", opts.Name)),
	}
}

// GetJSON performs GET base?query and decodes the body into dst.
func (c *Client) GetJSON(ctx context.Context, base string, query url.Values, dst any) error {
	target := base
	if len(query) > 0 {
		target = base + "?" + query.Encode()
	}

	start := time.Now()
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, target)
	})
	c.record(ctx, start, err)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", c.name, wrapProvider(err))
	}
	defer resp.Body.Close()

	if err = json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s decode response: %w: %v", c.name, types.ErrParseFailure, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries network errors, 429 and 5xx responses while the
// context is alive.
func (c *Client) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := c.backoff
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == c.maxAttempts {
			return nil, lastErr
		}
		c.logger.WarnContext(ctx, "Retrying provider call",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.Any("error", err))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func wrapProvider(err error) error {
	if errors.Is(err, types.ErrProviderFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrProviderFailure, err)
}

func (c *Client) record(ctx context.Context, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("provider", c.name))
	m.ProviderCallDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.ProviderCallErrors.Add(ctx, 1, attrs)
	}
}

// RapidAPIOptions builds client options for a RapidAPI-hosted provider.
func RapidAPIOptions(name string, p config.Provider) Options {
	return Options{
		Name:        name,
		Timeout:     p.Timeout,
		MaxAttempts: p.MaxAttempts,
		RatePerSec:  p.RatePerSec,
		Burst:       p.Burst,
		Headers: map[string]string{
			"x-rapidapi-key":  p.APIKey,
			"x-rapidapi-host": p.Host,
		},
	}
}
