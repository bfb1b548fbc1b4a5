// Package upstream fetches JSON from the reporting endpoints with a fixed
// attempt budget, a per-attempt timeout and a constant delay between attempts.
package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultAttempts = 3
	DefaultTimeout  = 15 * time.Second
	DefaultDelay    = 2 * time.Second

	maxBodyBytes = 32 << 20
)

var (
	ErrTimeout = errors.New("request timed out")
	ErrStatus  = errors.New("unexpected upstream status")
)

// StatusError carries the HTTP status of a failed attempt.
type StatusError struct {
	Code int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d", e.Code)
}

func (e StatusError) Unwrap() error {
	return ErrStatus
}

// Config holds the retry budget. Zero values fall back to the defaults.
type Config struct {
	Attempts int
	Timeout  time.Duration
	Delay    time.Duration
}

// Client wraps an http.Client with bounded retries.
type Client struct {
	http     *http.Client
	attempts int
	timeout  time.Duration
	delay    time.Duration

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func New(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		http:     httpClient,
		attempts: cfg.Attempts,
		timeout:  cfg.Timeout,
		delay:    cfg.Delay,
		sleep:    sleepContext,
	}
	if c.attempts <= 0 {
		c.attempts = DefaultAttempts
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.delay <= 0 {
		c.delay = DefaultDelay
	}
	return c
}

// GetJSON performs GET url until it succeeds or the attempt budget is spent.
// The last attempt's error is returned.
func (c *Client) GetJSON(ctx context.Context, url string) ([]byte, error) {
	logger := log.Ctx(ctx).With().Str("url", url).Logger()

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		body, err := c.do(ctx, http.MethodGet, url, nil)
		if err == nil {
			if attempt > 1 {
				logger.Info().Int("attempt", attempt).Msg("Upstream fetch succeeded after retry")
			}
			return body, nil
		}
		lastErr = err
		logger.Warn().Err(err).Int("attempt", attempt).Int("attempts", c.attempts).Msg("Upstream fetch attempt failed")

		if attempt < c.attempts {
			if err := c.sleep(ctx, c.delay); err != nil {
				return nil, fmt.Errorf("upstream fetch interrupted: %w", err)
			}
		}
	}
	return nil, fmt.Errorf("upstream fetch failed after %d attempts: %w", c.attempts, lastErr)
}

// PostJSON sends body once. Writes are not retried.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, body)
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
