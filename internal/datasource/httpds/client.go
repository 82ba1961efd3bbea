// Package httpds downloads raw extracts over HTTP with retry and backoff. The
// default mirror is the public IMDB dataset host.
package httpds

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// DefaultBaseURL serves the IMDB non-commercial datasets.
const DefaultBaseURL = "https://datasets.imdbws.com/"

const userAgent = "moviemart/1 (+https://developer.imdb.com/non-commercial-datasets/)"

// Config tunes the download client. Zero values mean: 10m timeout per
// extract, 3 retries, backoff from 500ms doubling up to 30s.
type Config struct {
	// Timeout bounds one download including the body; the larger dumps are
	// several hundred MB.
	Timeout    time.Duration
	MaxRetries int

	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	InsecureSkipVerify bool

	// Transport replaces the default transport, mostly for tests.
	Transport http.RoundTripper
}

type retryPolicy struct {
	retries int
	initial time.Duration
	max     time.Duration
}

// delay is the pause before retry number attempt+1. A Retry-After header in
// seconds wins over the exponential schedule, still capped at max.
func (p retryPolicy) delay(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			return min(time.Duration(secs)*time.Second, p.max)
		}
	}
	return backoffDuration(p.initial, attempt, p.max)
}

// Client fetches URLs, retrying transient failures.
type Client struct {
	hc     *http.Client
	policy retryPolicy

	sleep func(context.Context, time.Duration) error
}

// NewClient builds a Client, filling in defaults.
func NewClient(cfg Config) *Client {
	p := retryPolicy{retries: cfg.MaxRetries, initial: cfg.InitialBackoff, max: cfg.MaxBackoff}
	if p.retries <= 0 {
		p.retries = 3
	}
	if p.initial <= 0 {
		p.initial = 500 * time.Millisecond
	}
	if p.max <= 0 {
		p.max = 30 * time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	rt := cfg.Transport
	if rt == nil {
		rt = &http.Transport{
			Proxy:              http.ProxyFromEnvironment,
			DisableCompression: true, // extracts are already gzip
			TLSClientConfig:    &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec // opt-in
		}
	}
	return &Client{
		hc:     &http.Client{Timeout: timeout, Transport: rt},
		policy: p,
		sleep:  sleepCtx,
	}
}

// Get fetches url. Transport errors, 429 and 5xx are retried; any other
// response is returned as is and the caller closes its body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if url == "" {
		return nil, fmt.Errorf("httpds: empty url")
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := c.once(ctx, url)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		case transient(resp.StatusCode):
			lastErr = fmt.Errorf("httpds: GET %s: status %d", url, resp.StatusCode)
			_ = resp.Body.Close()
		default:
			return resp, nil
		}

		if attempt >= c.policy.retries {
			return nil, lastErr
		}
		if err := c.sleep(ctx, c.policy.delay(attempt, resp)); err != nil {
			return nil, err
		}
	}
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) once(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpds: request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	return c.hc.Do(req)
}

func transient(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// backoffDuration doubles initial per attempt, capped at max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial << attempt
	if d <= 0 || d > max {
		return max
	}
	return d
}
