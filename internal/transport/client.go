package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type ErrorKind string

const (
	KindTimeout       ErrorKind = "timeout"
	KindRequestFailed ErrorKind = "request_failed"
	KindNotFound      ErrorKind = "not_found"
)

// Error is the terminal outcome of a failed Call, carrying the last observed
// response metadata when there was one.
type Error struct {
	Kind       ErrorKind
	Status     int
	StatusText string
	URL        string
	Err        error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport: %s (%d %s) for %s", e.Kind, e.Status, e.StatusText, e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("transport: %s for %s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("transport: %s for %s", e.Kind, e.URL)
}

func (e *Error) Unwrap() error { return e.Err }

// Options tune a single Call.
type Options struct {
	// Freshness enables the response cache for this call: a cached body
	// younger than this is served without touching the network. Zero
	// disables caching for the call.
	Freshness time.Duration
	// StopOnNotFound makes a 404 terminal (Kind=NotFound) instead of
	// burning the retry budget on it. Callers use it as a fallback signal.
	StopOnNotFound bool
	// SkipAuth leaves the Basic-auth header off, for endpoints that are
	// public.
	SkipAuth bool
}

type Config struct {
	Username   string
	Password   string
	UserAgent  string
	Timeout    time.Duration // per-request; default 15s
	MaxRetries int           // attempts, not re-attempts; default 3
	RetryDelay time.Duration // linear backoff unit; default 1s
	ReqPerSec  float64       // 0 disables rate limiting
	Burst      int
}

// Client is the single outbound HTTP primitive: auth injection, timeout,
// per-host rate limiting, bounded retry with linear backoff, and an optional
// response cache.
type Client struct {
	hc    *http.Client
	cfg   Config
	lim   *HostLimiter
	cache *Cache
	log   zerolog.Logger
}

// New builds a Client. cache may be nil (caching disabled process-wide).
func New(cfg Config, cache *Cache, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	} else if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "JobPostManager/1.0"
	}
	var lim *HostLimiter
	if cfg.ReqPerSec > 0 {
		if cfg.Burst <= 0 {
			cfg.Burst = 1
		}
		lim = NewHostLimiter(cfg.ReqPerSec, cfg.Burst)
	}
	return &Client{
		hc:    &http.Client{Timeout: cfg.Timeout},
		cfg:   cfg,
		lim:   lim,
		cache: cache,
		log:   log.With().Str("component", "transport").Logger(),
	}
}

// Call performs an authenticated GET and returns the response body.
//
// Faithful port note: every failure, including non-404 4xx statuses, is
// retried under the same linear-backoff policy. Retrying permanent client
// errors wastes the backoff budget, but it is what the upstream system did,
// so the behavior is kept rather than optimized per status code.
func (c *Client) Call(ctx context.Context, url string, opt Options) ([]byte, error) {
	if c.cache != nil && opt.Freshness > 0 {
		if body, ok := c.cache.Get(ctx, url, opt.Freshness); ok {
			return body, nil
		}
	}

	var lastErr *Error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		body, terr := c.once(ctx, url, opt)
		if terr == nil {
			if c.cache != nil && opt.Freshness > 0 {
				c.cache.Put(ctx, url, body)
			}
			return body, nil
		}
		if terr.Kind == KindNotFound {
			return nil, terr
		}
		lastErr = terr
		c.log.Warn().Int("attempt", attempt).Str("url", url).Err(terr).Msg("request attempt failed")

		if attempt < c.cfg.MaxRetries {
			delay := time.Duration(attempt) * c.cfg.RetryDelay
			select {
			case <-ctx.Done():
				return nil, &Error{Kind: KindTimeout, URL: url, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, url string, opt Options) ([]byte, *Error) {
	if c.lim != nil {
		if err := c.lim.WaitURL(ctx, url); err != nil {
			return nil, &Error{Kind: KindTimeout, URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindRequestFailed, URL: url, Err: err}
	}
	if !opt.SkipAuth {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &Error{Kind: KindTimeout, URL: url, Err: err}
		}
		return nil, &Error{Kind: KindRequestFailed, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && opt.StopOnNotFound {
		return nil, &Error{Kind: KindNotFound, Status: resp.StatusCode, StatusText: resp.Status, URL: url}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindRequestFailed, Status: resp.StatusCode, StatusText: resp.Status, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindRequestFailed, URL: url, Err: err}
	}
	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
