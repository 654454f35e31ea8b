package google

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
	"github.com/custodia-labs/googlewrapper/internal/logger"
)

// RateLimitConfig holds rate limiting configuration for a client.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits provides conservative per-endpoint defaults.
// These are well below Google's published per-user quotas.
var DefaultRateLimits = map[domain.Endpoint]RateLimitConfig{
	domain.EndpointSearchConsole: {RequestsPerSecond: 5.0, BurstSize: 10},
	domain.EndpointAnalytics:     {RequestsPerSecond: 2.0, BurstSize: 5},
	domain.EndpointCalendar:      {RequestsPerSecond: 5.0, BurstSize: 10},
	domain.EndpointSheets:        {RequestsPerSecond: 1.0, BurstSize: 5}, // 60 reads/min/user
	domain.EndpointGmail:         {RequestsPerSecond: 2.0, BurstSize: 5},
	domain.EndpointDrive:         {RequestsPerSecond: 8.0, BurstSize: 10},
	domain.EndpointDocs:          {RequestsPerSecond: 1.0, BurstSize: 5},
}

// defaultBackoff applies when a 429 arrives without a usable Retry-After header.
const defaultBackoff = 60 * time.Second

// RateLimiter throttles requests with a token bucket and honours server
// backoff recorded from 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff period. Non-positive values use the default.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}
	r.retryAt = time.Now().Add(retryAfter)
}

// Allow reports whether a request may proceed immediately.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}

// throttledTransport waits on a RateLimiter before each request.
// A 429 response is returned to the caller as-is; it only delays later requests.
type throttledTransport struct {
	limiter *RateLimiter
	base    http.RoundTripper
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		backoff := parseRetryAfter(resp.Header.Get("Retry-After"))
		logger.Warn("rate limited by %s, backing off %s", req.URL.Host, backoff)
		t.limiter.RecordRateLimitError(backoff)
	}
	return resp, nil
}

// parseRetryAfter understands the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return defaultBackoff
	}
	return time.Duration(secs) * time.Second
}
