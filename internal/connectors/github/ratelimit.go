package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/manglemix/ruyi-bot-3/internal/logger"
)

// Hourly request quotas.
const (
	AuthenticatedRateLimit = 5000
	AnonymousRateLimit     = 60
)

// Response headers carrying the quota.
const (
	HeaderRateLimit     = "X-RateLimit-Limit"
	HeaderRateRemaining = "X-RateLimit-Remaining"
	HeaderRateReset     = "X-RateLimit-Reset"
)

const (
	// requestsPerSecond spreads the authenticated quota over the hour.
	requestsPerSecond = 1.2

	// reserveFraction of the quota is left unused until the reset.
	reserveFraction = 0.02
)

// RateLimiter paces API calls and backs off once the quota reported by
// GitHub is nearly spent.
type RateLimiter struct {
	bucket *rate.Limiter

	mu        sync.Mutex
	limit     int
	remaining int
	resetTime time.Time
}

// NewRateLimiter creates a limiter assuming a full quota of limit requests.
func NewRateLimiter(limit int) *RateLimiter {
	return &RateLimiter{
		bucket:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		limit:     limit,
		remaining: limit,
	}
}

// Wait blocks until the next request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	until := r.backoff(time.Now())
	if until <= 0 {
		return nil
	}
	logger.Warn("github quota nearly spent, waiting %s", until.Round(time.Second))

	timer := time.NewTimer(until)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoff returns how long to wait before the quota resets, or zero.
func (r *RateLimiter) backoff(now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.remaining > int(float64(r.limit)*reserveFraction) || !now.Before(r.resetTime) {
		return 0
	}
	return r.resetTime.Sub(now)
}

// UpdateFromResponse records the quota headers of resp.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, err := strconv.Atoi(resp.Header.Get(HeaderRateLimit)); err == nil {
		r.limit = v
	}
	if v, err := strconv.Atoi(resp.Header.Get(HeaderRateRemaining)); err == nil {
		r.remaining = v
	}
	if v, err := strconv.ParseInt(resp.Header.Get(HeaderRateReset), 10, 64); err == nil {
		r.resetTime = time.Unix(v, 0)
	}
}

// Remaining returns the last reported remaining requests.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the last reported quota.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// ResetTime returns when the quota resets.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}
