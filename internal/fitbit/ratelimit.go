package fitbit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Fitbit rate limits:
// - 150 requests per user per hour, reset at the top of the hour

// RateLimiter manages the Fitbit hourly request budget
type RateLimiter struct {
	mu sync.Mutex

	limit    int
	used     int
	resetsAt time.Time

	// Minimum interval between requests
	minInterval time.Duration
	lastRequest time.Time

	now func() time.Time
}

// NewRateLimiter creates a new rate limiter with Fitbit's limits
func NewRateLimiter() *RateLimiter {
	return newRateLimiter(150, 100*time.Millisecond, time.Now)
}

// NewRateLimiterWith creates a limiter with a custom hourly budget and spacing
func NewRateLimiterWith(limit int, minInterval time.Duration) *RateLimiter {
	return newRateLimiter(limit, minInterval, time.Now)
}

func newRateLimiter(limit int, minInterval time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		resetsAt:    now().Truncate(time.Hour).Add(time.Hour),
		minInterval: minInterval,
		now:         now,
	}
}

// Wait blocks until a request can be made without exceeding rate limits
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.now().After(r.resetsAt) {
		r.used = 0
		r.resetsAt = r.now().Truncate(time.Hour).Add(time.Hour)
	}

	// Hourly budget spent
	if r.used >= r.limit {
		if err := r.sleep(ctx, r.resetsAt.Sub(r.now())); err != nil {
			return err
		}
		r.used = 0
		r.resetsAt = r.now().Truncate(time.Hour).Add(time.Hour)
	}

	// Enforce minimum interval between requests
	if elapsed := r.now().Sub(r.lastRequest); elapsed < r.minInterval {
		if err := r.sleep(ctx, r.minInterval-elapsed); err != nil {
			return err
		}
	}

	r.used++
	r.lastRequest = r.now()
	return nil
}

// sleep releases the lock while waiting
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	r.mu.Unlock()
	defer r.mu.Lock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFromHeaders updates rate limit state from Fitbit response headers
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Fitbit returns: Fitbit-Rate-Limit-Limit: "150", Fitbit-Rate-Limit-Remaining: "42"
	// and Fitbit-Rate-Limit-Reset: seconds until the window resets
	limit, limitErr := strconv.Atoi(h.Get("Fitbit-Rate-Limit-Limit"))
	if limitErr == nil && limit > 0 {
		r.limit = limit
	}
	if remaining, err := strconv.Atoi(h.Get("Fitbit-Rate-Limit-Remaining")); err == nil {
		r.used = max(0, r.limit-remaining)
	}
	if reset, err := strconv.Atoi(h.Get("Fitbit-Rate-Limit-Reset")); err == nil && reset >= 0 {
		r.resetsAt = r.now().Add(time.Duration(reset) * time.Second)
	}
}

// Status returns the remaining budget and when it resets
func (r *RateLimiter) Status() (remaining int, resetsAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit - r.used, r.resetsAt
}
