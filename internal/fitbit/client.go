package fitbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
)

// BaseURL is the Fitbit Web API host
const BaseURL = "https://api.fitbit.com"

const (
	// BreakerCooldown is how long the breaker stays open before letting a
	// probe request through. It is shorter than the first sync retry backoff.
	BreakerCooldown = time.Second
	// breakerTrip is the number of consecutive failed requests that opens the breaker
	breakerTrip = 5
	// halfOpenRequests lets one day's concurrent endpoint requests through a
	// half-open breaker; all of them succeeding closes it
	halfOpenRequests = 10
)

var (
	// ErrRateLimited matches any APIError with status 429
	ErrRateLimited = errors.New("fitbit rate limit reached")
	// ErrUnauthorized matches any APIError with status 401
	ErrUnauthorized = errors.New("fitbit is not connected")
)

// APIError is a non-2xx response from the Fitbit API
type APIError struct {
	Status     int
	Message    string
	RetryAfter time.Duration // from Retry-After on 429, zero if absent
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets errors.Is match the status sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// IsCircuitOpen reports whether err is the breaker refusing a request
// rather than Fitbit failing one
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// IsRetryable reports whether a failed request is worth repeating.
// Transport failures and an open breaker are retryable; API errors only for 429, 408 and 5xx.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	return apiErr.Status == http.StatusTooManyRequests ||
		apiErr.Status == http.StatusRequestTimeout ||
		apiErr.Status >= 500
}

// TokenInvalidator is implemented by token sources that can be forced to refresh
type TokenInvalidator interface {
	Invalidate()
}

// Client is a Fitbit Web API client
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *RateLimiter
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	invalidator TokenInvalidator
	cooldown    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another host, used by tests
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithRateLimiter replaces the default limiter
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// WithBreakerCooldown changes how long the breaker stays open
func WithBreakerCooldown(d time.Duration) Option {
	return func(c *Client) {
		c.cooldown = d
	}
}

// NewClient creates a new Fitbit API client. If tokenSource can be
// invalidated, a 401 forces one refresh and the request is repeated.
func NewClient(tokenSource oauth2.TokenSource, opts ...Option) *Client {
	c := NewHTTPClient(oauth2.NewClient(context.Background(), tokenSource), opts...)
	if inv, ok := tokenSource.(TokenInvalidator); ok {
		c.invalidator = inv
	}
	return c
}

// NewHTTPClient creates a client over an already authorized http.Client
func NewHTTPClient(httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		httpClient:  httpClient,
		baseURL:     BaseURL,
		rateLimiter: NewRateLimiter(),
		cooldown:    BreakerCooldown,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "fitbit",
		MaxRequests: halfOpenRequests,
		Interval:    60 * time.Second,
		Timeout:     c.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTrip
		},
		// Missing scopes and absent data are not outages
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, errAbandoned)
		},
	})
	return c
}

// errAbandoned marks a request cut short by its own context, e.g. a sibling
// in a fan-out failed first. The transport error then carries the sibling's
// cause, so the breaker ignores it.
var errAbandoned = errors.New("fitbit request abandoned")

// RateLimitStatus returns the remaining requests in the current hour
func (c *Client) RateLimitStatus() (remaining int, resetsAt time.Time) {
	return c.rateLimiter.Status()
}

// GetActivitySummary fetches the daily activity summary
func (c *Client) GetActivitySummary(ctx context.Context, day time.Time) (*ActivitySummaryResponse, error) {
	return getJSON[ActivitySummaryResponse](ctx, c, "/1/user/-/activities/date/"+dayKey(day)+".json")
}

// GetSleep fetches the sleep log for the night ending on day
func (c *Client) GetSleep(ctx context.Context, day time.Time) (*SleepResponse, error) {
	return getJSON[SleepResponse](ctx, c, "/1.2/user/-/sleep/date/"+dayKey(day)+".json")
}

// GetHeart fetches heart rate zones and resting heart rate
func (c *Client) GetHeart(ctx context.Context, day time.Time) (*HeartResponse, error) {
	return getJSON[HeartResponse](ctx, c, "/1/user/-/activities/heart/date/"+dayKey(day)+"/1d.json")
}

// GetCardioScore fetches VO2 max and cardio fitness score
func (c *Client) GetCardioScore(ctx context.Context, day time.Time) (*CardioScoreResponse, error) {
	return getJSON[CardioScoreResponse](ctx, c, "/1/user/-/cardioscore/date/"+dayKey(day)+".json")
}

// GetHRV fetches heart rate variability
func (c *Client) GetHRV(ctx context.Context, day time.Time) (*HRVResponse, error) {
	return getJSON[HRVResponse](ctx, c, "/1/user/-/hrv/date/"+dayKey(day)+".json")
}

// GetBreathingRate fetches the nightly breathing rate
func (c *Client) GetBreathingRate(ctx context.Context, day time.Time) (*BreathingRateResponse, error) {
	return getJSON[BreathingRateResponse](ctx, c, "/1/user/-/br/date/"+dayKey(day)+".json")
}

// GetSpO2 fetches blood oxygen saturation
func (c *Client) GetSpO2(ctx context.Context, day time.Time) (*SpO2Response, error) {
	return getJSON[SpO2Response](ctx, c, "/1/user/-/spo2/date/"+dayKey(day)+".json")
}

// GetSkinTemp fetches the nightly relative skin temperature
func (c *Client) GetSkinTemp(ctx context.Context, day time.Time) (*TempResponse, error) {
	return getJSON[TempResponse](ctx, c, "/1/user/-/temp/skin/date/"+dayKey(day)+".json")
}

// GetCoreTemp fetches logged core temperature
func (c *Client) GetCoreTemp(ctx context.Context, day time.Time) (*TempResponse, error) {
	return getJSON[TempResponse](ctx, c, "/1/user/-/temp/core/date/"+dayKey(day)+".json")
}

// GetActivityLogs fetches up to 100 logged activities starting before the day after day.
// Callers filter to the day they need.
func (c *Client) GetActivityLogs(ctx context.Context, day time.Time) (*ActivityListResponse, error) {
	params := url.Values{}
	params.Set("beforeDate", dayKey(day.AddDate(0, 0, 1)))
	params.Set("sort", "desc")
	params.Set("offset", "0")
	params.Set("limit", "100")
	return getJSON[ActivityListResponse](ctx, c, "/1/user/-/activities/list.json?"+params.Encode())
}

func getJSON[T any](ctx context.Context, c *Client, path string) (*T, error) {
	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	resp, err := c.do(ctx, path)
	if errors.Is(err, ErrUnauthorized) && c.invalidator != nil {
		c.invalidator.Invalidate()
		resp, err = c.do(ctx, path)
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, path string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	return c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", errAbandoned, context.Cause(ctx))
			}
			// oauth2 transport errors carry the refresh failure
			var rerr *oauth2.RetrieveError
			if errors.As(err, &rerr) {
				return nil, &APIError{Status: http.StatusUnauthorized, Message: "Fitbit token refresh failed"}
			}
			return nil, err
		}

		c.rateLimiter.UpdateFromHeaders(resp.Header)

		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, newAPIError(resp)
	})
}

func newAPIError(resp *http.Response) *APIError {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		e := &APIError{Status: resp.StatusCode, Message: "Fitbit rate limit reached. Try syncing again shortly."}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			e.RetryAfter = time.Duration(secs) * time.Second
		}
		return e
	case http.StatusUnauthorized:
		return &APIError{Status: resp.StatusCode, Message: "Fitbit is not connected"}
	case http.StatusForbidden:
		return &APIError{Status: resp.StatusCode, Message: "Missing required Fitbit scopes. Reconnect and approve all requested scopes."}
	}
	return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("Fitbit request failed (%d)", resp.StatusCode)}
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
