// Package ratelimit contains the retry policies the client consults when the
// service answers 429. The package is a leaf: it knows about headers and
// durations, not about the client.
package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	DefaultFixedDelay = 2 * time.Second

	textCodeRateLimited = "CLIENT_RATE_LIMITED"
)

// FixedDelayPolicy waits the same duration between every resubmission. This
// matches the service's guidance: back off a fixed interval, do not ramp.
type FixedDelayPolicy struct {
	Delay time.Duration
}

func NewFixedDelayPolicy(delay time.Duration) FixedDelayPolicy {
	if delay <= 0 {
		delay = DefaultFixedDelay
	}
	return FixedDelayPolicy{Delay: delay}
}

func (p FixedDelayPolicy) NextDelay(int) time.Duration {
	if p.Delay <= 0 {
		return DefaultFixedDelay
	}
	return p.Delay
}

// ExponentialPolicy doubles the delay per attempt up to Max. Not the default;
// offered for callers that poll aggressively and prefer decay over a flat
// interval.
type ExponentialPolicy struct {
	Initial time.Duration
	Max     time.Duration
}

func (p ExponentialPolicy) NextDelay(attempt int) time.Duration {
	initial := p.Initial
	if initial <= 0 {
		initial = time.Second
	}
	maximum := p.Max
	if maximum <= 0 {
		maximum = time.Minute
	}
	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maximum {
			return maximum
		}
	}
	if delay > maximum {
		return maximum
	}
	return delay
}

type ThrottledError struct {
	BaseID     string
	RetryAfter time.Duration
}

func (e ThrottledError) Error() string {
	return fmt.Sprintf(
		"ratelimit: base %q throttled for %s",
		strings.TrimSpace(e.BaseID),
		e.RetryAfter,
	)
}

func (e ThrottledError) ToClientError() *goerrors.Error {
	metadata := map[string]any{
		"base_id": strings.TrimSpace(e.BaseID),
	}
	if e.RetryAfter > 0 {
		metadata["retry_after_ms"] = e.RetryAfter.Milliseconds()
	}
	return goerrors.New(e.Error(), goerrors.CategoryRateLimit).
		WithCode(http.StatusTooManyRequests).
		WithTextCode(textCodeRateLimited).
		WithMetadata(metadata)
}

// RetryAfterHint parses a Retry-After header, either delta-seconds or an
// HTTP date, and reports how long the service asked the caller to wait.
func RetryAfterHint(headers map[string]string, now time.Time) (time.Duration, bool) {
	raw := headerValue(headers, "retry-after")
	if raw == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if retryAt, err := httpDate(raw); err == nil {
		if retryAt.After(now) {
			return retryAt.Sub(now), true
		}
	}
	return 0, false
}

func httpDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("ratelimit: empty date")
	}
	if parsed, err := time.Parse(time.RFC1123, value); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(time.RFC1123Z, value); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("ratelimit: invalid http date")
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
