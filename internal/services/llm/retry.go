package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"emojiplot/internal/services"
)

// RetryPolicy bounds how often and how long the client retries a request.
// Delays double from BaseDelay up to MaxDelay; a server Retry-After wins when
// present, still capped by MaxDelay.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy allows five attempts starting one second apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 5, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
}

func (p RetryPolicy) attempts() int {
	return max(p.Attempts, 1)
}

// next reports whether attempt may be followed by another and how long to
// wait first.
func (p RetryPolicy) next(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if attempt >= p.attempts() || ctx.Err() != nil || !retryable(err) {
		return 0, false
	}
	var status *statusError
	if errors.As(err, &status) && status.RetryAfter > 0 {
		return p.cap(status.RetryAfter), true
	}
	if p.BaseDelay <= 0 {
		return 0, true
	}
	delay := p.BaseDelay
	for i := 1; i < attempt && (p.MaxDelay <= 0 || delay < p.MaxDelay); i++ {
		delay *= 2
	}
	return p.cap(delay), true
}

func (p RetryPolicy) cap(d time.Duration) time.Duration {
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// retryable covers throttling, server errors, empty replies and network
// timeouts. Client errors such as a bad key fail immediately.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *statusError
	if errors.As(err, &status) {
		return status.Code == http.StatusRequestTimeout ||
			status.Code == http.StatusTooManyRequests ||
			status.Code >= http.StatusInternalServerError
	}
	var empty *emptyReplyError
	if errors.As(err, &empty) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// markerFor classifies the final failure for callers using errors.Is.
func markerFor(err error) error {
	if retryable(err) {
		return services.ErrTransient
	}
	var status *statusError
	if errors.As(err, &status) && (status.Code == http.StatusUnauthorized || status.Code == http.StatusForbidden) {
		return services.ErrConfiguration
	}
	return services.ErrGeneration
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
