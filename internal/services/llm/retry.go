package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// retryPolicy retries transient failures with doubling delays capped at ceiling.
type retryPolicy struct {
	attempts int
	base     time.Duration
	ceiling  time.Duration
	sleep    func(time.Duration)
}

func (p retryPolicy) run(ctx context.Context, call func() (string, error)) (string, error) {
	total := max(p.attempts, 1)
	var err error
	for attempt := 1; attempt <= total; attempt++ {
		var text string
		text, err = call()
		if err == nil {
			return text, nil
		}
		if attempt == total || ctx.Err() != nil {
			break
		}
		wait, ok := p.waitAfter(err, attempt)
		if !ok {
			return "", err
		}
		if serr := p.pause(ctx, wait); serr != nil {
			return "", serr
		}
	}
	if total > 1 {
		return "", fmt.Errorf("llm generate: failed after %d attempts: %w", total, err)
	}
	return "", err
}

// waitAfter decides whether err is worth another attempt and how long to wait.
func (p retryPolicy) waitAfter(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	var empty *emptyReplyError
	if errors.As(err, &empty) {
		return p.delayFor(attempt), true
	}
	var status *statusError
	if errors.As(err, &status) {
		if status.Code != http.StatusRequestTimeout && status.Code != http.StatusTooManyRequests && status.Code < 500 {
			return 0, false
		}
		if status.RetryAfter > 0 {
			return p.clamp(status.RetryAfter), true
		}
		return p.delayFor(attempt), true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return p.delayFor(attempt), true
	}
	return 0, false
}

// delayFor returns base * 2^(attempt-1), clamped.
func (p retryPolicy) delayFor(attempt int) time.Duration {
	if p.base <= 0 {
		return 0
	}
	delay := p.base
	for i := 1; i < attempt && (p.ceiling <= 0 || delay < p.ceiling); i++ {
		delay *= 2
	}
	return p.clamp(delay)
}

func (p retryPolicy) clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if p.ceiling > 0 && d > p.ceiling {
		return p.ceiling
	}
	return d
}

func (p retryPolicy) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if p.sleep != nil {
		p.sleep(d)
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

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, secs >= 0
	}
	if when, err := http.ParseTime(value); err == nil {
		if d := time.Until(when); d >= 0 {
			return d, true
		}
	}
	return 0, false
}
