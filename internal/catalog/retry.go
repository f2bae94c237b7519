package catalog

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"fitstream/exerciseservice/internal/providers/common"
)

// RetryConfig bounds provider retries. The n-th retry waits about n*Delay,
// or the upstream's Retry-After hint when longer, never more than MaxDelay.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig is one retry after ~300ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 2,
		Delay:       300 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// RetryWithBackoff calls fn until it succeeds, fails permanently, or runs out
// of attempts, and returns the last error. Cancellation stops the wait.
func RetryWithBackoff(ctx context.Context, cfg RetryConfig, fn func() error) error {
	attempts := max(cfg.MaxAttempts, 1)

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= attempts || !isTransientError(err) {
			return err
		}
		if waitErr := sleepCtx(ctx, retryDelay(cfg, attempt, err)); waitErr != nil {
			return waitErr
		}
	}
}

func retryDelay(cfg RetryConfig, attempt int, err error) time.Duration {
	delay := jitter(time.Duration(attempt) * cfg.Delay)
	var statusErr *common.HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > delay {
		delay = statusErr.RetryAfter
	}
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// jitter spreads d by ±25%.
func jitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.75 + rand.Float64()*0.5))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isTransientError: timeouts, network failures, truncated bodies, 429 and
// 5xx. Other 4xx, malformed payloads and cancellation are final.
func isTransientError(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	var statusErr *common.HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	lower := strings.ToLower(err.Error())
	for _, marker := range []string{"timeout", "deadline exceeded", "connection reset", "connection refused"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
