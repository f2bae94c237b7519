package catalog

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"fitstream/exerciseservice/internal/providers/common"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		Delay:       1 * time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
	}
}

func TestRetryWithBackoff_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), DefaultRetryConfig(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryWithBackoff_SucceedsOnRetry(t *testing.T) {
	var calls atomic.Int32
	err := RetryWithBackoff(context.Background(), fastRetry(2), func() error {
		if calls.Add(1) < 2 {
			return fmt.Errorf("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil error after retry, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestRetryWithBackoff_DefaultRetriesOnce(t *testing.T) {
	calls := 0
	cfg := DefaultRetryConfig()
	cfg.Delay = time.Millisecond
	err := RetryWithBackoff(context.Background(), cfg, func() error {
		calls++
		return fmt.Errorf("timeout")
	})
	if err == nil || err.Error() != "timeout" {
		t.Fatalf("expected last error 'timeout', got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", calls)
	}
}

func TestRetryWithBackoff_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	cfg := RetryConfig{MaxAttempts: 5, Delay: 100 * time.Millisecond, MaxDelay: time.Second}
	err := RetryWithBackoff(ctx, cfg, func() error {
		calls++
		if calls == 1 {
			cancel()
		}
		return fmt.Errorf("connection reset")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestRetryWithBackoff_LinearDelay(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, Delay: 50 * time.Millisecond, MaxDelay: 5 * time.Second}

	var timestamps []time.Time
	_ = RetryWithBackoff(context.Background(), cfg, func() error {
		timestamps = append(timestamps, time.Now())
		return fmt.Errorf("timeout")
	})

	if len(timestamps) != 3 {
		t.Fatalf("expected 3 timestamps, got %d", len(timestamps))
	}
	// Expected: ~50ms, ~100ms between calls.
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		expectedBase := time.Duration(i) * cfg.Delay
		minGap := time.Duration(float64(expectedBase) * 0.5)
		maxGap := time.Duration(float64(expectedBase) * 2.0)
		if gap < minGap || gap > maxGap {
			t.Errorf("gap[%d] = %v, expected roughly %v (range %v - %v)", i, gap, expectedBase, minGap, maxGap)
		}
	}
}

func TestRetryWithBackoff_NonTransientErrorFailsImmediately(t *testing.T) {
	cases := []error{
		fmt.Errorf("parse error: invalid JSON"),
		&common.HTTPStatusError{Provider: "wger", StatusCode: http.StatusNotFound},
		&common.HTTPStatusError{Provider: "wger", StatusCode: http.StatusUnauthorized},
	}
	for _, failure := range cases {
		calls := 0
		err := RetryWithBackoff(context.Background(), fastRetry(3), func() error {
			calls++
			return failure
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls != 1 {
			t.Fatalf("%v: expected 1 call (non-transient should not retry), got %d", failure, calls)
		}
	}
}

func TestRetryWithBackoff_RetriesServerErrors(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable} {
		calls := 0
		_ = RetryWithBackoff(context.Background(), fastRetry(2), func() error {
			calls++
			return fmt.Errorf("fetch: %w", &common.HTTPStatusError{Provider: "ninjas", StatusCode: code})
		})
		if calls != 2 {
			t.Fatalf("status %d: expected a retry, got %d calls", code, calls)
		}
	}
}

func TestClassifyOutcome(t *testing.T) {
	cases := []struct {
		err  error
		want fetchOutcome
	}{
		{nil, outcomeOK},
		{context.DeadlineExceeded, outcomeTimeout},
		{fmt.Errorf("fetch: %w", context.DeadlineExceeded), outcomeTimeout},
		{&net.DNSError{Err: "i/o timeout", IsTimeout: true}, outcomeTimeout},
		{errors.New("bad request"), outcomeError},
	}
	for _, tc := range cases {
		if got := classifyOutcome(tc.err); got != tc.want {
			t.Fatalf("classifyOutcome(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestRetryDelayHonorsRetryAfter(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, Delay: 10 * time.Millisecond, MaxDelay: time.Second}
	hinted := &common.HTTPStatusError{Provider: "exercisedb", StatusCode: http.StatusTooManyRequests, RetryAfter: 500 * time.Millisecond}
	if got := retryDelay(cfg, 1, hinted); got != 500*time.Millisecond {
		t.Fatalf("expected Retry-After to win, got %v", got)
	}
	capped := &common.HTTPStatusError{Provider: "exercisedb", StatusCode: http.StatusTooManyRequests, RetryAfter: time.Minute}
	if got := retryDelay(cfg, 1, capped); got != time.Second {
		t.Fatalf("expected MaxDelay cap, got %v", got)
	}
	if got := retryDelay(cfg, 2, errors.New("timeout")); got < 15*time.Millisecond || got > 25*time.Millisecond {
		t.Fatalf("expected ~20ms linear delay, got %v", got)
	}
}
