package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/callscore-ai/callscore/internal/core"
)

func fastPolicy(attempts int) *RetryPolicy {
	return NewRetryPolicy(
		WithMaxAttempts(attempts),
		WithBaseDelay(time.Millisecond),
		WithMaxDelay(5*time.Millisecond),
		WithJitter(0),
	)
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return core.ErrRateLimit("slow down")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	wantErr := core.ErrAuth("bad key")
	err := fastPolicy(3).Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want auth error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, non-retryable errors must not be retried", calls)
	}
}

func TestRetryExhaustion(t *testing.T) {
	calls := 0
	err := fastPolicy(2).Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return core.ErrTimeout("deadline")
	})
	if !IsRetryExhausted(err) {
		t.Fatalf("error = %v, want RetryExhaustedError", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	var exhausted *RetryExhaustedError
	if !errors.As(err, &exhausted) || !core.IsCategory(exhausted.LastErr, core.ErrCatTimeout) {
		t.Errorf("exhausted error should wrap the last failure, got %v", err)
	}
}

func TestRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := fastPolicy(3).Execute(ctx, func(ctx context.Context) error {
		t.Fatal("fn must not run after cancellation")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestRetryNotifyCalledPerWait(t *testing.T) {
	var notified int
	err := fastPolicy(3).ExecuteWithNotify(context.Background(), func(ctx context.Context) error {
		return core.ErrNetwork("flaky")
	}, func(attempt int, err error, delay time.Duration) {
		notified++
	})
	if !IsRetryExhausted(err) {
		t.Fatalf("error = %v", err)
	}
	if notified != 2 {
		t.Errorf("notify calls = %d, want 2 (no wait after the last attempt)", notified)
	}
}

func TestCalculateDelayBackoffAndCap(t *testing.T) {
	p := NewRetryPolicy(
		WithBaseDelay(time.Second),
		WithMaxDelay(5*time.Second),
		WithMultiplier(2),
		WithJitter(0),
	)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second}, // capped
		{10, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := p.CalculateDelayNoJitter(tt.attempt); got != tt.want {
			t.Errorf("attempt %d: delay = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestCalculateDelayJitterStaysInBounds(t *testing.T) {
	p := NewRetryPolicy(
		WithBaseDelay(time.Second),
		WithMaxDelay(time.Minute),
		WithMultiplier(2),
		WithJitter(0.2),
	)
	for i := 0; i < 100; i++ {
		d := p.CalculateDelay(2)
		if d < 1600*time.Millisecond || d > 2400*time.Millisecond {
			t.Fatalf("jittered delay %v outside ±20%% of 2s", d)
		}
	}
}
