package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/callscore-ai/callscore/internal/core"
	"github.com/callscore-ai/callscore/internal/logging"
	"github.com/callscore-ai/callscore/internal/testutil"
)

// flakyClient fails a fixed number of times before answering.
type flakyClient struct {
	failures int
	err      error
	text     string
	calls    int
}

func (c *flakyClient) Name() string { return "flaky" }

func (c *flakyClient) Complete(ctx context.Context, req core.ModelRequest) (*core.ModelResponse, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, c.err
	}
	return &core.ModelResponse{Text: c.text, TokensIn: 200, TokensOut: 80}, nil
}

func newTestInvoker(client core.ModelClient, metrics *MetricsCollector) *ModelInvoker {
	return NewModelInvoker(
		client,
		fastPolicy(3),
		NewRateLimiter(RateLimiterConfig{MaxTokens: 10, RefillRate: 100}),
		metrics,
		logging.NewNop(),
	)
}

func TestInvokeRetriesTransientFailures(t *testing.T) {
	client := &flakyClient{failures: 2, err: core.ErrRateLimit("429"), text: "{}"}
	metrics := NewMetricsCollector()
	inv := newTestInvoker(client, metrics)

	resp, err := inv.Invoke(context.Background(), core.RoleBuyer, "sys", "user")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Text != "{}" {
		t.Errorf("text = %q", resp.Text)
	}
	if client.calls != 3 {
		t.Errorf("client calls = %d, want 3", client.calls)
	}

	snap := metrics.Snapshot()
	m := snap.Agents[core.RoleBuyer]
	if m.Retries != 2 {
		t.Errorf("retries = %d, want 2", m.Retries)
	}
	if m.Invocations != 1 || m.TokensIn != 200 || m.TokensOut != 80 {
		t.Errorf("invocation metrics = %+v", m)
	}
	if m.Failures != 0 {
		t.Errorf("failures = %d, want 0", m.Failures)
	}
}

func TestInvokeRecordsFailureAfterExhaustion(t *testing.T) {
	client := &flakyClient{failures: 10, err: core.ErrTimeout("deadline")}
	metrics := NewMetricsCollector()
	inv := newTestInvoker(client, metrics)

	_, err := inv.Invoke(context.Background(), core.RoleSeller, "sys", "user")
	if !IsRetryExhausted(err) {
		t.Fatalf("error = %v, want retry exhaustion", err)
	}
	if m := metrics.Snapshot().Agents[core.RoleSeller]; m.Failures != 1 {
		t.Errorf("failures = %d, want 1", m.Failures)
	}
}

func TestInvokeDoesNotRetryAuthErrors(t *testing.T) {
	client := &testutil.StaticClient{Err: core.ErrAuth("bad key")}
	inv := newTestInvoker(client, NewMetricsCollector())

	_, err := inv.Invoke(context.Background(), core.RoleBuyer, "sys", "user")
	if !core.IsCategory(err, core.ErrCatAuth) {
		t.Fatalf("error = %v, want auth", err)
	}
	if client.CallCount() != 1 {
		t.Errorf("client calls = %d, want 1", client.CallCount())
	}
}

func TestInvokeRejectsEmptyCompletion(t *testing.T) {
	client := &testutil.StaticClient{}
	inv := newTestInvoker(client, NewMetricsCollector())

	_, err := inv.Invoke(context.Background(), core.RoleBuyer, "sys", "user")
	var derr *core.DomainError
	if !errors.As(err, &derr) || derr.Code != core.CodeEmptyCompletion {
		t.Fatalf("error = %v, want %s", err, core.CodeEmptyCompletion)
	}
	// Empty completions are transient and retried before giving up.
	if client.CallCount() != 3 {
		t.Errorf("client calls = %d, want 3", client.CallCount())
	}
}

func TestInvokeHonorsRateLimiterCancellation(t *testing.T) {
	client := &testutil.StaticClient{Text: "{}"}
	limiter := NewRateLimiter(RateLimiterConfig{MaxTokens: 1, RefillRate: 0.001})
	limiter.TryAcquire()
	inv := NewModelInvoker(client, fastPolicy(1), limiter, nil, logging.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := inv.Invoke(ctx, core.RoleBuyer, "sys", "user")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
	if client.CallCount() != 0 {
		t.Error("client must not be called while rate limited")
	}
}
