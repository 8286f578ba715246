package service

import (
	"context"
	"time"

	"github.com/callscore-ai/callscore/internal/core"
	"github.com/callscore-ai/callscore/internal/logging"
)

// ModelInvoker layers rate limiting, retry policy and metrics over a
// bare model client. It is the Invoker the agent executor calls.
type ModelInvoker struct {
	client  core.ModelClient
	retry   *RetryPolicy
	limiter *RateLimiter
	metrics *MetricsCollector
	logger  *logging.Logger

	baseRequest core.ModelRequest
}

// NewModelInvoker wires the invoker. A nil retry policy or limiter
// falls back to the defaults; metrics may be nil when nobody reads them.
func NewModelInvoker(client core.ModelClient, retry *RetryPolicy, limiter *RateLimiter, metrics *MetricsCollector, logger *logging.Logger) *ModelInvoker {
	if retry == nil {
		retry = DefaultRetryPolicy()
	}
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimiterConfig())
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ModelInvoker{
		client:      client,
		retry:       retry,
		limiter:     limiter,
		metrics:     metrics,
		logger:      logger,
		baseRequest: core.DefaultModelRequest(),
	}
}

// WithBaseRequest overrides the request defaults (token budget,
// temperature, per-call timeout) applied to every invocation.
func (m *ModelInvoker) WithBaseRequest(req core.ModelRequest) *ModelInvoker {
	m.baseRequest = req
	return m
}

// Invoke issues one prompt for one role: acquire a rate-limit token,
// call the model under retry policy, reject empty completions.
func (m *ModelInvoker) Invoke(ctx context.Context, role core.Role, system, user string) (*core.ModelResponse, error) {
	log := m.logger.WithAgent(string(role))

	if err := m.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	req := m.baseRequest
	req.System = system
	req.Prompt = user

	var resp *core.ModelResponse
	start := time.Now()
	err := m.retry.ExecuteWithNotify(ctx, func(ctx context.Context) error {
		r, err := m.client.Complete(ctx, req)
		if err != nil {
			return err
		}
		if r.Text == "" {
			return core.ErrExecution(core.CodeEmptyCompletion, "model returned an empty completion")
		}
		resp = r
		return nil
	}, func(attempt int, err error, delay time.Duration) {
		if m.metrics != nil {
			m.metrics.RecordRetry(role)
		}
		log.Warn("model call failed, retrying",
			"attempt", attempt, "delay", delay.String(), "error", err)
	})
	if err != nil {
		if m.metrics != nil {
			m.metrics.RecordFailure(role)
		}
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.RecordInvocation(role, resp.TokensIn, resp.TokensOut, time.Since(start))
	}
	log.Debug("model call complete",
		"tokens_in", resp.TokensIn, "tokens_out", resp.TokensOut, "duration", time.Since(start).String())
	return resp, nil
}
