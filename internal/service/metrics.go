package service

import (
	"sync"
	"time"

	"github.com/callscore-ai/callscore/internal/core"
)

// MetricsCollector accumulates per-agent counters during a run. All
// methods are safe for concurrent use; agents in one level record from
// separate goroutines.
type MetricsCollector struct {
	mu          sync.Mutex
	startedAt   time.Time
	agents      map[core.Role]core.AgentMetrics
	refinements int
}

// NewMetricsCollector starts a collector clocked from now.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		startedAt: time.Now(),
		agents:    make(map[core.Role]core.AgentMetrics),
	}
}

// RecordInvocation records one completed model call for a role.
func (c *MetricsCollector) RecordInvocation(role core.Role, tokensIn, tokensOut int, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.agents[role]
	m.Invocations++
	m.TokensIn += tokensIn
	m.TokensOut += tokensOut
	m.Duration += d
	c.agents[role] = m
}

// RecordRetry records one retry wait for a role.
func (c *MetricsCollector) RecordRetry(role core.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.agents[role]
	m.Retries++
	c.agents[role] = m
}

// RecordFailure records one definitive (post-retry) failure for a role.
func (c *MetricsCollector) RecordFailure(role core.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.agents[role]
	m.Failures++
	c.agents[role] = m
}

// RecordRefinement counts one refinement pass.
func (c *MetricsCollector) RecordRefinement() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refinements++
}

// Snapshot closes the collection window and returns the run metrics.
func (c *MetricsCollector) Snapshot() core.RunMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	completed := time.Now()
	agents := make(map[core.Role]core.AgentMetrics, len(c.agents))
	for role, m := range c.agents {
		agents[role] = m
	}
	return core.RunMetrics{
		StartedAt:   c.startedAt,
		CompletedAt: completed,
		Duration:    completed.Sub(c.startedAt),
		Agents:      agents,
		Refinements: c.refinements,
	}
}
