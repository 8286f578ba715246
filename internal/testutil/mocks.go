// Package testutil provides shared test doubles and fixtures.
package testutil

import (
	"context"
	"sync"

	"github.com/callscore-ai/callscore/internal/core"
)

// ScriptedInvoker returns canned model responses per role, in order,
// and is safe for the concurrent levels the pipeline runs. An
// exhausted script repeats its last response.
type ScriptedInvoker struct {
	mu        sync.Mutex
	responses map[core.Role][]string
	errs      map[core.Role]error
	failFrom  map[core.Role]int
	calls     map[core.Role]int
}

// NewScriptedInvoker creates an empty scripted invoker. Roles without a
// script answer with "{}".
func NewScriptedInvoker() *ScriptedInvoker {
	return &ScriptedInvoker{
		responses: make(map[core.Role][]string),
		errs:      make(map[core.Role]error),
		failFrom:  make(map[core.Role]int),
		calls:     make(map[core.Role]int),
	}
}

// Script sets the response sequence for a role.
func (s *ScriptedInvoker) Script(role core.Role, responses ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[role] = responses
}

// Fail makes every invocation for a role return err.
func (s *ScriptedInvoker) Fail(role core.Role, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[role] = err
}

// FailAfter lets the first n invocations for a role succeed and makes
// every later one return err.
func (s *ScriptedInvoker) FailAfter(role core.Role, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[role] = err
	s.failFrom[role] = n
}

// Calls returns how many times a role was invoked.
func (s *ScriptedInvoker) Calls(role core.Role) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[role]
}

// Invoke implements the agent invoker contract.
func (s *ScriptedInvoker) Invoke(ctx context.Context, role core.Role, _, _ string) (*core.ModelResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.calls[role]
	s.calls[role] = n + 1
	if err, ok := s.errs[role]; ok && n >= s.failFrom[role] {
		return nil, err
	}
	queue := s.responses[role]
	if len(queue) == 0 {
		return &core.ModelResponse{Text: "{}"}, nil
	}
	if n >= len(queue) {
		n = len(queue) - 1
	}
	return &core.ModelResponse{Text: queue[n], TokensIn: 120, TokensOut: 40}, nil
}

// StaticClient is a core.ModelClient that always answers with the same
// text.
type StaticClient struct {
	Text  string
	Err   error
	mu    sync.Mutex
	calls int
}

// Name implements core.ModelClient.
func (c *StaticClient) Name() string { return "static" }

// CallCount returns how many completions were requested.
func (c *StaticClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Complete implements core.ModelClient.
func (c *StaticClient) Complete(ctx context.Context, _ core.ModelRequest) (*core.ModelResponse, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Err != nil {
		return nil, c.Err
	}
	return &core.ModelResponse{Text: c.Text, TokensIn: 100, TokensOut: 50}, nil
}
