package agent

import (
	"context"
	"errors"
	"sync"

	"github.com/callscore-ai/callscore/internal/core"
	"github.com/callscore-ai/callscore/internal/extract"
	"github.com/callscore-ai/callscore/internal/logging"
)

// Invoker issues one prompt for one role and returns the raw model
// response. The orchestration layer supplies an implementation that
// layers retry and rate limiting over the bare model client.
type Invoker interface {
	Invoke(ctx context.Context, role core.Role, system, user string) (*core.ModelResponse, error)
}

// Executor runs single agents against the shared state. The scheduling
// of which agent runs when belongs to the orchestrator; the executor
// only knows how to run one.
type Executor struct {
	invoker Invoker
	logger  *logging.Logger

	// mu serializes state writes; agents in the same level apply their
	// slots from separate goroutines.
	mu sync.Mutex
}

// NewExecutor creates an executor over the given invoker.
func NewExecutor(invoker Invoker, logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{invoker: invoker, logger: logger}
}

// Run executes one agent: render the prompt, call the model, apply the
// parsed output to the state. Failures of the context agent are fatal
// because every other agent builds on its output; any other agent
// degrades to its default record and the pipeline continues.
func (e *Executor) Run(ctx context.Context, def Definition, state *core.AnalysisState) error {
	log := e.logger.WithAgent(string(def.Role))

	system, user := def.BuildPrompt(state)
	resp, err := e.invoker.Invoke(ctx, def.Role, system, user)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if def.Role == core.RoleContext {
			return core.ErrExecution(core.CodeContextStarved,
				"context agent failed, downstream agents have no situational grounding").WithCause(err)
		}
		log.Warn("agent failed, using default record", "error", err)
		e.mu.Lock()
		def.ApplyDefault(state)
		e.mu.Unlock()
		return nil
	}

	e.mu.Lock()
	def.Apply(state, resp.Text, core.ConfidenceHigh)
	degraded := state.SlotConfidence(def.Role) == core.ConfidenceLow
	e.mu.Unlock()
	if degraded {
		log.Warn("agent output parsed with low confidence")
	}
	return nil
}

// parseInto decodes raw model output into target and downgrades conf
// when structured extraction failed. The target keeps its zero values
// on failure; the caller stores it either way.
func parseInto(raw string, target any, conf *core.Confidence) {
	if extract.Parse(raw, target) == extract.ConfidenceLow {
		*conf = core.ConfidenceLow
	}
}
