// Package agent defines the six analysis agents and the shared harness
// that executes them. Each agent renders one prompt from the analysis
// state, issues one model call, parses the response into its typed slot
// and returns. Agents are stateless; everything lives in the state.
package agent

import (
	"github.com/callscore-ai/callscore/internal/core"
)

// Definition declares one agent: its role, the roles whose output it
// needs, and its prompt/apply behavior. The dependency list is data the
// orchestrator schedules from, not control flow inside the agents.
type Definition struct {
	Role      core.Role
	DependsOn []core.Role

	// BuildPrompt renders the system and user prompt from the state.
	BuildPrompt func(state *core.AnalysisState) (system, user string)

	// Apply parses raw model output and writes the role's slot. It must
	// tolerate any input; parse failures degrade to defaults.
	Apply func(state *core.AnalysisState, raw string, conf core.Confidence)

	// ApplyDefault writes the safe fallback record used when the model
	// call itself failed.
	ApplyDefault func(state *core.AnalysisState)
}

// Graph returns the full agent graph in declaration order. Buyer and
// seller both depend only on context and may run concurrently; coach
// sees everything.
func Graph() []Definition {
	return []Definition{
		contextDefinition(),
		buyerDefinition(),
		sellerDefinition(),
		summaryDefinition(),
		crmDefinition(),
		coachDefinition(),
	}
}

// ByRole returns the definition for one role.
func ByRole(role core.Role) (Definition, bool) {
	for _, def := range Graph() {
		if def.Role == role {
			return def, true
		}
	}
	return Definition{}, false
}
