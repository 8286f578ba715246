package agent

import (
	"strings"

	"github.com/callscore-ai/callscore/internal/core"
)

func contextDefinition() Definition {
	return Definition{
		Role:      core.RoleContext,
		DependsOn: nil,
		BuildPrompt: func(state *core.AnalysisState) (string, string) {
			v := vocabFor(state.Metadata.ProductLine)
			system := systemPrompt(state, "Extract the situational facts of the call before any scoring happens.")

			var b strings.Builder
			b.WriteString(transcriptSection(state))
			b.WriteString("\n## Task\n")
			b.WriteString("Identify the meeting context for this " + v.Persona + " conversation. Return JSON with keys:\n")
			b.WriteString(`{"meeting_type": "first_visit|follow_up|demo|closing", "decision_makers": [...], ` +
				`"urgency": "", "deadline": "", "motivation": "", "barriers": [...], ` +
				`"budget_constraint": "", "timeline_constraint": "", "store_info": ""}`)
			return system, b.String()
		},
		Apply: func(state *core.AnalysisState, raw string, conf core.Confidence) {
			record := &core.ContextData{}
			parseInto(raw, record, &conf)
			state.Context = record
			state.Confidence[core.RoleContext] = conf
			state.RawOutputs[core.RoleContext] = raw
		},
		ApplyDefault: func(state *core.AnalysisState) {
			state.Context = &core.ContextData{}
			state.Confidence[core.RoleContext] = core.ConfidenceLow
		},
	}
}
