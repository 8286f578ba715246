package agent

import (
	"strings"

	"github.com/callscore-ai/callscore/internal/core"
)

func crmDefinition() Definition {
	return Definition{
		Role:      core.RoleCRM,
		DependsOn: []core.Role{core.RoleContext, core.RoleBuyer},
		BuildPrompt: func(state *core.AnalysisState) (string, string) {
			system := systemPrompt(state, "Extract the structured fields for the CRM record.")

			var b strings.Builder
			b.WriteString(transcriptSection(state))
			b.WriteString("\n")
			b.WriteString(contextSection(state))
			b.WriteString(buyerSummarySection(state))
			b.WriteString("\n## Task\n")
			b.WriteString("Map this conversation to CRM fields. stage must be one of ")
			b.WriteString("prospecting, qualification, proposal, negotiation, closed_won, closed_lost. ")
			b.WriteString("Return JSON:\n")
			b.WriteString(`{"stage": "", "budget_mention": "", "decision_makers": [...], ` +
				`"timeline_urgency": "", "products": [...]}`)
			return system, b.String()
		},
		Apply: func(state *core.AnalysisState, raw string, conf core.Confidence) {
			record := &core.CRMData{}
			parseInto(raw, record, &conf)
			state.CRM = record
			state.Confidence[core.RoleCRM] = conf
			state.RawOutputs[core.RoleCRM] = raw
		},
		ApplyDefault: func(state *core.AnalysisState) {
			state.CRM = &core.CRMData{}
			state.Confidence[core.RoleCRM] = core.ConfidenceLow
		},
	}
}
