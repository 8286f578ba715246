package agent

import (
	"strings"

	"github.com/callscore-ai/callscore/internal/core"
)

func coachDefinition() Definition {
	return Definition{
		Role: core.RoleCoach,
		DependsOn: []core.Role{
			core.RoleContext, core.RoleBuyer, core.RoleSeller, core.RoleSummary, core.RoleCRM,
		},
		BuildPrompt: func(state *core.AnalysisState) (string, string) {
			system := systemPrompt(state, "Coach the sales rep based on the full analysis.")

			var b strings.Builder
			b.WriteString(transcriptSection(state))
			b.WriteString("\n")
			b.WriteString(contextSection(state))
			b.WriteString(buyerSummarySection(state))
			b.WriteString(sellerSummarySection(state))
			b.WriteString(competitorSection(state))
			b.WriteString("\n## Task\n")
			b.WriteString("List what the rep did well, what to improve, each objection and whether it was ")
			b.WriteString("handled, and concrete recommendations for the next touch. Set escalation_needed ")
			b.WriteString("only when a manager must step in before the next contact. Return JSON:\n")
			b.WriteString(`{"strengths": [...], "weaknesses": [...], ` +
				`"objections": [{"objection": "", "handled": false, "suggestion": ""}], ` +
				`"recommendations": [...], "escalation_needed": false, "escalation_reason": ""}`)
			return system, b.String()
		},
		Apply: func(state *core.AnalysisState, raw string, conf core.Confidence) {
			record := &core.CoachData{}
			parseInto(raw, record, &conf)
			if !record.EscalationNeeded {
				record.EscalationReason = ""
			}
			state.Coach = record
			state.Confidence[core.RoleCoach] = conf
			state.RawOutputs[core.RoleCoach] = raw
		},
		ApplyDefault: func(state *core.AnalysisState) {
			state.Coach = &core.CoachData{}
			state.Confidence[core.RoleCoach] = core.ConfidenceLow
		},
	}
}
