package agent

import (
	"strings"

	"github.com/callscore-ai/callscore/internal/core"
)

func sellerDefinition() Definition {
	return Definition{
		Role:      core.RoleSeller,
		DependsOn: []core.Role{core.RoleContext},
		BuildPrompt: func(state *core.AnalysisState) (string, string) {
			system := systemPrompt(state, "Evaluate the sales rep's execution of the call.")

			var b strings.Builder
			b.WriteString(transcriptSection(state))
			b.WriteString("\n")
			b.WriteString(contextSection(state))
			b.WriteString("\n## Task\n")
			b.WriteString("Score the rep " + state.Metadata.SalesRep + " on discovery quality, objection handling and ")
			b.WriteString("next-step clarity. Raise safety_alert only for promises the product cannot keep, ")
			b.WriteString("unauthorized discounts or misleading claims. Return JSON:\n")
			b.WriteString(`{"execution_score": 0, "strengths": [...], "improvements": [...], ` +
				`"follow_up_strategy": "", "safety_alert": false, "safety_reason": ""}`)
			return system, b.String()
		},
		Apply: func(state *core.AnalysisState, raw string, conf core.Confidence) {
			record := &core.SellerData{}
			parseInto(raw, record, &conf)
			record.ExecutionScore = clampScore(record.ExecutionScore)
			if !record.SafetyAlert {
				record.SafetyReason = ""
			}
			state.Seller = record
			state.Confidence[core.RoleSeller] = conf
			state.RawOutputs[core.RoleSeller] = raw
		},
		ApplyDefault: func(state *core.AnalysisState) {
			state.Seller = &core.SellerData{}
			state.Confidence[core.RoleSeller] = core.ConfidenceLow
		},
	}
}
