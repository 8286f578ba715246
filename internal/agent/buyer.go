package agent

import (
	"strings"

	"github.com/callscore-ai/callscore/internal/core"
)

func buyerDefinition() Definition {
	return Definition{
		Role:      core.RoleBuyer,
		DependsOn: []core.Role{core.RoleContext},
		BuildPrompt: func(state *core.AnalysisState) (string, string) {
			v := vocabFor(state.Metadata.ProductLine)
			system := systemPrompt(state, "Score the customer's qualification from their side of the conversation.")

			var b strings.Builder
			b.WriteString(transcriptSection(state))
			b.WriteString("\n")
			b.WriteString(contextSection(state))
			b.WriteString(competitorSection(state))
			b.WriteString("\n## Task\n")
			b.WriteString("Score pain, decision, champion and metrics on 0-100 for this " + v.Persona +
				". Typical pains in this industry: " + v.PainExamples + ". Return JSON:\n")
			b.WriteString(`{"pdcm": {` +
				`"pain": {"score": 0, "level": "", "urgency": ""}, ` +
				`"decision": {"score": 0, "maker_role": "", "has_authority": false}, ` +
				`"champion": {"score": 0, "attitude": ""}, ` +
				`"metrics": {"score": 0, "monthly_impact": ""}}, ` +
				`"customer_type": "", "switching_concerns": [...], "competitor_notes": "", "evidence": [...]}`)
			return system, b.String()
		},
		Apply: func(state *core.AnalysisState, raw string, conf core.Confidence) {
			record := &core.BuyerData{}
			parseInto(raw, record, &conf)
			clampPDCM(&record.PDCM)
			if !state.HasCompetitor {
				// The competitor branch is gated by the scan, not by the model.
				record.CompetitorNotes = ""
			}
			state.Buyer = record
			state.Confidence[core.RoleBuyer] = conf
			state.RawOutputs[core.RoleBuyer] = raw
		},
		ApplyDefault: func(state *core.AnalysisState) {
			state.Buyer = &core.BuyerData{}
			state.Confidence[core.RoleBuyer] = core.ConfidenceLow
		},
	}
}

func clampPDCM(p *core.PDCMScore) {
	p.Pain.Score = clampScore(p.Pain.Score)
	p.Decision.Score = clampScore(p.Decision.Score)
	p.Champion.Score = clampScore(p.Champion.Score)
	p.Metrics.Score = clampScore(p.Metrics.Score)
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
