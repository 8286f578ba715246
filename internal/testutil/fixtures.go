package testutil

import (
	"time"

	"github.com/callscore-ai/callscore/internal/core"
)

// Segments returns a short bilingual transcript fixture.
func Segments() []core.TranscriptSegment {
	return []core.TranscriptSegment{
		{Speaker: "sales", Text: "今天想了解一下你們的狀況", Start: 0, End: 5},
		{Speaker: "customer", Text: "尖峰時段都塞單, 想換系統", Start: 5, End: 11},
	}
}

// Metadata returns conversation metadata for the fixture transcript.
func Metadata() core.ConversationMetadata {
	return core.ConversationMetadata{
		ConversationID: "conv-1",
		OpportunityID:  "opp-1",
		SalesRep:       "Amy",
		Date:           time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
		ProductLine:    core.ProductLineIchef,
	}
}

// AgentScripts returns a complete set of well-formed model responses,
// one per role.
func AgentScripts() map[core.Role]string {
	return map[core.Role]string{
		core.RoleContext: `{"meeting_type": "demo", "decision_makers": ["老闆"], "motivation": "換掉紙本點餐"}`,
		core.RoleBuyer:   `{"pdcm": {"pain": {"score": 90}, "decision": {"score": 70, "has_authority": true}, "champion": {"score": 85}, "metrics": {"score": 60}}, "evidence": ["尖峰時段都塞單"]}`,
		core.RoleSeller:  `{"execution_score": 72, "strengths": ["clear demo"], "improvements": ["ask for budget earlier"]}`,
		core.RoleSummary: `{"customer_message": "謝謝您今天的時間", "hook": {"signal": "asked about onboarding", "quote": "多久可以上線"}, "internal_recap": "# Recap", "action_items": [{"action": "send quote", "owner": "Amy"}]}`,
		core.RoleCRM:     `{"stage": "qualification", "products": ["pos"]}`,
		core.RoleCoach:   `{"strengths": ["good rapport"], "recommendations": ["confirm decision process"], "objections": [{"objection": "價格太高", "handled": false, "suggestion": "show ROI math"}]}`,
	}
}
