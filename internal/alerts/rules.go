// Package alerts turns finished analysis results into actionable alert
// records: a small ordered rule engine plus the persistence that keeps
// re-evaluation idempotent.
package alerts

import (
	"fmt"
	"strings"

	"github.com/callscore-ai/callscore/internal/core"
)

// AlertType is the closed set of alert kinds.
type AlertType string

const (
	AlertCloseNow             AlertType = "close_now"
	AlertMissingDecisionMaker AlertType = "missing_decision_maker"
	AlertManagerEscalation    AlertType = "manager_escalation"
)

// Severity grades an alert for routing.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// EvaluationContext bundles everything a rule may look at. Rules are
// pure functions of this value; they never reach into storage.
type EvaluationContext struct {
	OpportunityID  string
	ConversationID string

	Score          core.QualificationScore
	TranscriptText string

	// ConversationCount is how many conversations exist for the
	// opportunity, this one included.
	ConversationCount int

	// RecentOveralls holds the last overall scores for the opportunity,
	// most recent first, this conversation's score included.
	RecentOveralls []int
}

// AlertResult is one emitted alert. Context carries display data for
// downstream consumers and is never used for control flow.
type AlertResult struct {
	Type     AlertType
	Severity Severity
	Title    string
	Message  string
	Context  map[string]any
}

// Rule inspects the context and emits at most one alert.
type Rule func(ctx EvaluationContext) (AlertResult, bool)

// buyingSignalKeywords are the explicit contract words that mark a
// close-now moment.
var buyingSignalKeywords = []string{"簽約", "合約"}

// CloseNowRule fires when a strongly qualified deal shows an explicit
// buying signal in the transcript.
func CloseNowRule(ctx EvaluationContext) (AlertResult, bool) {
	if ctx.Score.OverallScore < 80 {
		return AlertResult{}, false
	}
	if ctx.Score.Dimension(core.DimChampion).Score < 4 {
		return AlertResult{}, false
	}
	signal := ""
	for _, kw := range buyingSignalKeywords {
		if strings.Contains(ctx.TranscriptText, kw) {
			signal = kw
			break
		}
	}
	if signal == "" {
		return AlertResult{}, false
	}

	return AlertResult{
		Type:     AlertCloseNow,
		Severity: SeverityHigh,
		Title:    "Close now",
		Message: fmt.Sprintf("Overall score %d with a strong champion and the customer said %q. Push for signature.",
			ctx.Score.OverallScore, signal),
		Context: map[string]any{
			"overall_score":    ctx.Score.OverallScore,
			"champion_score":   ctx.Score.Dimension(core.DimChampion).Score,
			"buying_signal":    signal,
			"suggested_action": "schedule the contract conversation within 48 hours",
		},
	}, true
}

// MissingDecisionMakerRule fires when the economic buyer is still
// absent after repeated conversations.
func MissingDecisionMakerRule(ctx EvaluationContext) (AlertResult, bool) {
	if ctx.Score.Dimension(core.DimEconomicBuyer).Score > 2 {
		return AlertResult{}, false
	}
	if ctx.ConversationCount < 2 {
		return AlertResult{}, false
	}

	return AlertResult{
		Type:     AlertMissingDecisionMaker,
		Severity: SeverityMedium,
		Title:    "Decision maker still missing",
		Message: fmt.Sprintf("%d conversations in and the person with budget authority has not joined.",
			ctx.ConversationCount),
		Context: map[string]any{
			"economic_buyer_score": ctx.Score.Dimension(core.DimEconomicBuyer).Score,
			"conversation_count":   ctx.ConversationCount,
			"suggested_action":     "ask the contact to bring the owner to the next call",
		},
	}, true
}

// ManagerEscalationRule fires when the three most recent overall scores
// are all below 40: the deal is stalling and needs a manager.
func ManagerEscalationRule(ctx EvaluationContext) (AlertResult, bool) {
	if len(ctx.RecentOveralls) < 3 {
		return AlertResult{}, false
	}
	recent := ctx.RecentOveralls[:3]
	for _, score := range recent {
		if score >= 40 {
			return AlertResult{}, false
		}
	}

	return AlertResult{
		Type:     AlertManagerEscalation,
		Severity: SeverityHigh,
		Title:    "Manager escalation",
		Message:  fmt.Sprintf("Last three overall scores %v are all below 40.", recent),
		Context: map[string]any{
			"recent_scores":    recent,
			"suggested_action": "manager joins the next conversation or the deal is parked",
		},
	}, true
}
