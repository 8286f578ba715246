package service

import (
	"strings"

	"github.com/callscore-ai/callscore/internal/core"
)

// QualityPolicy decides which agent outputs are too weak to score from.
// The pipeline re-runs the roles it returns (plus their dependents)
// until the policy is satisfied or the refinement budget is spent.
type QualityPolicy interface {
	// Insufficient returns the roles whose current output needs another
	// pass. An empty slice means the state is good enough.
	Insufficient(state *core.AnalysisState) []core.Role
}

// DefaultQualityPolicy flags low-confidence slots and outputs that are
// structurally empty where the scoring depends on them being filled.
type DefaultQualityPolicy struct{}

// Insufficient implements QualityPolicy.
func (DefaultQualityPolicy) Insufficient(state *core.AnalysisState) []core.Role {
	var out []core.Role
	for _, role := range core.AllRoles() {
		if !state.Populated(role) {
			continue // never ran, not the quality loop's problem
		}
		if state.SlotConfidence(role) == core.ConfidenceLow {
			out = append(out, role)
			continue
		}
		if emptyForScoring(state, role) {
			out = append(out, role)
		}
	}
	return out
}

// emptyForScoring checks role-specific emptiness: a record that parsed
// cleanly but carries nothing the score mapper or alert rules can use.
func emptyForScoring(state *core.AnalysisState, role core.Role) bool {
	switch role {
	case core.RoleBuyer:
		p := state.Buyer.PDCM
		return p.Pain.Score == 0 && p.Decision.Score == 0 && p.Champion.Score == 0 && p.Metrics.Score == 0
	case core.RoleSeller:
		return state.Seller.ExecutionScore == 0 && len(state.Seller.Strengths) == 0 && len(state.Seller.Improvements) == 0
	case core.RoleSummary:
		return strings.TrimSpace(state.Summary.CustomerMessage) == "" && strings.TrimSpace(state.Summary.InternalRecap) == ""
	case core.RoleContext:
		return state.Context.MeetingType == "" && len(state.Context.DecisionMakers) == 0 && state.Context.Motivation == ""
	default:
		return false
	}
}
