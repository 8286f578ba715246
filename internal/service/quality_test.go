package service

import (
	"testing"

	"github.com/callscore-ai/callscore/internal/core"
)

func fullState() *core.AnalysisState {
	state := core.NewAnalysisState(nil, core.ConversationMetadata{ProductLine: core.ProductLineIchef}, 1)
	state.Context = &core.ContextData{MeetingType: "demo", Motivation: "replace paper ordering"}
	state.Buyer = &core.BuyerData{PDCM: core.PDCMScore{Pain: core.PainScore{Score: 70}}}
	state.Seller = &core.SellerData{ExecutionScore: 60}
	state.Summary = &core.SummaryData{CustomerMessage: "謝謝您今天的時間"}
	state.CRM = &core.CRMData{Stage: "qualification"}
	state.Coach = &core.CoachData{Strengths: []string{"good discovery"}}
	for _, role := range core.AllRoles() {
		state.Confidence[role] = core.ConfidenceHigh
	}
	return state
}

func TestQualitySatisfiedByCompleteState(t *testing.T) {
	if weak := (DefaultQualityPolicy{}).Insufficient(fullState()); len(weak) != 0 {
		t.Errorf("complete state flagged: %v", weak)
	}
}

func TestQualityFlagsLowConfidence(t *testing.T) {
	state := fullState()
	state.Confidence[core.RoleBuyer] = core.ConfidenceLow

	weak := (DefaultQualityPolicy{}).Insufficient(state)
	if len(weak) != 1 || weak[0] != core.RoleBuyer {
		t.Errorf("weak = %v, want [buyer]", weak)
	}
}

func TestQualityFlagsEmptyRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.AnalysisState)
		want   core.Role
	}{
		{"zero pdcm", func(s *core.AnalysisState) { s.Buyer = &core.BuyerData{} }, core.RoleBuyer},
		{"empty seller", func(s *core.AnalysisState) { s.Seller = &core.SellerData{} }, core.RoleSeller},
		{"empty summary", func(s *core.AnalysisState) { s.Summary = &core.SummaryData{CustomerMessage: "  "} }, core.RoleSummary},
		{"empty context", func(s *core.AnalysisState) { s.Context = &core.ContextData{} }, core.RoleContext},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := fullState()
			tt.mutate(state)
			weak := (DefaultQualityPolicy{}).Insufficient(state)
			if len(weak) != 1 || weak[0] != tt.want {
				t.Errorf("weak = %v, want [%s]", weak, tt.want)
			}
		})
	}
}

func TestQualityIgnoresUnpopulatedSlots(t *testing.T) {
	state := core.NewAnalysisState(nil, core.ConversationMetadata{}, 1)
	if weak := (DefaultQualityPolicy{}).Insufficient(state); len(weak) != 0 {
		t.Errorf("unpopulated slots flagged: %v", weak)
	}
}
