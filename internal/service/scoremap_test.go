package service

import (
	"reflect"
	"testing"

	"github.com/callscore-ai/callscore/internal/core"
)

func stateWithPDCM(pdcm core.PDCMScore) *core.AnalysisState {
	state := core.NewAnalysisState(nil, core.ConversationMetadata{ProductLine: core.ProductLineIchef}, 0)
	state.Buyer = &core.BuyerData{PDCM: pdcm, Evidence: []string{"quoted line"}}
	return state
}

func TestMapDimensionAssignment(t *testing.T) {
	state := stateWithPDCM(core.PDCMScore{
		Pain:     core.PainScore{Score: 100},
		Decision: core.DecisionScore{Score: 60, HasAuthority: true},
		Champion: core.ChampionScore{Score: 80},
		Metrics:  core.MetricsScore{Score: 40},
	})

	score := NewScoreMapper().Map(state)

	wantDims := map[core.Dimension]int{
		core.DimIdentifyPain:     5, // pain 100
		core.DimDecisionProcess:  3, // decision 60
		core.DimEconomicBuyer:    4, // authority -> 80
		core.DimChampion:         4, // champion 80
		core.DimDecisionCriteria: 4, // follows champion
		core.DimMetrics:          2, // metrics 40
	}
	for dim, want := range wantDims {
		if got := score.Dimension(dim).Score; got != want {
			t.Errorf("%s = %d, want %d", dim, got, want)
		}
	}

	// Weighted sum of the scaled dimensions:
	// 0.20*100 + 0.15*60 + 0.20*80 + 0.15*80 + 0.15*80 + 0.15*40 = 75
	if score.OverallScore != 75 {
		t.Errorf("overall = %d, want 75", score.OverallScore)
	}
	if score.Status != core.StatusMedium {
		t.Errorf("status = %s, want medium", score.Status)
	}
}

func TestMapAuthorityRule(t *testing.T) {
	withAuth := NewScoreMapper().Map(stateWithPDCM(core.PDCMScore{
		Decision: core.DecisionScore{HasAuthority: true},
	}))
	withoutAuth := NewScoreMapper().Map(stateWithPDCM(core.PDCMScore{
		Decision: core.DecisionScore{HasAuthority: false},
	}))

	if got := withAuth.Dimension(core.DimEconomicBuyer).Score; got != 4 {
		t.Errorf("economic buyer with authority = %d, want 4", got)
	}
	if got := withoutAuth.Dimension(core.DimEconomicBuyer).Score; got != 2 {
		t.Errorf("economic buyer without authority = %d, want 2", got)
	}
	if len(withoutAuth.Dimension(core.DimEconomicBuyer).Gaps) == 0 {
		t.Error("missing authority should record a gap")
	}
}

func TestMapIsDeterministic(t *testing.T) {
	state := stateWithPDCM(core.PDCMScore{
		Pain:     core.PainScore{Score: 73},
		Decision: core.DecisionScore{Score: 51, HasAuthority: true},
		Champion: core.ChampionScore{Score: 66},
		Metrics:  core.MetricsScore{Score: 88},
	})
	m := NewScoreMapper()
	first := m.Map(state)
	second := m.Map(state)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input must produce identical output")
	}
}

func TestMapRangesAlwaysHold(t *testing.T) {
	// Out-of-range input from the parser still maps into bounds.
	inputs := []core.PDCMScore{
		{},
		{Pain: core.PainScore{Score: -50}, Metrics: core.MetricsScore{Score: 500}},
		{Pain: core.PainScore{Score: 100}, Decision: core.DecisionScore{Score: 100, HasAuthority: true},
			Champion: core.ChampionScore{Score: 100}, Metrics: core.MetricsScore{Score: 100}},
	}
	m := NewScoreMapper()
	for i, pdcm := range inputs {
		score := m.Map(stateWithPDCM(pdcm))
		if score.OverallScore < 0 || score.OverallScore > 100 {
			t.Errorf("input %d: overall %d out of [0,100]", i, score.OverallScore)
		}
		for dim, d := range score.Dimensions {
			if d.Score < 0 || d.Score > 5 {
				t.Errorf("input %d: %s = %d out of [0,5]", i, dim, d.Score)
			}
		}
	}
}

func TestMapNilBuyerYieldsFloor(t *testing.T) {
	state := core.NewAnalysisState(nil, core.ConversationMetadata{ProductLine: core.ProductLineIchef}, 0)
	score := NewScoreMapper().Map(state)

	// No authority flag means the 40-point floor on economic buyer.
	if got := score.Dimension(core.DimEconomicBuyer).Score; got != 2 {
		t.Errorf("economic buyer = %d, want 2", got)
	}
	if score.Status != core.StatusLow {
		t.Errorf("status = %s, want low", score.Status)
	}
}

func TestStatusAtRiskOverrides(t *testing.T) {
	strong := core.PDCMScore{
		Pain:     core.PainScore{Score: 100},
		Decision: core.DecisionScore{Score: 100, HasAuthority: true},
		Champion: core.ChampionScore{Score: 100},
		Metrics:  core.MetricsScore{Score: 100},
	}

	state := stateWithPDCM(strong)
	state.Seller = &core.SellerData{SafetyAlert: true, SafetyReason: "promised an unsupported integration"}
	if got := NewScoreMapper().Map(state).Status; got != core.StatusAtRisk {
		t.Errorf("safety alert: status = %s, want at_risk", got)
	}

	state = stateWithPDCM(strong)
	state.Coach = &core.CoachData{EscalationNeeded: true}
	if got := NewScoreMapper().Map(state).Status; got != core.StatusAtRisk {
		t.Errorf("escalation: status = %s, want at_risk", got)
	}
}

func TestDimensionWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, dim := range core.AllDimensions() {
		w, ok := dimensionWeights[dim]
		if !ok {
			t.Fatalf("no weight for %s", dim)
		}
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("weights sum to %v, want 1.0", sum)
	}
}
