package service

import (
	"fmt"
	"math"

	"github.com/callscore-ai/callscore/internal/core"
)

// dimensionWeights are the tunable weights of the overall score. They
// sum to 1.0; economic buyer and identified pain count the most.
var dimensionWeights = map[core.Dimension]float64{
	core.DimEconomicBuyer:    0.20,
	core.DimIdentifyPain:     0.20,
	core.DimMetrics:          0.15,
	core.DimDecisionCriteria: 0.15,
	core.DimDecisionProcess:  0.15,
	core.DimChampion:         0.15,
}

// Status bands on the overall score. AtRisk is not a band, it is an
// override driven by safety and escalation flags.
const (
	statusHighFloor   = 80
	statusMediumFloor = 50
)

// ScoreMapper folds the buyer's four-dimension score into the
// six-dimension qualification score. Mapping is deterministic and pure:
// the same state always produces the same score.
type ScoreMapper struct{}

// NewScoreMapper creates a score mapper.
func NewScoreMapper() *ScoreMapper {
	return &ScoreMapper{}
}

// Map produces the qualification score from the analysis state. Pain
// maps to identified pain, decision to decision process, champion to
// champion and decision criteria, metrics to metrics. The economic
// buyer dimension is derived from the binary authority flag alone:
// authority present scores 80, absent scores 40, before the 0-5
// scaling. The flag is the only signal the transcript reliably gives.
func (m *ScoreMapper) Map(state *core.AnalysisState) core.QualificationScore {
	pdcm := core.PDCMScore{}
	var evidence []string
	if state.Buyer != nil {
		pdcm = state.Buyer.PDCM
		evidence = state.Buyer.Evidence
	}

	economicBuyer := economicBuyerRaw(pdcm.Decision.HasAuthority)

	dims := map[core.Dimension]core.DimensionScore{
		core.DimIdentifyPain:     m.dimension(pdcm.Pain.Score, evidence, state),
		core.DimDecisionProcess:  m.dimension(pdcm.Decision.Score, evidence, state),
		core.DimEconomicBuyer:    m.dimension(economicBuyer, evidence, state),
		core.DimChampion:         m.dimension(pdcm.Champion.Score, evidence, state),
		core.DimDecisionCriteria: m.dimension(pdcm.Champion.Score, evidence, state),
		core.DimMetrics:          m.dimension(pdcm.Metrics.Score, evidence, state),
	}
	annotateGaps(dims, pdcm)

	overall := 0.0
	for dim, score := range dims {
		overall += dimensionWeights[dim] * float64(score.Score) * 20
	}
	overallScore := clampInt(int(math.Round(overall)), 0, 100)

	return core.QualificationScore{
		Dimensions:   dims,
		OverallScore: overallScore,
		Status:       m.status(overallScore, state),
	}
}

// economicBuyerRaw is the binary authority rule. Kept in one place so a
// graded replacement only touches this function.
func economicBuyerRaw(hasAuthority bool) int {
	if hasAuthority {
		return 80
	}
	return 40
}

// dimension scales a 0-100 raw score onto the 0-5 band and attaches
// shared evidence and low-score recommendations.
func (m *ScoreMapper) dimension(raw int, evidence []string, state *core.AnalysisState) core.DimensionScore {
	score := clampInt(int(math.Round(float64(clampInt(raw, 0, 100))/20.0)), 0, 5)

	d := core.DimensionScore{Score: score}
	if len(evidence) > 0 {
		d.Evidence = append([]string{}, evidence...)
	}
	if score <= 2 && state.Coach != nil && len(state.Coach.Recommendations) > 0 {
		d.Recommendations = append([]string{}, state.Coach.Recommendations...)
	}
	return d
}

// annotateGaps writes the dimension-specific gap text for weak scores.
func annotateGaps(dims map[core.Dimension]core.DimensionScore, pdcm core.PDCMScore) {
	gap := func(dim core.Dimension, text string) {
		d := dims[dim]
		d.Gaps = append(d.Gaps, text)
		dims[dim] = d
	}

	if !pdcm.Decision.HasAuthority {
		role := pdcm.Decision.MakerRole
		if role == "" {
			role = "unknown"
		}
		gap(core.DimEconomicBuyer, fmt.Sprintf("decision maker not in the conversation (contact role: %s)", role))
	}
	if dims[core.DimIdentifyPain].Score <= 2 {
		gap(core.DimIdentifyPain, "pain point not established or not acute enough to drive a purchase")
	}
	if dims[core.DimChampion].Score <= 2 {
		gap(core.DimChampion, "no internal champion advocating for the purchase")
		gap(core.DimDecisionCriteria, "selection criteria never surfaced in the conversation")
	}
	if dims[core.DimMetrics].Score <= 2 {
		gap(core.DimMetrics, "no quantified impact discussed")
	}
	if dims[core.DimDecisionProcess].Score <= 2 {
		gap(core.DimDecisionProcess, "purchase process and timeline unclear")
	}
}

// status maps the overall score onto the qualification bands. A safety
// alert from the seller agent or an escalation from the coach overrides
// the band to at-risk regardless of the numbers.
func (m *ScoreMapper) status(overall int, state *core.AnalysisState) core.QualificationStatus {
	if state.Seller != nil && state.Seller.SafetyAlert {
		return core.StatusAtRisk
	}
	if state.Coach != nil && state.Coach.EscalationNeeded {
		return core.StatusAtRisk
	}
	switch {
	case overall >= statusHighFloor:
		return core.StatusHigh
	case overall >= statusMediumFloor:
		return core.StatusMedium
	default:
		return core.StatusLow
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
