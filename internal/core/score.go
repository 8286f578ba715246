package core

// Dimension names the six final qualification dimensions.
type Dimension string

const (
	DimMetrics          Dimension = "metrics"
	DimEconomicBuyer    Dimension = "economic_buyer"
	DimDecisionCriteria Dimension = "decision_criteria"
	DimDecisionProcess  Dimension = "decision_process"
	DimIdentifyPain     Dimension = "identify_pain"
	DimChampion         Dimension = "champion"
)

// AllDimensions returns the six dimensions in canonical order.
func AllDimensions() []Dimension {
	return []Dimension{
		DimMetrics,
		DimEconomicBuyer,
		DimDecisionCriteria,
		DimDecisionProcess,
		DimIdentifyPain,
		DimChampion,
	}
}

// QualificationStatus buckets the overall score.
type QualificationStatus string

const (
	StatusHigh   QualificationStatus = "high"
	StatusMedium QualificationStatus = "medium"
	StatusLow    QualificationStatus = "low"
	StatusAtRisk QualificationStatus = "at_risk"
)

// DimensionScore is one final dimension with its supporting material.
type DimensionScore struct {
	Score           int      `json:"score"` // 0-5
	Evidence        []string `json:"evidence"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
}

// QualificationScore is the six-dimension final score.
type QualificationScore struct {
	Dimensions   map[Dimension]DimensionScore `json:"dimensions"`
	OverallScore int                          `json:"overall_score"` // 0-100
	Status       QualificationStatus          `json:"status"`
}

// Dimension returns the score for one dimension, zero-valued if absent.
func (q QualificationScore) Dimension(d Dimension) DimensionScore {
	if q.Dimensions == nil {
		return DimensionScore{}
	}
	return q.Dimensions[d]
}
