package core

// Confidence marks how trustworthy a parsed agent record is. It is
// informational: a low-confidence record still flows downstream, the
// orchestrator only uses the marker to tag results and drive refinement.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// ContextData holds the situational facts extracted before any scoring runs.
type ContextData struct {
	MeetingType        string   `json:"meeting_type"`
	DecisionMakers     []string `json:"decision_makers"`
	Urgency            string   `json:"urgency"`
	Deadline           string   `json:"deadline"`
	Motivation         string   `json:"motivation"`
	Barriers           []string `json:"barriers"`
	BudgetConstraint   string   `json:"budget_constraint"`
	TimelineConstraint string   `json:"timeline_constraint"`
	StoreInfo          string   `json:"store_info"`
}

// PainScore measures how acute the customer's problem is.
type PainScore struct {
	Score   int    `json:"score"` // 0-100
	Level   string `json:"level"`
	Urgency string `json:"urgency"`
}

// DecisionScore measures who decides and whether they were in the room.
type DecisionScore struct {
	Score        int    `json:"score"` // 0-100
	MakerRole    string `json:"maker_role"`
	HasAuthority bool   `json:"has_authority"`
}

// ChampionScore measures internal advocacy for the purchase.
type ChampionScore struct {
	Score    int    `json:"score"` // 0-100
	Attitude string `json:"attitude"`
}

// MetricsScore measures the quantified impact the customer expects.
type MetricsScore struct {
	Score         int    `json:"score"` // 0-100
	MonthlyImpact string `json:"monthly_impact"`
}

// PDCMScore is the four-dimension intermediate qualification score
// produced from the customer's side of the conversation.
type PDCMScore struct {
	Pain     PainScore     `json:"pain"`
	Decision DecisionScore `json:"decision"`
	Champion ChampionScore `json:"champion"`
	Metrics  MetricsScore  `json:"metrics"`
}

// BuyerData is the buyer-perspective analysis: the PDCM score plus
// customer classification. CompetitorNotes is populated only when the
// competitor scan flagged the conversation.
type BuyerData struct {
	PDCM              PDCMScore `json:"pdcm"`
	CustomerType      string    `json:"customer_type"`
	SwitchingConcerns []string  `json:"switching_concerns"`
	CompetitorNotes   string    `json:"competitor_notes,omitempty"`
	Evidence          []string  `json:"evidence"`
}

// SellerData scores the sales rep's execution of the call.
type SellerData struct {
	ExecutionScore   int      `json:"execution_score"` // 0-100
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
	FollowUpStrategy string   `json:"follow_up_strategy"`
	SafetyAlert      bool     `json:"safety_alert"`
	SafetyReason     string   `json:"safety_reason,omitempty"`
}

// HookPoint is the single strongest buying signal with a supporting quote.
type HookPoint struct {
	Signal string `json:"signal"`
	Quote  string `json:"quote"`
}

// ActionItem is one follow-up task with its owner.
type ActionItem struct {
	Action string `json:"action"`
	Owner  string `json:"owner"`
}

// SummaryData carries the customer-facing message and the internal recap.
type SummaryData struct {
	CustomerMessage string       `json:"customer_message"`
	Hook            HookPoint    `json:"hook"`
	InternalRecap   string       `json:"internal_recap"` // markdown
	ActionItems     []ActionItem `json:"action_items"`
}

// CRMData holds the structured fields destined for a CRM record.
type CRMData struct {
	Stage           string   `json:"stage"`
	BudgetMention   string   `json:"budget_mention"`
	DecisionMakers  []string `json:"decision_makers"`
	TimelineUrgency string   `json:"timeline_urgency"`
	Products        []string `json:"products"`
}

// Objection is one customer objection and how it was handled.
type Objection struct {
	Objection  string `json:"objection"`
	Handled    bool   `json:"handled"`
	Suggestion string `json:"suggestion"`
}

// CoachData synthesizes coaching feedback on the rep's handling of the call.
type CoachData struct {
	Strengths        []string    `json:"strengths"`
	Weaknesses       []string    `json:"weaknesses"`
	Objections       []Objection `json:"objections"`
	Recommendations  []string    `json:"recommendations"`
	EscalationNeeded bool        `json:"escalation_needed"`
	EscalationReason string      `json:"escalation_reason,omitempty"`
}
