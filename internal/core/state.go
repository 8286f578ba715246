package core

// Role identifies one analysis agent in the pipeline graph.
type Role string

const (
	RoleContext Role = "context"
	RoleBuyer   Role = "buyer"
	RoleSeller  Role = "seller"
	RoleSummary Role = "summary"
	RoleCRM     Role = "crm"
	RoleCoach   Role = "coach"
)

// AllRoles returns every role in declaration order.
func AllRoles() []Role {
	return []Role{RoleContext, RoleBuyer, RoleSeller, RoleSummary, RoleCRM, RoleCoach}
}

// AnalysisState is the single accumulator threaded through one pipeline run.
// Transcript and Metadata are set once and never mutated; each agent owns
// exactly one output slot. A populated slot is only ever replaced by a
// refinement pass, never cleared.
type AnalysisState struct {
	Transcript []TranscriptSegment
	Metadata   ConversationMetadata

	Context *ContextData
	Buyer   *BuyerData
	Seller  *SellerData
	Summary *SummaryData
	CRM     *CRMData
	Coach   *CoachData

	// Confidence records how each populated slot was parsed.
	Confidence map[Role]Confidence
	// RawOutputs keeps the unparsed model text per role for audit.
	RawOutputs map[Role]string

	RefinementCount int
	MaxRefinements  int

	// Competitor scan result, computed once before any agent executes.
	HasCompetitor      bool
	CompetitorKeywords []string
}

// NewAnalysisState builds the initial state for one conversation.
func NewAnalysisState(transcript []TranscriptSegment, metadata ConversationMetadata, maxRefinements int) *AnalysisState {
	return &AnalysisState{
		Transcript:     transcript,
		Metadata:       metadata,
		Confidence:     make(map[Role]Confidence),
		RawOutputs:     make(map[Role]string),
		MaxRefinements: maxRefinements,
	}
}

// Populated reports whether the slot for the given role holds a record.
func (s *AnalysisState) Populated(role Role) bool {
	switch role {
	case RoleContext:
		return s.Context != nil
	case RoleBuyer:
		return s.Buyer != nil
	case RoleSeller:
		return s.Seller != nil
	case RoleSummary:
		return s.Summary != nil
	case RoleCRM:
		return s.CRM != nil
	case RoleCoach:
		return s.Coach != nil
	}
	return false
}

// SlotConfidence returns the parse confidence for a role's slot,
// defaulting to low for slots that were never populated.
func (s *AnalysisState) SlotConfidence(role Role) Confidence {
	if c, ok := s.Confidence[role]; ok {
		return c
	}
	return ConfidenceLow
}

// Degraded reports whether any populated slot carries a low-confidence parse.
func (s *AnalysisState) Degraded() bool {
	for _, role := range AllRoles() {
		if s.Populated(role) && s.SlotConfidence(role) == ConfidenceLow {
			return true
		}
	}
	return false
}

// TranscriptText concatenates all segment text, speaker-tagged, one
// utterance per line. This is what the agents see and what keyword
// scans run over.
func (s *AnalysisState) TranscriptText() string {
	return TranscriptText(s.Transcript)
}

// TranscriptText renders segments as speaker-tagged lines.
func TranscriptText(segments []TranscriptSegment) string {
	var b []byte
	for _, seg := range segments {
		b = append(b, seg.Speaker...)
		b = append(b, ": "...)
		b = append(b, seg.Text...)
		b = append(b, '\n')
	}
	return string(b)
}
