package core

import "time"

// ProductLine selects which prompt vocabulary the agents use.
type ProductLine string

const (
	ProductLineIchef  ProductLine = "ichef"
	ProductLineBeauty ProductLine = "beauty"
)

// KnownProductLines lists every product line the pipeline accepts.
func KnownProductLines() []ProductLine {
	return []ProductLine{ProductLineIchef, ProductLineBeauty}
}

// Valid reports whether the product line is a member of the closed set.
func (p ProductLine) Valid() bool {
	for _, known := range KnownProductLines() {
		if p == known {
			return true
		}
	}
	return false
}

// TranscriptSegment is one speaker-tagged utterance with global timestamps
// in seconds. After assembly, segments are ordered by non-decreasing Start
// and each satisfies Start < End.
type TranscriptSegment struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Duration returns the segment length in seconds.
func (s TranscriptSegment) Duration() float64 {
	return s.End - s.Start
}

// ConversationMetadata identifies one analyzed conversation and its context.
type ConversationMetadata struct {
	ConversationID string      `json:"conversation_id"`
	OpportunityID  string      `json:"opportunity_id"`
	LeadID         string      `json:"lead_id"`
	SalesRep       string      `json:"sales_rep"`
	Date           time.Time   `json:"date"`
	ProductLine    ProductLine `json:"product_line"`
}
