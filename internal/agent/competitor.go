package agent

import (
	"strings"

	"github.com/callscore-ai/callscore/internal/core"
)

// defaultCompetitorKeywords lists the competitor names scanned for per
// product line. Matching is substring based because the transcript mixes
// Mandarin (no word boundaries) and English.
var defaultCompetitorKeywords = map[core.ProductLine][]string{
	core.ProductLineIchef: {
		"posandro", "dudoo", "肚肚", "dingdong", "點餐大師", "foodpanda pos", "clyde",
	},
	core.ProductLineBeauty: {
		"beauty pro", "salonplus", "美業幫手", "簡單美", "vagaro",
	},
}

// ScanCompetitors runs the keyword scan over the transcript and marks
// the state. It is a pure local computation executed once, before any
// agent runs; later prompts read the flag, they never re-scan.
func ScanCompetitors(state *core.AnalysisState, extra []string) {
	keywords := append([]string{}, defaultCompetitorKeywords[state.Metadata.ProductLine]...)
	keywords = append(keywords, extra...)

	text := strings.ToLower(state.TranscriptText())
	var hits []string
	seen := make(map[string]bool)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[kw] {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			hits = append(hits, kw)
			seen[kw] = true
		}
	}
	state.HasCompetitor = len(hits) > 0
	state.CompetitorKeywords = hits
}
