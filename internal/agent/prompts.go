package agent

import (
	"fmt"
	"strings"

	"github.com/callscore-ai/callscore/internal/core"
)

// vocabulary carries the product-line specific wording injected into
// every prompt. Adding a product line means adding a vocabulary here;
// data model and control flow stay untouched.
type vocabulary struct {
	Industry     string
	Persona      string
	Product      string
	PainExamples string
}

var vocabularies = map[core.ProductLine]vocabulary{
	core.ProductLineIchef: {
		Industry:     "restaurant",
		Persona:      "restaurant owner",
		Product:      "POS and online-ordering system",
		PainExamples: "order congestion during rush hours, manual reconciliation, third-party delivery fees",
	},
	core.ProductLineBeauty: {
		Industry:     "beauty salon",
		Persona:      "salon owner",
		Product:      "appointment and member-management system",
		PainExamples: "no-show appointments, stylist scheduling conflicts, prepaid-card bookkeeping",
	},
}

func vocabFor(line core.ProductLine) vocabulary {
	if v, ok := vocabularies[line]; ok {
		return v
	}
	return vocabularies[core.ProductLineIchef]
}

const systemPreamble = "You are a sales-call analyst for a %s vendor selling a %s. " +
	"Answer with a single JSON object matching the requested schema exactly. " +
	"Quote the transcript verbatim when asked for evidence; the conversation may mix Mandarin and English."

func systemPrompt(state *core.AnalysisState, task string) string {
	v := vocabFor(state.Metadata.ProductLine)
	return fmt.Sprintf(systemPreamble, v.Industry, v.Product) + " " + task
}

// transcriptSection renders the shared transcript block capped to keep
// prompts inside the model context window.
func transcriptSection(state *core.AnalysisState) string {
	const maxChars = 24000
	text := state.TranscriptText()
	if len(text) > maxChars {
		text = text[:maxChars] + "\n[transcript truncated]"
	}
	return "## Transcript\n" + text
}

// contextSection renders the context agent's findings for downstream
// prompts. Context runs first, so this is present for every other role.
func contextSection(state *core.AnalysisState) string {
	if state.Context == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Situation\n")
	fmt.Fprintf(&b, "- meeting type: %s\n", state.Context.MeetingType)
	fmt.Fprintf(&b, "- decision makers present: %s\n", strings.Join(state.Context.DecisionMakers, ", "))
	fmt.Fprintf(&b, "- urgency: %s, deadline: %s\n", state.Context.Urgency, state.Context.Deadline)
	fmt.Fprintf(&b, "- motivation: %s\n", state.Context.Motivation)
	if len(state.Context.Barriers) > 0 {
		fmt.Fprintf(&b, "- barriers: %s\n", strings.Join(state.Context.Barriers, "; "))
	}
	if state.Context.StoreInfo != "" {
		fmt.Fprintf(&b, "- store: %s\n", state.Context.StoreInfo)
	}
	return b.String()
}

// competitorSection is included only when the keyword scan flagged the
// conversation; otherwise the competitor branch is a no-op by data.
func competitorSection(state *core.AnalysisState) string {
	if !state.HasCompetitor {
		return ""
	}
	return fmt.Sprintf(
		"## Competitor mentions\nThe customer mentioned: %s. Address switching friction and competitive positioning explicitly.\n",
		strings.Join(state.CompetitorKeywords, ", "),
	)
}

func buyerSummarySection(state *core.AnalysisState) string {
	if state.Buyer == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Buyer assessment\n")
	fmt.Fprintf(&b, "- pain %d (%s, urgency %s)\n",
		state.Buyer.PDCM.Pain.Score, state.Buyer.PDCM.Pain.Level, state.Buyer.PDCM.Pain.Urgency)
	fmt.Fprintf(&b, "- decision %d (maker: %s, authority present: %t)\n",
		state.Buyer.PDCM.Decision.Score, state.Buyer.PDCM.Decision.MakerRole, state.Buyer.PDCM.Decision.HasAuthority)
	fmt.Fprintf(&b, "- champion %d (%s)\n", state.Buyer.PDCM.Champion.Score, state.Buyer.PDCM.Champion.Attitude)
	fmt.Fprintf(&b, "- metrics %d (%s)\n", state.Buyer.PDCM.Metrics.Score, state.Buyer.PDCM.Metrics.MonthlyImpact)
	fmt.Fprintf(&b, "- customer type: %s\n", state.Buyer.CustomerType)
	return b.String()
}

func sellerSummarySection(state *core.AnalysisState) string {
	if state.Seller == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Seller assessment\n")
	fmt.Fprintf(&b, "- execution score: %d\n", state.Seller.ExecutionScore)
	fmt.Fprintf(&b, "- follow-up strategy: %s\n", state.Seller.FollowUpStrategy)
	if state.Seller.SafetyAlert {
		fmt.Fprintf(&b, "- safety alert raised: %s\n", state.Seller.SafetyReason)
	}
	return b.String()
}
