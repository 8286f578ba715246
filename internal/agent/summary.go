package agent

import (
	"strings"
	"unicode/utf8"

	"github.com/callscore-ai/callscore/internal/core"
)

// maxCustomerMessageRunes bounds the customer-facing follow-up so it
// fits a single LINE/SMS message.
const maxCustomerMessageRunes = 350

func summaryDefinition() Definition {
	return Definition{
		Role:      core.RoleSummary,
		DependsOn: []core.Role{core.RoleBuyer, core.RoleSeller},
		BuildPrompt: func(state *core.AnalysisState) (string, string) {
			system := systemPrompt(state, "Write the post-call follow-up package.")

			var b strings.Builder
			b.WriteString(transcriptSection(state))
			b.WriteString("\n")
			b.WriteString(contextSection(state))
			b.WriteString(buyerSummarySection(state))
			b.WriteString(sellerSummarySection(state))
			b.WriteString("\n## Task\n")
			b.WriteString("Produce a short customer-facing follow-up message in the customer's language, ")
			b.WriteString("the single strongest buying signal with its verbatim quote, an internal markdown ")
			b.WriteString("recap and the action items. Return JSON:\n")
			b.WriteString(`{"customer_message": "", "hook": {"signal": "", "quote": ""}, ` +
				`"internal_recap": "", "action_items": [{"action": "", "owner": ""}]}`)
			return system, b.String()
		},
		Apply: func(state *core.AnalysisState, raw string, conf core.Confidence) {
			record := &core.SummaryData{}
			parseInto(raw, record, &conf)
			record.CustomerMessage = truncateRunes(record.CustomerMessage, maxCustomerMessageRunes)
			state.Summary = record
			state.Confidence[core.RoleSummary] = conf
			state.RawOutputs[core.RoleSummary] = raw
		},
		ApplyDefault: func(state *core.AnalysisState) {
			state.Summary = &core.SummaryData{}
			state.Confidence[core.RoleSummary] = core.ConfidenceLow
		},
	}
}

// truncateRunes cuts s to at most n runes. Byte truncation would split
// multi-byte characters in Mandarin messages.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
