package alerts

import (
	"reflect"
	"testing"

	"github.com/callscore-ai/callscore/internal/core"
	"github.com/callscore-ai/callscore/internal/logging"
)

func scoreWith(overall int, dims map[core.Dimension]int) core.QualificationScore {
	out := core.QualificationScore{
		Dimensions:   make(map[core.Dimension]core.DimensionScore),
		OverallScore: overall,
	}
	for dim, score := range dims {
		out.Dimensions[dim] = core.DimensionScore{Score: score}
	}
	return out
}

func TestCloseNowRule(t *testing.T) {
	tests := []struct {
		name       string
		overall    int
		champion   int
		transcript string
		want       bool
	}{
		{"scenario: strong deal with signing keyword", 85, 5, "我們下週可以簽約嗎", true},
		{"contract keyword", 85, 5, "合約條款可以先看嗎", true},
		{"no buying signal", 85, 5, "我再想想", false},
		{"overall below threshold", 79, 5, "想簽約", false},
		{"weak champion", 85, 3, "想簽約", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := EvaluationContext{
				Score:          scoreWith(tt.overall, map[core.Dimension]int{core.DimChampion: tt.champion}),
				TranscriptText: tt.transcript,
			}
			alert, ok := CloseNowRule(ctx)
			if ok != tt.want {
				t.Fatalf("fired = %t, want %t", ok, tt.want)
			}
			if ok && alert.Severity != SeverityHigh {
				t.Errorf("severity = %s, want high", alert.Severity)
			}
		})
	}
}

func TestMissingDecisionMakerRule(t *testing.T) {
	tests := []struct {
		name          string
		economicBuyer int
		conversations int
		want          bool
	}{
		{"scenario: eb 1 after 3 conversations", 1, 3, true},
		{"eb 2 at exactly 2 conversations", 2, 2, true},
		{"first conversation never fires", 1, 1, false},
		{"eb above threshold", 3, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := EvaluationContext{
				Score:             scoreWith(50, map[core.Dimension]int{core.DimEconomicBuyer: tt.economicBuyer}),
				ConversationCount: tt.conversations,
			}
			alert, ok := MissingDecisionMakerRule(ctx)
			if ok != tt.want {
				t.Fatalf("fired = %t, want %t", ok, tt.want)
			}
			if ok && alert.Severity != SeverityMedium {
				t.Errorf("severity = %s, want medium", alert.Severity)
			}
		})
	}
}

func TestManagerEscalationRule(t *testing.T) {
	tests := []struct {
		name   string
		recent []int
		want   bool
	}{
		{"scenario: three low scores", []int{30, 25, 38}, true},
		{"scenario: one score breaks the streak", []int{30, 25, 45}, false},
		{"exactly 40 breaks the streak", []int{39, 40, 30}, false},
		{"too little history", []int{30, 25}, false},
		{"only the three most recent count", []int{30, 25, 38, 90}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := EvaluationContext{RecentOveralls: tt.recent}
			alert, ok := ManagerEscalationRule(ctx)
			if ok != tt.want {
				t.Fatalf("fired = %t, want %t", ok, tt.want)
			}
			if ok && alert.Severity != SeverityHigh {
				t.Errorf("severity = %s, want high", alert.Severity)
			}
		})
	}
}

func TestEvaluatorRunsAllRulesInOrder(t *testing.T) {
	// A context constructed to trip every rule at once.
	ctx := EvaluationContext{
		Score: scoreWith(85, map[core.Dimension]int{
			core.DimChampion:      5,
			core.DimEconomicBuyer: 1,
		}),
		TranscriptText:    "下週簽約",
		ConversationCount: 3,
		RecentOveralls:    []int{30, 25, 38},
	}

	got := NewEvaluator(logging.NewNop()).Evaluate(ctx)
	wantOrder := []AlertType{AlertCloseNow, AlertMissingDecisionMaker, AlertManagerEscalation}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d alerts, want %d", len(got), len(wantOrder))
	}
	for i, typ := range wantOrder {
		if got[i].Type != typ {
			t.Errorf("alert[%d] = %s, want %s", i, got[i].Type, typ)
		}
	}
}

func TestEvaluatorIsIdempotent(t *testing.T) {
	ctx := EvaluationContext{
		Score:          scoreWith(85, map[core.Dimension]int{core.DimChampion: 5}),
		TranscriptText: "準備簽約",
	}
	e := NewEvaluator(logging.NewNop())
	if !reflect.DeepEqual(e.Evaluate(ctx), e.Evaluate(ctx)) {
		t.Error("same context must yield the same alerts")
	}
}

func TestEvaluatorQuietDeal(t *testing.T) {
	ctx := EvaluationContext{
		Score:             scoreWith(60, map[core.Dimension]int{core.DimChampion: 3, core.DimEconomicBuyer: 3}),
		TranscriptText:    "我考慮一下",
		ConversationCount: 1,
		RecentOveralls:    []int{60},
	}
	if got := NewEvaluator(logging.NewNop()).Evaluate(ctx); len(got) != 0 {
		t.Errorf("no rule should fire, got %v", got)
	}
}
