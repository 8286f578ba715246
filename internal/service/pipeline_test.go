package service

import (
	"context"
	"errors"
	"testing"

	"github.com/callscore-ai/callscore/internal/agent"
	"github.com/callscore-ai/callscore/internal/core"
	"github.com/callscore-ai/callscore/internal/logging"
	"github.com/callscore-ai/callscore/internal/testutil"
)

func scriptedPipeline(t *testing.T, cfg PipelineConfig) (*Pipeline, *testutil.ScriptedInvoker) {
	t.Helper()
	inv := testutil.NewScriptedInvoker()
	for role, response := range testutil.AgentScripts() {
		inv.Script(role, response)
	}
	exec := agent.NewExecutor(inv, logging.NewNop())
	p, err := NewPipeline(exec, nil, NewMetricsCollector(), logging.NewNop(), cfg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p, inv
}

func TestRunHappyPath(t *testing.T) {
	p, inv := scriptedPipeline(t, PipelineConfig{MaxRefinements: 1})

	result, err := p.Run(context.Background(), testutil.Segments(), testutil.Metadata())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ID == "" {
		t.Error("result has no id")
	}
	if result.LowConfidence {
		t.Error("clean run tagged low confidence")
	}
	if result.CustomerMessage != "謝謝您今天的時間" {
		t.Errorf("customer message = %q", result.CustomerMessage)
	}
	if len(result.NextSteps) != 1 || result.NextSteps[0].Owner != "Amy" {
		t.Errorf("next steps = %v", result.NextSteps)
	}
	if len(result.Risks) == 0 {
		t.Error("unhandled objection should surface as a risk")
	}
	if got := result.Score.Dimension(core.DimIdentifyPain).Score; got != 5 {
		t.Errorf("identify pain = %d, want 5", got)
	}
	if got := result.Score.Dimension(core.DimEconomicBuyer).Score; got != 4 {
		t.Errorf("economic buyer = %d, want 4", got)
	}
	for _, role := range core.AllRoles() {
		if inv.Calls(role) != 1 {
			t.Errorf("%s invoked %d times, want 1", role, inv.Calls(role))
		}
		if result.RawOutputs[role] == "" {
			t.Errorf("%s raw output missing", role)
		}
	}
}

func TestRunFailsFastOnEmptyTranscript(t *testing.T) {
	p, inv := scriptedPipeline(t, DefaultPipelineConfig())

	_, err := p.Run(context.Background(), nil, testutil.Metadata())
	var derr *core.DomainError
	if !errors.As(err, &derr) || derr.Code != core.CodeEmptyTranscript {
		t.Fatalf("error = %v, want %s", err, core.CodeEmptyTranscript)
	}
	if inv.Calls(core.RoleContext) != 0 {
		t.Error("no model calls may happen before validation")
	}
}

func TestRunRejectsInvalidMetadata(t *testing.T) {
	p, _ := scriptedPipeline(t, DefaultPipelineConfig())

	meta := testutil.Metadata()
	meta.ProductLine = "unknown"
	_, err := p.Run(context.Background(), testutil.Segments(), meta)
	var derr *core.DomainError
	if !errors.As(err, &derr) || derr.Code != core.CodeInvalidMetadata {
		t.Fatalf("error = %v, want %s", err, core.CodeInvalidMetadata)
	}
}

func TestRunContextFailureIsFatal(t *testing.T) {
	p, inv := scriptedPipeline(t, DefaultPipelineConfig())
	inv.Fail(core.RoleContext, core.ErrAuth("bad key"))

	_, err := p.Run(context.Background(), testutil.Segments(), testutil.Metadata())
	var derr *core.DomainError
	if !errors.As(err, &derr) || derr.Code != core.CodeContextStarved {
		t.Fatalf("error = %v, want %s", err, core.CodeContextStarved)
	}
}

func TestRunDegradesOnAgentFailure(t *testing.T) {
	p, inv := scriptedPipeline(t, PipelineConfig{MaxRefinements: 0})
	inv.Fail(core.RoleCoach, core.ErrAuth("bad key"))

	result, err := p.Run(context.Background(), testutil.Segments(), testutil.Metadata())
	if err != nil {
		t.Fatalf("a non-context failure must not abort the run: %v", err)
	}
	if !result.LowConfidence {
		t.Error("degraded run must be tagged low confidence")
	}
}

func TestRunRefinementIsBounded(t *testing.T) {
	p, inv := scriptedPipeline(t, PipelineConfig{MaxRefinements: 2})
	// Buyer never produces usable JSON, so quality keeps asking.
	inv.Script(core.RoleBuyer, "not json at all")

	result, err := p.Run(context.Background(), testutil.Segments(), testutil.Metadata())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Metrics.Refinements != 2 {
		t.Errorf("refinements = %d, want exactly the budget of 2", result.Metrics.Refinements)
	}
	// Initial pass plus two refinement passes.
	if inv.Calls(core.RoleBuyer) != 3 {
		t.Errorf("buyer invoked %d times, want 3", inv.Calls(core.RoleBuyer))
	}
	// Context is upstream of buyer and never re-runs.
	if inv.Calls(core.RoleContext) != 1 {
		t.Errorf("context invoked %d times, want 1", inv.Calls(core.RoleContext))
	}
	if !result.LowConfidence {
		t.Error("exhausted refinement with weak buyer output must stay low confidence")
	}
}

func TestRunRefinementRepairsWeakOutput(t *testing.T) {
	p, inv := scriptedPipeline(t, PipelineConfig{MaxRefinements: 2})
	inv.Script(core.RoleBuyer,
		"garbage first time",
		`{"pdcm": {"pain": {"score": 80}, "decision": {"score": 60, "has_authority": true}, "champion": {"score": 70}, "metrics": {"score": 50}}}`)

	result, err := p.Run(context.Background(), testutil.Segments(), testutil.Metadata())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Metrics.Refinements != 1 {
		t.Errorf("refinements = %d, want 1", result.Metrics.Refinements)
	}
	if result.LowConfidence {
		t.Error("repaired run should not be low confidence")
	}
	// Summary, CRM and Coach depend on buyer and re-run with it.
	if inv.Calls(core.RoleSummary) != 2 || inv.Calls(core.RoleCRM) != 2 || inv.Calls(core.RoleCoach) != 2 {
		t.Errorf("dependents re-run counts: summary=%d crm=%d coach=%d, want 2 each",
			inv.Calls(core.RoleSummary), inv.Calls(core.RoleCRM), inv.Calls(core.RoleCoach))
	}
	// Seller does not depend on buyer.
	if inv.Calls(core.RoleSeller) != 1 {
		t.Errorf("seller invoked %d times, want 1", inv.Calls(core.RoleSeller))
	}
}

func TestRunCancellationPropagates(t *testing.T) {
	p, _ := scriptedPipeline(t, DefaultPipelineConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, testutil.Segments(), testutil.Metadata())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestRunCompetitorFlagReachesResult(t *testing.T) {
	p, _ := scriptedPipeline(t, PipelineConfig{MaxRefinements: 0, CompetitorKeywords: []string{"快點通"}})

	segments := append(testutil.Segments(), core.TranscriptSegment{
		Speaker: "customer", Text: "隔壁在用快點通", Start: 11, End: 14,
	})
	result, err := p.Run(context.Background(), segments, testutil.Metadata())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.HasCompetitor {
		t.Error("competitor mention not flagged")
	}
	if len(result.CompetitorKeywords) != 1 || result.CompetitorKeywords[0] != "快點通" {
		t.Errorf("keywords = %v", result.CompetitorKeywords)
	}
}

func TestRunRefinementFailureKeepsBaseResult(t *testing.T) {
	p, inv := scriptedPipeline(t, PipelineConfig{MaxRefinements: 1})
	// The first context pass parses cleanly but carries nothing usable,
	// so quality asks for a re-run; the re-run fails hard.
	inv.Script(core.RoleContext, "{}")
	inv.FailAfter(core.RoleContext, 1, core.ErrTimeout("deadline"))

	result, err := p.Run(context.Background(), testutil.Segments(), testutil.Metadata())
	if err != nil {
		t.Fatalf("a failed refinement must not discard the finished base pass: %v", err)
	}
	if !result.LowConfidence {
		t.Error("abandoned refinement must tag the result low confidence")
	}
	if result.Metrics.Refinements != 1 {
		t.Errorf("refinements = %d, want 1", result.Metrics.Refinements)
	}
	if inv.Calls(core.RoleContext) != 2 {
		t.Errorf("context invoked %d times, want 2", inv.Calls(core.RoleContext))
	}
	// The base pass survives intact.
	if result.CustomerMessage != "謝謝您今天的時間" {
		t.Errorf("customer message = %q", result.CustomerMessage)
	}
}
