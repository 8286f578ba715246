package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/callscore-ai/callscore/internal/agent"
	"github.com/callscore-ai/callscore/internal/core"
	"github.com/callscore-ai/callscore/internal/logging"
	"github.com/callscore-ai/callscore/internal/transcript"
)

// PipelineConfig tunes one pipeline instance.
type PipelineConfig struct {
	MaxRefinements     int
	CompetitorKeywords []string // extra keywords on top of the product-line defaults
	Concurrency        int      // max agents in flight per level, 0 means level size
}

// DefaultPipelineConfig returns the default tuning.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxRefinements: 1,
	}
}

// Pipeline runs the full conversation analysis: competitor scan, agent
// graph execution, bounded refinement, score mapping.
type Pipeline struct {
	executor *agent.Executor
	plan     *Plan
	quality  QualityPolicy
	mapper   *ScoreMapper
	metrics  *MetricsCollector
	logger   *logging.Logger
	cfg      PipelineConfig
}

// NewPipeline builds the plan from the agent graph and wires the
// pipeline. It fails only on a malformed graph, which would be a
// programming error in the role definitions.
func NewPipeline(executor *agent.Executor, quality QualityPolicy, metrics *MetricsCollector, logger *logging.Logger, cfg PipelineConfig) (*Pipeline, error) {
	if quality == nil {
		quality = DefaultQualityPolicy{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if metrics == nil {
		metrics = NewMetricsCollector()
	}
	if cfg.MaxRefinements < 0 {
		cfg.MaxRefinements = 0
	}

	builder := NewPlanBuilder()
	for _, def := range agent.Graph() {
		if err := builder.AddNode(def.Role); err != nil {
			return nil, err
		}
	}
	for _, def := range agent.Graph() {
		for _, dep := range def.DependsOn {
			if err := builder.AddDependency(def.Role, dep); err != nil {
				return nil, err
			}
		}
	}
	plan, err := builder.Build()
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		executor: executor,
		plan:     plan,
		quality:  quality,
		mapper:   NewScoreMapper(),
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}, nil
}

// Run analyzes one conversation. The transcript is validated before any
// model call; a context-agent failure aborts the run; every other
// failure degrades and the result is tagged low-confidence instead.
func (p *Pipeline) Run(ctx context.Context, segments []core.TranscriptSegment, meta core.ConversationMetadata) (*core.AnalysisResult, error) {
	if err := transcript.Validate(segments); err != nil {
		return nil, err
	}
	if err := validateMetadata(meta); err != nil {
		return nil, err
	}

	log := p.logger.WithConversation(meta.ConversationID)
	state := core.NewAnalysisState(segments, meta, p.cfg.MaxRefinements)

	agent.ScanCompetitors(state, p.cfg.CompetitorKeywords)
	log.Info("starting analysis",
		"segments", len(segments),
		"product_line", string(meta.ProductLine),
		"has_competitor", state.HasCompetitor)

	if err := p.runLevels(ctx, state, p.plan.Levels); err != nil {
		return nil, err
	}

	// Refinement is best effort: the full pass already finished, so a
	// failed or interrupted refinement keeps the base result and tags
	// it low-confidence instead of discarding it.
	refineErr := p.refine(ctx, state, log)
	if refineErr != nil {
		log.Warn("refinement abandoned, keeping base result", "error", refineErr)
	}

	result := p.assemble(state)
	if refineErr != nil {
		result.LowConfidence = true
	}
	log.Info("analysis complete",
		"overall", result.Score.OverallScore,
		"status", string(result.Score.Status),
		"refinements", state.RefinementCount,
		"low_confidence", result.LowConfidence)
	return result, nil
}

// runLevels executes the plan level by level; members of one level run
// concurrently under an errgroup.
func (p *Pipeline) runLevels(ctx context.Context, state *core.AnalysisState, levels [][]core.Role) error {
	for _, level := range levels {
		g, gctx := errgroup.WithContext(ctx)
		if p.cfg.Concurrency > 0 {
			g.SetLimit(p.cfg.Concurrency)
		}
		for _, role := range level {
			def, ok := agent.ByRole(role)
			if !ok {
				return core.ErrState("UNKNOWN_ROLE", fmt.Sprintf("no definition for role %s", role))
			}
			g.Go(func() error {
				return p.executor.Run(gctx, def, state)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// refine re-runs insufficient agents and their dependents until the
// quality policy is satisfied or the refinement budget is spent. The
// loop is best-effort: hitting the budget is not an error.
func (p *Pipeline) refine(ctx context.Context, state *core.AnalysisState, log *logging.Logger) error {
	for state.RefinementCount < state.MaxRefinements {
		weak := p.quality.Insufficient(state)
		if len(weak) == 0 {
			return nil
		}

		rerun := p.plan.Dependents(weak)
		state.RefinementCount++
		p.metrics.RecordRefinement()
		log.Info("refinement pass",
			"pass", state.RefinementCount,
			"weak", roleNames(weak),
			"rerun", roleNames(rerun))

		if err := p.runLevels(ctx, state, p.plan.SubLevels(rerun)); err != nil {
			return err
		}
	}
	return nil
}

// assemble folds the finished state into the final result.
func (p *Pipeline) assemble(state *core.AnalysisState) *core.AnalysisResult {
	score := p.mapper.Map(state)

	result := &core.AnalysisResult{
		ID:                 uuid.NewString(),
		Metadata:           state.Metadata,
		Score:              score,
		RawOutputs:         state.RawOutputs,
		LowConfidence:      state.Degraded(),
		HasCompetitor:      state.HasCompetitor,
		CompetitorKeywords: state.CompetitorKeywords,
		Metrics:            p.metrics.Snapshot(),
		CreatedAt:          time.Now().UTC(),
	}

	if state.Summary != nil {
		result.CustomerMessage = state.Summary.CustomerMessage
		result.InternalRecap = state.Summary.InternalRecap
		result.NextSteps = state.Summary.ActionItems
		if state.Summary.Hook.Signal != "" {
			result.KeyFindings = append(result.KeyFindings, state.Summary.Hook.Signal)
		}
	}
	if state.Coach != nil {
		result.KeyFindings = append(result.KeyFindings, state.Coach.Strengths...)
		for _, obj := range state.Coach.Objections {
			if obj.Handled {
				continue
			}
			result.Risks = append(result.Risks, core.Risk{
				Risk:       "unhandled objection: " + obj.Objection,
				Severity:   "medium",
				Mitigation: obj.Suggestion,
			})
		}
		if state.Coach.EscalationNeeded {
			result.Risks = append(result.Risks, core.Risk{
				Risk:       state.Coach.EscalationReason,
				Severity:   "high",
				Mitigation: "manager review before next customer contact",
			})
		}
	}
	if state.Seller != nil && state.Seller.SafetyAlert {
		result.Risks = append(result.Risks, core.Risk{
			Risk:       state.Seller.SafetyReason,
			Severity:   "high",
			Mitigation: "verify claims made to the customer and correct in the follow-up",
		})
	}
	return result
}

func validateMetadata(meta core.ConversationMetadata) error {
	if meta.ConversationID == "" {
		return core.ErrValidation(core.CodeInvalidMetadata, "conversation id is required")
	}
	if meta.OpportunityID == "" {
		return core.ErrValidation(core.CodeInvalidMetadata, "opportunity id is required")
	}
	if !meta.ProductLine.Valid() {
		return core.ErrValidation(core.CodeInvalidMetadata,
			fmt.Sprintf("unknown product line %q", meta.ProductLine))
	}
	return nil
}

func roleNames(roles []core.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
