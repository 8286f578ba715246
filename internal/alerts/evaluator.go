package alerts

import (
	"github.com/callscore-ai/callscore/internal/logging"
)

// Evaluator applies an ordered list of independent rules. No rule
// short-circuits another; every rule sees the same context.
type Evaluator struct {
	rules  []Rule
	logger *logging.Logger
}

// NewEvaluator creates an evaluator with the standard rule set.
func NewEvaluator(logger *logging.Logger) *Evaluator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Evaluator{
		rules: []Rule{
			CloseNowRule,
			MissingDecisionMakerRule,
			ManagerEscalationRule,
		},
		logger: logger,
	}
}

// NewEvaluatorWithRules creates an evaluator with a custom rule list.
func NewEvaluatorWithRules(rules []Rule, logger *logging.Logger) *Evaluator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Evaluator{rules: rules, logger: logger}
}

// Evaluate runs every rule and collects the emitted alerts in rule
// order. Evaluation is pure: calling it twice with the same context
// yields the same alerts.
func (e *Evaluator) Evaluate(ctx EvaluationContext) []AlertResult {
	var out []AlertResult
	for _, rule := range e.rules {
		if alert, ok := rule(ctx); ok {
			e.logger.Info("alert raised",
				"type", string(alert.Type),
				"severity", string(alert.Severity),
				"opportunity_id", ctx.OpportunityID)
			out = append(out, alert)
		}
	}
	return out
}
