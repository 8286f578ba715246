package core

import "time"

// Risk is one identified deal risk with its mitigation.
type Risk struct {
	Risk       string `json:"risk"`
	Severity   string `json:"severity"` // high, medium, low
	Mitigation string `json:"mitigation"`
}

// RunMetrics is a snapshot of one pipeline run's resource usage.
type RunMetrics struct {
	StartedAt   time.Time             `json:"started_at"`
	CompletedAt time.Time             `json:"completed_at"`
	Duration    time.Duration         `json:"duration"`
	Agents      map[Role]AgentMetrics `json:"agents"`
	Refinements int                   `json:"refinements"`
}

// AgentMetrics aggregates one agent's invocations within a run.
type AgentMetrics struct {
	Invocations int           `json:"invocations"`
	TokensIn    int           `json:"tokens_in"`
	TokensOut   int           `json:"tokens_out"`
	Retries     int           `json:"retries"`
	Failures    int           `json:"failures"`
	Duration    time.Duration `json:"duration"`
}

// AnalysisResult is the pipeline's final product for one conversation.
type AnalysisResult struct {
	ID       string               `json:"id"`
	Metadata ConversationMetadata `json:"metadata"`

	Score       QualificationScore `json:"score"`
	KeyFindings []string           `json:"key_findings"`
	NextSteps   []ActionItem       `json:"next_steps"`
	Risks       []Risk             `json:"risks"`

	// Customer-facing short message and internal markdown recap from
	// the summary agent.
	CustomerMessage string `json:"customer_message"`
	InternalRecap   string `json:"internal_recap"`

	// Raw per-agent outputs for audit and debugging.
	RawOutputs map[Role]string `json:"raw_outputs"`

	// LowConfidence marks results assembled from degraded agent records.
	LowConfidence bool `json:"low_confidence"`

	HasCompetitor      bool     `json:"has_competitor"`
	CompetitorKeywords []string `json:"competitor_keywords,omitempty"`

	Metrics RunMetrics `json:"metrics"`

	CreatedAt time.Time `json:"created_at"`
}
