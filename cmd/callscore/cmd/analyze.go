package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/callscore-ai/callscore/internal/adapters/llm"
	"github.com/callscore-ai/callscore/internal/agent"
	"github.com/callscore-ai/callscore/internal/alerts"
	"github.com/callscore-ai/callscore/internal/core"
	"github.com/callscore-ai/callscore/internal/service"
	"github.com/callscore-ai/callscore/internal/store"
)

var (
	analyzeConversationID string
	analyzeOpportunityID  string
	analyzeSalesRep       string
	analyzeProductLine    string
	analyzeExport         bool
)

// transcriptDocument is the expected input file shape. Metadata in the
// file is overridden by flags when both are present.
type transcriptDocument struct {
	Metadata struct {
		ConversationID string `json:"conversation_id"`
		OpportunityID  string `json:"opportunity_id"`
		LeadID         string `json:"lead_id"`
		SalesRep       string `json:"sales_rep"`
		Date           string `json:"date"`
		ProductLine    string `json:"product_line"`
	} `json:"metadata"`
	Segments []core.TranscriptSegment `json:"segments"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <transcript.json>",
	Short: "Analyze one conversation transcript",
	Long: `Analyze reads a transcript document, runs the agent pipeline against
the configured reasoning service, stores the result, evaluates alert
rules and prints a summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConversationID, "conversation-id", "", "conversation identifier (overrides the file)")
	analyzeCmd.Flags().StringVar(&analyzeOpportunityID, "opportunity-id", "", "opportunity identifier (overrides the file)")
	analyzeCmd.Flags().StringVar(&analyzeSalesRep, "sales-rep", "", "sales rep identity (overrides the file)")
	analyzeCmd.Flags().StringVar(&analyzeProductLine, "product-line", "", "product line (overrides config and file)")
	analyzeCmd.Flags().BoolVar(&analyzeExport, "export", true, "write the result as a JSON export")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	doc, err := readTranscript(args[0])
	if err != nil {
		return err
	}
	meta := buildMetadata(doc)

	client := llm.NewClient(cfg.Model.APIKey,
		llm.WithModel(cfg.Model.Model),
		llm.WithBaseURL(cfg.Model.BaseURL),
	)

	timeout, err := time.ParseDuration(cfg.Model.Timeout)
	if err != nil {
		timeout = 2 * time.Minute
	}
	metrics := service.NewMetricsCollector()
	invoker := service.NewModelInvoker(
		client,
		service.NewRetryPolicy(service.WithMaxAttempts(cfg.Model.MaxRetries)),
		service.NewRateLimiter(service.RateLimiterConfig{
			MaxTokens:  cfg.Model.Burst,
			RefillRate: cfg.Model.RateLimit,
		}),
		metrics,
		logger,
	).WithBaseRequest(core.ModelRequest{
		MaxTokens:   cfg.Model.MaxTokens,
		Temperature: cfg.Model.Temperature,
		Timeout:     timeout,
	})

	pipeline, err := service.NewPipeline(
		agent.NewExecutor(invoker, logger),
		service.DefaultQualityPolicy{},
		metrics,
		logger,
		service.PipelineConfig{
			MaxRefinements:     cfg.Pipeline.MaxRefinements,
			Concurrency:        cfg.Pipeline.Concurrency,
			CompetitorKeywords: cfg.Pipeline.CompetitorKeywords,
		},
	)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(cmd.Context(), doc.Segments, meta)
	if err != nil {
		return err
	}

	resultStore, err := store.Open(cfg.Storage.ResultsPath)
	if err != nil {
		return err
	}
	defer resultStore.Close()
	if err := resultStore.Save(cmd.Context(), result); err != nil {
		return err
	}

	var raised []alerts.AlertResult
	if cfg.Alerts.Enabled {
		raised, err = evaluateAlerts(cmd, result, doc.Segments)
		if err != nil {
			return err
		}
	}

	if analyzeExport {
		exportPath := filepath.Join(cfg.Storage.ExportDir, meta.ConversationID+".json")
		if err := store.ExportJSON(result, exportPath); err != nil {
			return err
		}
	}

	printSummary(cmd, result, raised)
	return nil
}

func evaluateAlerts(cmd *cobra.Command, result *core.AnalysisResult, segments []core.TranscriptSegment) ([]alerts.AlertResult, error) {
	alertStore, err := alerts.Open(cfg.Storage.AlertsPath)
	if err != nil {
		return nil, err
	}
	defer alertStore.Close()

	evalCtx, err := alertStore.ContextFor(cmd.Context(), result, core.TranscriptText(segments))
	if err != nil {
		return nil, err
	}

	var raised []alerts.AlertResult
	for _, alert := range alerts.NewEvaluator(logger).Evaluate(evalCtx) {
		stored, err := alertStore.Save(cmd.Context(), evalCtx.OpportunityID, evalCtx.ConversationID, alert)
		if err != nil {
			return nil, err
		}
		if stored {
			raised = append(raised, alert)
		}
	}
	return raised, nil
}

func readTranscript(path string) (*transcriptDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	var doc transcriptDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, core.ErrValidation(core.CodeMalformedTranscript,
			"transcript document is not valid JSON").WithCause(err)
	}
	return &doc, nil
}

func buildMetadata(doc *transcriptDocument) core.ConversationMetadata {
	meta := core.ConversationMetadata{
		ConversationID: doc.Metadata.ConversationID,
		OpportunityID:  doc.Metadata.OpportunityID,
		LeadID:         doc.Metadata.LeadID,
		SalesRep:       doc.Metadata.SalesRep,
		ProductLine:    core.ProductLine(doc.Metadata.ProductLine),
	}
	if doc.Metadata.Date != "" {
		if t, err := time.Parse(time.RFC3339, doc.Metadata.Date); err == nil {
			meta.Date = t
		}
	}
	if meta.Date.IsZero() {
		meta.Date = time.Now().UTC()
	}

	if analyzeConversationID != "" {
		meta.ConversationID = analyzeConversationID
	}
	if analyzeOpportunityID != "" {
		meta.OpportunityID = analyzeOpportunityID
	}
	if analyzeSalesRep != "" {
		meta.SalesRep = analyzeSalesRep
	}
	if analyzeProductLine != "" {
		meta.ProductLine = core.ProductLine(analyzeProductLine)
	}
	if meta.ProductLine == "" {
		meta.ProductLine = core.ProductLine(cfg.Pipeline.ProductLine)
	}
	return meta
}

func printSummary(cmd *cobra.Command, result *core.AnalysisResult, raised []alerts.AlertResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Conversation %s  (%s)\n", result.Metadata.ConversationID, result.Metadata.ProductLine)
	fmt.Fprintf(out, "Overall: %d/100  status: %s", result.Score.OverallScore, result.Score.Status)
	if result.LowConfidence {
		fmt.Fprint(out, "  [low confidence]")
	}
	fmt.Fprintln(out)

	for _, dim := range core.AllDimensions() {
		fmt.Fprintf(out, "  %-18s %d/5\n", dim, result.Score.Dimension(dim).Score)
	}
	if len(result.KeyFindings) > 0 {
		fmt.Fprintln(out, "Key findings:")
		for _, finding := range result.KeyFindings {
			fmt.Fprintf(out, "  - %s\n", finding)
		}
	}
	if len(result.Risks) > 0 {
		fmt.Fprintln(out, "Risks:")
		for _, risk := range result.Risks {
			fmt.Fprintf(out, "  - [%s] %s\n", risk.Severity, risk.Risk)
		}
	}
	for _, alert := range raised {
		fmt.Fprintf(out, "ALERT [%s] %s: %s\n", alert.Severity, alert.Title, alert.Message)
	}
}
