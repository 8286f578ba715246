package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/callscore-ai/callscore/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter .callscore.yaml in the current directory",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false,
		"overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	shown := *cfg
	if shown.Model.APIKey != "" {
		shown.Model.APIKey = "<redacted>"
	}
	data, err := yaml.Marshal(configDocument(&shown))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	const path = ".callscore.yaml"
	if !configInitForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	starter := *cfg
	starter.Model.APIKey = ""
	data, err := yaml.Marshal(configDocument(&starter))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
	return nil
}

// configDocument lays a Config out under the keys the loader reads, so
// the emitted YAML round-trips through a later Load.
func configDocument(cfg *config.Config) map[string]any {
	return map[string]any{
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
		"model": map[string]any{
			"api_key":     cfg.Model.APIKey,
			"base_url":    cfg.Model.BaseURL,
			"model":       cfg.Model.Model,
			"max_tokens":  cfg.Model.MaxTokens,
			"temperature": cfg.Model.Temperature,
			"timeout":     cfg.Model.Timeout,
			"max_retries": cfg.Model.MaxRetries,
			"rate_limit":  cfg.Model.RateLimit,
			"burst":       cfg.Model.Burst,
		},
		"pipeline": map[string]any{
			"max_refinements":     cfg.Pipeline.MaxRefinements,
			"concurrency":         cfg.Pipeline.Concurrency,
			"product_line":        cfg.Pipeline.ProductLine,
			"competitor_keywords": cfg.Pipeline.CompetitorKeywords,
		},
		"storage": map[string]any{
			"results_path": cfg.Storage.ResultsPath,
			"alerts_path":  cfg.Storage.AlertsPath,
			"export_dir":   cfg.Storage.ExportDir,
		},
		"alerts": map[string]any{
			"enabled": cfg.Alerts.Enabled,
		},
	}
}
