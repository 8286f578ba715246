package config

import "github.com/spf13/viper"

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

	// Model defaults
	v.SetDefault("model.base_url", "https://api.openai.com")
	v.SetDefault("model.model", "gpt-4.1-mini")
	v.SetDefault("model.max_tokens", 4096)
	v.SetDefault("model.temperature", 0.2)
	v.SetDefault("model.timeout", "2m")
	v.SetDefault("model.max_retries", 3)
	v.SetDefault("model.rate_limit", 1.0)
	v.SetDefault("model.burst", 6.0)

	// Pipeline defaults
	v.SetDefault("pipeline.max_refinements", 1)
	v.SetDefault("pipeline.concurrency", 0)
	v.SetDefault("pipeline.product_line", "ichef")
	v.SetDefault("pipeline.competitor_keywords", []string{})

	// Storage defaults
	v.SetDefault("storage.results_path", ".callscore/results.db")
	v.SetDefault("storage.alerts_path", ".callscore/alerts.db")
	v.SetDefault("storage.export_dir", ".callscore/exports")

	// Alerts defaults
	v.SetDefault("alerts.enabled", true)
}
