// Package config loads and validates application configuration from
// files, environment and flags.
package config

// Config holds all application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Model    ModelConfig    `mapstructure:"model"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ModelConfig configures the external reasoning service.
type ModelConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     string  `mapstructure:"timeout"`
	MaxRetries  int     `mapstructure:"max_retries"`
	RateLimit   float64 `mapstructure:"rate_limit"` // requests per second
	Burst       float64 `mapstructure:"burst"`
}

// PipelineConfig configures orchestration behavior.
type PipelineConfig struct {
	MaxRefinements     int      `mapstructure:"max_refinements"`
	Concurrency        int      `mapstructure:"concurrency"`
	ProductLine        string   `mapstructure:"product_line"`
	CompetitorKeywords []string `mapstructure:"competitor_keywords"`
}

// StorageConfig configures persistence paths.
type StorageConfig struct {
	ResultsPath string `mapstructure:"results_path"`
	AlertsPath  string `mapstructure:"alerts_path"`
	ExportDir   string `mapstructure:"export_dir"`
}

// AlertsConfig configures alert evaluation.
type AlertsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
