package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/callscore-ai/callscore/internal/core"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLog(&cfg.Log)
	v.validateModel(&cfg.Model)
	v.validatePipeline(&cfg.Pipeline)
	v.validateStorage(&cfg.Storage)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

// Errors returns the collected validation errors.
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

func (v *Validator) addError(field string, value interface{}, msg string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: msg,
	})
}

func (v *Validator) validateLog(cfg *LogConfig) {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		v.addError("log.level", cfg.Level, "must be one of debug, info, warn, error")
	}
	switch cfg.Format {
	case "auto", "text", "json":
	default:
		v.addError("log.format", cfg.Format, "must be one of auto, text, json")
	}
}

func (v *Validator) validateModel(cfg *ModelConfig) {
	if cfg.APIKey == "" {
		v.addError("model.api_key", "", "api key is required (CALLSCORE_MODEL_API_KEY)")
	}
	if cfg.MaxTokens <= 0 {
		v.addError("model.max_tokens", cfg.MaxTokens, "must be positive")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		v.addError("model.temperature", cfg.Temperature, "must be in [0, 2]")
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			v.addError("model.timeout", cfg.Timeout, "must be a duration like 90s or 2m")
		}
	}
	if cfg.MaxRetries < 1 {
		v.addError("model.max_retries", cfg.MaxRetries, "must be at least 1")
	}
	if cfg.RateLimit <= 0 {
		v.addError("model.rate_limit", cfg.RateLimit, "must be positive")
	}
	if cfg.Burst < 1 {
		v.addError("model.burst", cfg.Burst, "must be at least 1")
	}
}

func (v *Validator) validatePipeline(cfg *PipelineConfig) {
	if cfg.MaxRefinements < 0 {
		v.addError("pipeline.max_refinements", cfg.MaxRefinements, "must not be negative")
	}
	if cfg.Concurrency < 0 {
		v.addError("pipeline.concurrency", cfg.Concurrency, "must not be negative")
	}
	if !core.ProductLine(cfg.ProductLine).Valid() {
		v.addError("pipeline.product_line", cfg.ProductLine,
			fmt.Sprintf("must be one of %v", core.KnownProductLines()))
	}
}

func (v *Validator) validateStorage(cfg *StorageConfig) {
	if cfg.ResultsPath == "" {
		v.addError("storage.results_path", "", "must not be empty")
	}
	if cfg.AlertsPath == "" {
		v.addError("storage.alerts_path", "", "must not be empty")
	}
}
