package core

import (
	"context"
	"time"
)

// ModelRequest is one completion request to the reasoning service.
type ModelRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultModelRequest returns sensible defaults.
func DefaultModelRequest() ModelRequest {
	return ModelRequest{
		MaxTokens:   4096,
		Temperature: 0.2,
		Timeout:     2 * time.Minute,
	}
}

// ModelResponse is the raw result of one completion.
type ModelResponse struct {
	Text         string
	TokensIn     int
	TokensOut    int
	Model        string
	FinishReason string
	Duration     time.Duration
}

// TotalTokens returns the sum of input and output tokens.
func (r *ModelResponse) TotalTokens() int {
	return r.TokensIn + r.TokensOut
}

// ModelClient is the contract for the external reasoning service.
// Implementations must classify transient failures (rate limit, timeout,
// 5xx) as retryable DomainErrors so callers can apply retry policy.
type ModelClient interface {
	// Name returns the client identifier (e.g. "openai").
	Name() string

	// Complete runs one prompt and returns the raw text response.
	Complete(ctx context.Context, req ModelRequest) (*ModelResponse, error)
}
