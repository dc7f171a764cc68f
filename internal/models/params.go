// ABOUTME: Generation parameters with explicit range validation
// ABOUTME: Out-of-range values are rejected, never silently clamped
package models

import "fmt"

// Bounds for generation parameters. Callers get exactly what they asked for
// or an error; values outside these ranges are never clamped.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinMaxTokens   = 100
	MaxMaxTokens   = 16000

	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 10000
)

// GenerationParams selects the model and sampling settings for one chat
// request. Supplied per request; there is no server-side persistence beyond
// the request-scoped defaults applied by ApplyDefaults.
type GenerationParams struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// ApplyDefaults fills unset Model and MaxTokens. Temperature is left alone:
// 0 is a meaningful value (deterministic output), so the transport layers
// default absent temperature fields before building params.
func (p GenerationParams) ApplyDefaults() GenerationParams {
	if p.Model == "" {
		p.Model = DefaultModel
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = DefaultMaxTokens
	}
	return p
}

// Validate checks ranges and the model allow-list. allowedModels must be
// non-empty; the closed set comes from configuration.
func (p GenerationParams) Validate(allowedModels []string) error {
	if p.Temperature < MinTemperature || p.Temperature > MaxTemperature {
		return fmt.Errorf("temperature must be between %.1f and %.1f, got %g",
			MinTemperature, MaxTemperature, p.Temperature)
	}
	if p.MaxTokens < MinMaxTokens || p.MaxTokens > MaxMaxTokens {
		return fmt.Errorf("max_tokens must be between %d and %d, got %d",
			MinMaxTokens, MaxMaxTokens, p.MaxTokens)
	}
	for _, m := range allowedModels {
		if p.Model == m {
			return nil
		}
	}
	return fmt.Errorf("model %q is not in the allowed model list", p.Model)
}
