// Package llm abstracts the external text-understanding capability behind a
// single-method Client. Concrete providers are selected by configuration; new
// providers are added by implementing the interface, never by branching on
// provider name inside business logic.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
)

// Provider constants for provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds LLM client configuration.
type Config struct {
	Provider       string        // "openai" or "anthropic"
	APIKey         string        // Required: API key for the provider
	BaseURL        string        // Optional: custom API endpoint
	Model          string        // Model name (e.g., "gpt-4o-mini", "claude-sonnet-4-5-20250514")
	MaxTokens      int           // Default completion budget when a request doesn't set one
	RequestTimeout time.Duration // Per-call timeout; inference is the only unbounded-latency operation
}

// Request contains one inference call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string   // Optional: name for strict-schema response formats
	Schema       any      // Optional: JSON Schema; providers that support structured output enforce it
	MaxTokens    int
	Temperature  *float64 // nil = model default, explicit 0 = deterministic
}

// Client is the inference capability contract. Infer returns the model's raw
// text output; callers are responsible for tolerant parsing, since the text is
// expected to be JSON but may be malformed.
type Client interface {
	Infer(ctx context.Context, req Request) (string, error)
	Model() string
}

// New creates a Client for the configured provider.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch cfg.Provider {
	case ProviderOpenAI, "":
		return newOpenAIClient(cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// GenerateSchema generates a JSON schema from a Go type, for providers that
// support strict structured output.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// Temp returns a pointer to a temperature value for Request.Temperature.
func Temp(t float64) *float64 {
	return &t
}
