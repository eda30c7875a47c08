// Package llm provides centralized LLM configuration and client abstractions.
// The pipeline is deterministic end-to-end except for the two generation
// calls, so all providers are pinned to temperature 0 / top_p 1.
package llm

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenRouter is the OpenRouter aggregation provider
	ProviderOpenRouter Provider = "openrouter"
)

// Generation parameters pinned for reproducibility. Provider output is still
// not bit-stable; artifact freezing, not parameter pinning, is what makes the
// downstream stages replayable.
const (
	Temperature float64 = 0
	TopP        float64 = 1
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	// ExtractionModel answers the requirements-extraction prompt
	ExtractionModel string
	// MatchingModel answers the evidence-matching prompt
	MatchingModel string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider:        ProviderGemini,
		ExtractionModel: "gemini-2.5-flash",
		MatchingModel:   "gemini-2.5-flash",
	}
}

// DefaultOpenRouterConfig returns the default OpenRouter configuration
func DefaultOpenRouterConfig() *Config {
	return &Config{
		Provider:        ProviderOpenRouter,
		ExtractionModel: "openai/gpt-4o-mini",
		MatchingModel:   "openai/gpt-4o-mini",
	}
}
