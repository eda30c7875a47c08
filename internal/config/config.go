// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/gap-analyzer/internal/llm"
)

// Default tuning values. Exposed as config because different JD corpora need
// different merge aggressiveness, but the defaults match what the scoring
// artifacts were calibrated against.
const (
	DefaultJaccardThreshold = 0.8
	DefaultMinQuoteLength   = 12
	DefaultArtifactsDir     = "artifacts"
	DefaultAuditLog         = "artifacts/audit.jsonl"
	DefaultServerAddr       = ":5000"
)

// Config represents the application configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Provider
	APIKey          string `json:"api_key,omitempty"`          // Generation API key
	Provider        string `json:"provider,omitempty"`         // "gemini" or "openrouter"
	ExtractionModel string `json:"extraction_model,omitempty"` // Model for requirements extraction
	MatchingModel   string `json:"matching_model,omitempty"`   // Model for evidence matching

	// Storage
	ArtifactsDir string `json:"artifacts_dir,omitempty"` // Directory for frozen artifacts
	AuditLog     string `json:"audit_log,omitempty"`     // JSONL audit log path
	DatabaseURL  string `json:"database_url,omitempty"`  // PostgreSQL connection URL (optional run log)

	// Tuning
	JaccardThreshold float64 `json:"jaccard_threshold,omitempty"` // Near-duplicate merge threshold (0.0-1.0)
	MinQuoteLength   int     `json:"min_quote_length,omitempty"`  // Minimum accepted evidence quote length

	// Server
	ServerAddr string `json:"server_addr,omitempty"` // Listen address for serve mode

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills provider fields from the environment. Explicit config file
// or flag values win; env is the fallback.
func (c *Config) FromEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GAP_API_KEY")
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Provider == "" {
		c.Provider = os.Getenv("GAP_PROVIDER")
	}
	if c.ExtractionModel == "" {
		c.ExtractionModel = os.Getenv("GAP_EXTRACT_MODEL")
	}
	if c.MatchingModel == "" {
		c.MatchingModel = os.Getenv("GAP_MATCH_MODEL")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Provider != "" &&
		c.Provider != string(llm.ProviderGemini) &&
		c.Provider != string(llm.ProviderOpenRouter) {
		return fmt.Errorf("config error: unknown provider %q", c.Provider)
	}
	if c.JaccardThreshold < 0 || c.JaccardThreshold > 1 {
		return fmt.Errorf("config error: 'jaccard_threshold' must be between 0 and 1")
	}
	if c.MinQuoteLength < 0 {
		return fmt.Errorf("config error: 'min_quote_length' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults, then from built-in defaults. CLI flags should always win for
// bools so they are not merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Provider == "" {
		result.Provider = string(llm.ProviderGemini)
	}
	if result.ExtractionModel == "" {
		result.ExtractionModel = defaults.ExtractionModel
	}
	if result.MatchingModel == "" {
		result.MatchingModel = defaults.MatchingModel
	}
	if result.ExtractionModel == "" || result.MatchingModel == "" {
		llmDefaults := llm.DefaultGeminiConfig()
		if result.Provider == string(llm.ProviderOpenRouter) {
			llmDefaults = llm.DefaultOpenRouterConfig()
		}
		if result.ExtractionModel == "" {
			result.ExtractionModel = llmDefaults.ExtractionModel
		}
		if result.MatchingModel == "" {
			result.MatchingModel = llmDefaults.MatchingModel
		}
	}
	if result.ArtifactsDir == "" {
		result.ArtifactsDir = defaults.ArtifactsDir
	}
	if result.ArtifactsDir == "" {
		result.ArtifactsDir = DefaultArtifactsDir
	}
	if result.AuditLog == "" {
		result.AuditLog = defaults.AuditLog
	}
	if result.AuditLog == "" {
		result.AuditLog = DefaultAuditLog
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ServerAddr == "" {
		result.ServerAddr = defaults.ServerAddr
	}
	if result.ServerAddr == "" {
		result.ServerAddr = DefaultServerAddr
	}
	if result.JaccardThreshold == 0 {
		if defaults.JaccardThreshold > 0 {
			result.JaccardThreshold = defaults.JaccardThreshold
		} else {
			result.JaccardThreshold = DefaultJaccardThreshold
		}
	}
	if result.MinQuoteLength == 0 {
		if defaults.MinQuoteLength > 0 {
			result.MinQuoteLength = defaults.MinQuoteLength
		} else {
			result.MinQuoteLength = DefaultMinQuoteLength
		}
	}

	return result
}

// LLMConfig converts the application config into a provider config.
func (c *Config) LLMConfig() *llm.Config {
	return &llm.Config{
		Provider:        llm.Provider(c.Provider),
		ExtractionModel: c.ExtractionModel,
		MatchingModel:   c.MatchingModel,
	}
}
