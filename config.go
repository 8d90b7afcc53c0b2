package wikisummary

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Provider identifiers accepted in Config.Provider.
const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
)

// Config holds the service configuration.
type Config struct {
	// Provider selects the model backend: "openai" (default) or "bedrock".
	Provider string `json:"provider" yaml:"provider"`
	// OpenAIAPIKey authenticates against OpenAI. Unused for Bedrock, which
	// signs with the standard AWS credential chain.
	OpenAIAPIKey string `json:"openai_api_key" yaml:"openai_api_key"`
	// Model is the provider model identifier.
	Model string `json:"model" yaml:"model"`
	// BedrockRegion is the AWS region for the Bedrock runtime.
	BedrockRegion string `json:"bedrock_region,omitempty" yaml:"bedrock_region,omitempty"`

	// MaxSummaryWords is the approximate word ceiling asked of the model.
	MaxSummaryWords int `json:"max_summary_words" yaml:"max_summary_words"`
	// MaxInputTokens bounds the article tokens included in a prompt.
	MaxInputTokens int `json:"max_input_tokens" yaml:"max_input_tokens"`
	// MaxOutputTokens bounds the model's generated tokens.
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens"`
	// Temperature is used for summaries; answers use a fixed lower value.
	Temperature float64 `json:"temperature" yaml:"temperature"`
	// AnswerReserveTokens is headroom subtracted from MaxInputTokens on the
	// chat path so the question and instructions fit the context window.
	AnswerReserveTokens int `json:"answer_reserve_tokens" yaml:"answer_reserve_tokens"`

	// CORSOrigins lists allowed origins; ["*"] allows any.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`

	RateLimitEnabled   bool `json:"rate_limit_enabled" yaml:"rate_limit_enabled"`
	RateLimitPerMinute int  `json:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`

	CacheEnabled    bool `json:"cache_enabled" yaml:"cache_enabled"`
	CacheTTLSeconds int  `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`

	// AuditLog configures the optional SQL request audit trail.
	AuditLog AuditLogConfig `json:"audit_log,omitempty" yaml:"audit_log,omitempty"`
}

// AuditLogConfig selects the audit backend. An empty driver disables it.
type AuditLogConfig struct {
	Driver string `json:"driver" yaml:"driver"` // "", "sqlite", "postgres"
	DSN    string `json:"dsn" yaml:"dsn"`
}

// DefaultConfig returns the configuration used when a field is omitted.
func DefaultConfig() Config {
	return Config{
		Provider:            ProviderOpenAI,
		Model:               "gpt-4o-mini",
		MaxSummaryWords:     300,
		MaxInputTokens:      6000,
		MaxOutputTokens:     500,
		Temperature:         0.7,
		AnswerReserveTokens: 500,
		CORSOrigins:         []string{"*"},
		RateLimitEnabled:    true,
		RateLimitPerMinute:  10,
		CacheEnabled:        true,
		CacheTTLSeconds:     3600,
	}
}

// Validate checks semantic constraints. Structural checks for file-loaded
// configs happen earlier against the JSON schema; Validate also covers
// values arriving through environment overrides.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderBedrock:
	default:
		return fmt.Errorf("unknown provider %q: use %q or %q", c.Provider, ProviderOpenAI, ProviderBedrock)
	}
	if c.Provider == ProviderOpenAI && c.OpenAIAPIKey != "" && !strings.HasPrefix(c.OpenAIAPIKey, "sk-") {
		return fmt.Errorf("invalid OpenAI API key format: must start with %q", "sk-")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.MaxSummaryWords < 50 || c.MaxSummaryWords > 1000 {
		return fmt.Errorf("max_summary_words %d out of range [50, 1000]", c.MaxSummaryWords)
	}
	if c.MaxInputTokens < 1000 || c.MaxInputTokens > 16000 {
		return fmt.Errorf("max_input_tokens %d out of range [1000, 16000]", c.MaxInputTokens)
	}
	if c.MaxOutputTokens < 100 || c.MaxOutputTokens > 2000 {
		return fmt.Errorf("max_output_tokens %d out of range [100, 2000]", c.MaxOutputTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %g out of range [0, 2]", c.Temperature)
	}
	if c.AnswerReserveTokens < 0 || c.AnswerReserveTokens >= c.MaxInputTokens {
		return fmt.Errorf("answer_reserve_tokens %d must be in [0, max_input_tokens)", c.AnswerReserveTokens)
	}
	if c.RateLimitPerMinute < 1 || c.RateLimitPerMinute > 100 {
		return fmt.Errorf("rate_limit_per_minute %d out of range [1, 100]", c.RateLimitPerMinute)
	}
	if c.CacheTTLSeconds < 60 {
		return fmt.Errorf("cache_ttl_seconds %d must be at least 60", c.CacheTTLSeconds)
	}
	switch c.AuditLog.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown audit_log driver %q", c.AuditLog.Driver)
	}
	return nil
}

// ApplyEnv overrides config fields from environment variables. Called after
// LoadConfig so the environment wins over the file.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("WIKISUM_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("BEDROCK_REGION"); v != "" {
		c.BedrockRegion = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.CORSOrigins = origins
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err)
		}
		c.RateLimitPerMinute = n
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL_SECONDS: %w", err)
		}
		c.CacheTTLSeconds = n
	}
	return nil
}
