package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the analyzer service.
// Environment variables are parsed from the ANALYZER_ prefix,
// e.g. ANALYZER_HTTP_PORT, ANALYZER_ANTHROPIC_API_KEY.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Anthropic API
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY" default:""`
	AnthropicBaseURL string `envconfig:"ANTHROPIC_BASE_URL" default:"https://api.anthropic.com"`
	ClaudeModel      string `envconfig:"CLAUDE_MODEL" default:"claude-3-5-sonnet-20241022"`
	// Planning and synthesis prompts can be large; keep a generous timeout.
	LLMTimeoutSeconds int `envconfig:"LLM_TIMEOUT_SECONDS" default:"120"`

	// Blob storage. When S3Bucket is empty the local filesystem backend is
	// used with DataDir as its root.
	S3Bucket string `envconfig:"S3_BUCKET" default:""`
	S3Region string `envconfig:"S3_REGION" default:"us-east-1"`
	DataDir  string `envconfig:"DATA_DIR" default:"data"`

	// Corpus ingestion
	CorpusKey string `envconfig:"CORPUS_KEY" default:"conversations/conversation_items.jsonl"`

	// Retrieval tuning. MinRetrievalYield is the minimum number of scored
	// matches below which the executor discards the result and falls back to
	// a diversity sample of the corpus. SynthesisVisibleItems caps how many
	// retrieved items are rendered into the synthesis prompt.
	MinRetrievalYield     int `envconfig:"MIN_RETRIEVAL_YIELD" default:"20"`
	SynthesisVisibleItems int `envconfig:"SYNTHESIS_VISIBLE_ITEMS" default:"50"`

	// Topic extraction batch engine
	ExtractionCheckpointEvery int `envconfig:"EXTRACTION_CHECKPOINT_EVERY" default:"10"`
	ExtractionMaxRetries      int `envconfig:"EXTRACTION_MAX_RETRIES" default:"5"`
	ExtractionDelayMillis     int `envconfig:"EXTRACTION_DELAY_MILLIS" default:"500"`
}

// ResolveDefaults validates the configuration and normalizes zero values.
func (c *Config) ResolveDefaults() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	if c.LLMTimeoutSeconds <= 0 {
		c.LLMTimeoutSeconds = 120
	}
	if c.MinRetrievalYield < 0 {
		return fmt.Errorf("MIN_RETRIEVAL_YIELD must be >= 0, got %d", c.MinRetrievalYield)
	}
	if c.SynthesisVisibleItems <= 0 {
		c.SynthesisVisibleItems = 50
	}
	if c.ExtractionCheckpointEvery <= 0 {
		c.ExtractionCheckpointEvery = 10
	}
	if c.ExtractionMaxRetries <= 0 {
		c.ExtractionMaxRetries = 5
	}
	return nil
}

// New creates a new Config by parsing environment variables with the
// ANALYZER_ prefix.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("ANALYZER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		AnthropicBaseURL:          "https://api.anthropic.com",
		ClaudeModel:               "claude-3-5-sonnet-20241022",
		LLMTimeoutSeconds:         5,
		DataDir:                   "testdata",
		CorpusKey:                 "conversations/conversation_items.jsonl",
		MinRetrievalYield:         20,
		SynthesisVisibleItems:     50,
		ExtractionCheckpointEvery: 10,
		ExtractionMaxRetries:      3,
		ExtractionDelayMillis:     0,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// LLMTimeout returns the LLM request timeout as a duration.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// ExtractionDelay returns the inter-request throttle for batch extraction.
func (c *Config) ExtractionDelay() time.Duration {
	return time.Duration(c.ExtractionDelayMillis) * time.Millisecond
}
