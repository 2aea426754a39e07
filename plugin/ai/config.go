package ai

import (
	"errors"

	"github.com/signos-ai/signos/internal/profile"
)

// Config represents AI provider configuration.
type Config struct {
	Embedding EmbeddingConfig
	LLM       LLMConfig
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider string // openai, workersai
	Model    string // @cf/baai/bge-base-en-v1.5, text-embedding-3-small
	APIKey   string
	BaseURL  string
}

// LLMConfig represents generative model configuration.
type LLMConfig struct {
	Provider    string  // openai (or any OpenAI-compatible endpoint)
	Model       string  // gpt-4o-mini
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 1024
	Temperature float32 // default: 0.7, overridable per call
}

// NewConfigFromProfile creates AI config from the server profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider: p.AIEmbeddingProvider,
			Model:    p.AIEmbeddingModel,
			APIKey:   p.AIAPIKey,
			BaseURL:  p.AIBaseURL,
		},
		LLM: LLMConfig{
			Provider:    p.AILLMProvider,
			Model:       p.AILLMModel,
			APIKey:      p.AIAPIKey,
			BaseURL:     p.AIBaseURL,
			MaxTokens:   1024,
			Temperature: 0.7,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Embedding.Provider == "" {
		return errors.New("embedding provider is required")
	}
	if c.Embedding.APIKey == "" {
		return errors.New("embedding API key is required")
	}
	if c.LLM.Provider == "" {
		return errors.New("LLM provider is required")
	}
	if c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	return nil
}
