package profile

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Driver is the lesson-store database driver (sqlite)
	Driver string
	// DSN points to the read-only lesson/progress database
	DSN string
	// Version is the current version of the server
	Version string

	// AI configuration
	AILLMProvider       string // SIGNOS_AI_LLM_PROVIDER (default: openai)
	AILLMModel          string // SIGNOS_AI_LLM_MODEL (default: gpt-4o-mini)
	AIEmbeddingProvider string // SIGNOS_AI_EMBEDDING_PROVIDER (openai or workersai)
	AIEmbeddingModel    string // SIGNOS_AI_EMBEDDING_MODEL (default: @cf/baai/bge-base-en-v1.5)
	AIAPIKey            string // SIGNOS_AI_API_KEY
	AIBaseURL           string // SIGNOS_AI_BASE_URL

	// Vector index configuration
	IndexProvider      string // SIGNOS_INDEX_PROVIDER (rest or pgvector)
	IndexBaseURL       string // SIGNOS_INDEX_BASE_URL (rest driver)
	IndexAPIToken      string // SIGNOS_INDEX_API_TOKEN (rest driver)
	IndexDSN           string // SIGNOS_INDEX_PG_DSN (pgvector driver)
	SignIndexName      string // SIGNOS_INDEX_SIGN_NAME (default: signs)
	KnowledgeIndexName string // SIGNOS_INDEX_KNOWLEDGE_NAME (default: knowledge)

	// Retrieval tunables
	CacheCapacity  int // SIGNOS_CACHE_CAPACITY (default: 500)
	TurnTimeoutSec int // SIGNOS_TURN_TIMEOUT_SEC (default: 15)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// FromEnv loads configuration from SIGNOS_* environment variables.
func (p *Profile) FromEnv() {
	p.AILLMProvider = getEnvOrDefault("SIGNOS_AI_LLM_PROVIDER", "openai")
	p.AILLMModel = getEnvOrDefault("SIGNOS_AI_LLM_MODEL", "gpt-4o-mini")
	p.AIEmbeddingProvider = getEnvOrDefault("SIGNOS_AI_EMBEDDING_PROVIDER", "workersai")
	p.AIEmbeddingModel = getEnvOrDefault("SIGNOS_AI_EMBEDDING_MODEL", "@cf/baai/bge-base-en-v1.5")
	p.AIAPIKey = os.Getenv("SIGNOS_AI_API_KEY")
	p.AIBaseURL = os.Getenv("SIGNOS_AI_BASE_URL")

	p.IndexProvider = getEnvOrDefault("SIGNOS_INDEX_PROVIDER", "rest")
	p.IndexBaseURL = os.Getenv("SIGNOS_INDEX_BASE_URL")
	p.IndexAPIToken = os.Getenv("SIGNOS_INDEX_API_TOKEN")
	p.IndexDSN = os.Getenv("SIGNOS_INDEX_PG_DSN")
	p.SignIndexName = getEnvOrDefault("SIGNOS_INDEX_SIGN_NAME", "signs")
	p.KnowledgeIndexName = getEnvOrDefault("SIGNOS_INDEX_KNOWLEDGE_NAME", "knowledge")

	p.CacheCapacity = getIntEnvOrDefault("SIGNOS_CACHE_CAPACITY", 500)
	p.TurnTimeoutSec = getIntEnvOrDefault("SIGNOS_TURN_TIMEOUT_SEC", 15)
}

// Validate checks the profile for obvious misconfiguration.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.AIAPIKey == "" {
		return errors.New("AI API key is required, set SIGNOS_AI_API_KEY")
	}

	switch p.IndexProvider {
	case "rest":
		if p.IndexBaseURL == "" {
			return errors.New("rest index driver requires SIGNOS_INDEX_BASE_URL")
		}
	case "pgvector":
		if p.IndexDSN == "" {
			return errors.New("pgvector index driver requires SIGNOS_INDEX_PG_DSN")
		}
	default:
		return errors.Errorf("unsupported index provider: %s", p.IndexProvider)
	}

	if p.CacheCapacity <= 0 {
		p.CacheCapacity = 500
	}
	if p.TurnTimeoutSec <= 0 {
		p.TurnTimeoutSec = 15
	}

	return nil
}
