// Package config provides configuration management for Charlotte.
// It loads settings from environment variables with the CHARLOTTE_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration settings for the Charlotte agent.
type Config struct {
	Agent   AgentConfig
	Storage StorageConfig
	LLM     LLMConfig
	Memory  MemoryConfig
	Emotion EmotionConfig
}

// AgentConfig contains agent identity settings.
type AgentConfig struct {
	Name     string // Agent display name (default: Charlotte)
	UserName string // User display name used in prompts (default: empty)
}

// StorageConfig contains database and storage configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, postgres (default: sqlite)
	DataPath      string // Path to data directory (default: ./data)
	PostgresDSN   string // Postgres connection string, used when StorageEngine is postgres
}

// LLMConfig contains LLM provider configuration.
type LLMConfig struct {
	LLMProvider          string  // LLM provider: ollama, openai (default: ollama)
	OllamaURL            string  // Ollama API URL (default: http://localhost:11434)
	OllamaModel          string  // Ollama model name for chat (default: qwen2.5:7b)
	OllamaEmbeddingModel string  // Ollama model name for embeddings (default: nomic-embed-text)
	OpenAIAPIKey         string  // OpenAI-compatible API key
	OpenAIBaseURL        string  // OpenAI-compatible base URL (default: https://api.openai.com/v1)
	OpenAIModel          string  // OpenAI model name (default: gpt-4)
	OpenAIEmbeddingModel string  // OpenAI embedding model name (default: text-embedding-3-small)
	EmbeddingDimension   int     // Embedding vector dimension (default: 768)
	EmbeddingRateLimit   float64 // Embedding requests per second (default: 5)
	EmbeddingRateBurst   int     // Embedding request burst size (default: 10)
}

// MemoryConfig contains the tunables of context retrieval and ranking.
type MemoryConfig struct {
	RecentWindowHours   int     // How far back recent context reaches (default: 24)
	RecentLimit         int     // Maximum recent exchanges in a context bundle (default: 5)
	HistoricalLimit     int     // Maximum historical matches in a context bundle (default: 5)
	SimilarityThreshold float64 // Minimum similarity for historical context (default: 0.5)
	BackfillBatchSize   int     // Records per embedding back-fill pass (default: 50)
}

// EmotionConfig contains emotional state settings.
type EmotionConfig struct {
	DefaultEmotion   string  // Baseline emotion at startup (default: happy)
	DefaultIntensity float64 // Baseline intensity at startup (default: 0.7)
	TriggersPath     string  // Optional YAML file overriding the built-in triggers
	HistoryLimit     int     // Maximum state events returned by history queries (default: 50)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the CHARLOTTE_ prefix.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Agent: AgentConfig{
			Name:     getEnv("CHARLOTTE_AGENT_NAME", "Charlotte"),
			UserName: getEnv("CHARLOTTE_USER_NAME", ""),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("CHARLOTTE_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("CHARLOTTE_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("CHARLOTTE_POSTGRES_DSN", ""),
		},
		LLM: LLMConfig{
			LLMProvider:          getEnv("CHARLOTTE_LLM_PROVIDER", "ollama"),
			OllamaURL:            getEnv("CHARLOTTE_OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:          getEnv("CHARLOTTE_OLLAMA_MODEL", "qwen2.5:7b"),
			OllamaEmbeddingModel: getEnv("CHARLOTTE_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIAPIKey:         getEnv("CHARLOTTE_OPENAI_API_KEY", ""),
			OpenAIBaseURL:        getEnv("CHARLOTTE_OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIModel:          getEnv("CHARLOTTE_OPENAI_MODEL", "gpt-4"),
			OpenAIEmbeddingModel: getEnv("CHARLOTTE_OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension:   getEnvInt("CHARLOTTE_EMBEDDING_DIMENSION", 768),
			EmbeddingRateLimit:   getEnvFloat("CHARLOTTE_EMBEDDING_RATE_LIMIT", 5),
			EmbeddingRateBurst:   getEnvInt("CHARLOTTE_EMBEDDING_RATE_BURST", 10),
		},
		Memory: MemoryConfig{
			RecentWindowHours:   getEnvInt("CHARLOTTE_RECENT_WINDOW_HOURS", 24),
			RecentLimit:         getEnvInt("CHARLOTTE_RECENT_LIMIT", 5),
			HistoricalLimit:     getEnvInt("CHARLOTTE_HISTORICAL_LIMIT", 5),
			SimilarityThreshold: getEnvFloat("CHARLOTTE_SIMILARITY_THRESHOLD", 0.5),
			BackfillBatchSize:   getEnvInt("CHARLOTTE_BACKFILL_BATCH_SIZE", 50),
		},
		Emotion: EmotionConfig{
			DefaultEmotion:   getEnv("CHARLOTTE_DEFAULT_EMOTION", "happy"),
			DefaultIntensity: getEnvFloat("CHARLOTTE_DEFAULT_INTENSITY", 0.7),
			TriggersPath:     getEnv("CHARLOTTE_TRIGGERS_PATH", ""),
			HistoryLimit:     getEnvInt("CHARLOTTE_EMOTION_HISTORY_LIMIT", 50),
		},
	}
	return cfg, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
