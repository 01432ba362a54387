package config

import (
	"os"
	"strconv"
)

type Config struct {
	Neo4j     Neo4jConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
	Stack     StackConfig
}

type Neo4jConfig struct {
	URI      string
	User     string
	Password string
}

type EmbeddingConfig struct {
	// Provider selects the embedding backend: "ollama" or "openai".
	Provider      string
	OllamaBaseURL string
	OllamaModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	Concurrency   int
}

type LLMConfig struct {
	Model         string
	OllamaBaseURL string
}

type StackConfig struct {
	BaseURL  string
	PageSize int
}

func Load() (*Config, error) {
	cfg := &Config{
		Neo4j: Neo4jConfig{
			URI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
			User:     getEnv("NEO4J_USERNAME", "neo4j"),
			Password: getEnv("NEO4J_PASSWORD", "password"),
		},
		Embedding: EmbeddingConfig{
			Provider:      getEnv("EMBEDDING_MODEL", "ollama"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:   getEnv("OLLAMA_EMBEDDING_MODEL", "llama2"),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:   getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-ada-002"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			Concurrency:   getEnvInt("EMBEDDING_CONCURRENCY", 8),
		},
		LLM: LLMConfig{
			Model:         getEnv("LLM", "llama2"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Stack: StackConfig{
			BaseURL:  getEnv("SO_API_BASE_URL", "https://api.stackexchange.com/2.3/search/advanced"),
			PageSize: getEnvInt("SO_PAGE_SIZE", 100),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
