package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/e64/stackgraph/internal/config"
)

// ErrUnavailable marks embedding failures: the provider is unreachable or
// returned malformed output. Callers drop the affected record and continue.
var ErrUnavailable = errors.New("embedding provider unavailable")

// Embedder is the interface for embedding providers.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	ModelID() string
}

// NewEmbedder selects a provider from config: OpenAI (if API key set and
// provider is "openai") > Ollama. The returned embedder has already probed
// its output dimensionality.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (Embedder, error) {
	if cfg.Provider == "openai" {
		client, err := NewOpenAIClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
		return client, nil
	}

	client, err := NewOllamaClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ollama client: %w", err)
	}
	return client, nil
}
