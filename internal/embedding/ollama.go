package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/e64/stackgraph/internal/config"
)

const (
	ollamaMaxRetries = 3
	ollamaRetryDelay = 2 * time.Second
	// dimensionProbe is embedded once at startup to learn the model's
	// output dimensionality.
	dimensionProbe = "dimension probe"
)

// OllamaClient implements Embedder against the Ollama embeddings API.
type OllamaClient struct {
	baseURL   string
	model     string
	dimension int
	http      *http.Client
}

// NewOllamaClient creates an Ollama embedding client and probes the model's
// output dimension. A probe failure means the provider is misconfigured or
// down, which is fatal at startup.
func NewOllamaClient(ctx context.Context, cfg config.EmbeddingConfig) (*OllamaClient, error) {
	baseURL := strings.TrimRight(cfg.OllamaBaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("OLLAMA_BASE_URL is required")
	}

	c := &OllamaClient{
		baseURL: baseURL,
		model:   cfg.OllamaModel,
		http:    &http.Client{Timeout: 120 * time.Second},
	}

	vec, err := c.Embed(ctx, dimensionProbe)
	if err != nil {
		return nil, fmt.Errorf("probe embedding dimension: %w", err)
	}
	c.dimension = len(vec)
	return c, nil
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// Embed generates an embedding for a single text. Transient server errors
// are retried with linear backoff.
func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(ollamaEmbedRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < ollamaMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(ollamaRetryDelay * time.Duration(attempt)):
			}
		}

		vec, err := c.doEmbedRequest(ctx, reqBody)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		errStr := err.Error()
		if !strings.Contains(errStr, "status 429") &&
			!strings.Contains(errStr, "status 500") &&
			!strings.Contains(errStr, "status 503") {
			return nil, err
		}
	}
	return nil, fmt.Errorf("after %d retries: %w", ollamaMaxRetries, lastErr)
}

func (c *OllamaClient) doEmbedRequest(ctx context.Context, reqBody []byte) ([]float32, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embeddings", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: http request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ollama API error (status %d): %s", ErrUnavailable, resp.StatusCode, snippet(body))
	}

	var result ollamaEmbedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v; body: %s", ErrUnavailable, err, snippet(body))
	}
	if result.Error != "" {
		return nil, fmt.Errorf("%w: ollama error: %s", ErrUnavailable, result.Error)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("%w: ollama returned empty embedding", ErrUnavailable)
	}
	if c.dimension > 0 && len(result.Embedding) != c.dimension {
		return nil, fmt.Errorf("%w: embedding length %d does not match model dimension %d", ErrUnavailable, len(result.Embedding), c.dimension)
	}
	return result.Embedding, nil
}

// Dimension returns the model's output vector length, learned at startup.
func (c *OllamaClient) Dimension() int { return c.dimension }

// ModelID returns the Ollama model identifier.
func (c *OllamaClient) ModelID() string { return c.model }

func snippet(body []byte) string {
	s := string(bytes.TrimSpace(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		s = "(empty)"
	}
	return s
}
