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

const defaultOpenAIBaseURL = "https://api.openai.com/v1/embeddings"

// OpenAIClient implements Embedder using the OpenAI embeddings API.
type OpenAIClient struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	http      *http.Client
}

// NewOpenAIClient creates an OpenAI embedding client and probes the model's
// output dimension.
func NewOpenAIClient(ctx context.Context, cfg config.EmbeddingConfig) (*OpenAIClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	baseURL := strings.TrimRight(cfg.OpenAIBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	c := &OpenAIClient{
		apiKey:  cfg.OpenAIAPIKey,
		model:   cfg.OpenAIModel,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}

	vec, err := c.Embed(ctx, dimensionProbe)
	if err != nil {
		return nil, fmt.Errorf("probe embedding dimension: %w", err)
	}
	c.dimension = len(vec)
	return c, nil
}

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed generates an embedding for a single text.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(openAIEmbedRequest{Model: c.model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return nil, fmt.Errorf("%w: openai API error (status %d): %s", ErrUnavailable, resp.StatusCode, snippet(body))
	}

	var result openAIEmbedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v; body: %s", ErrUnavailable, err, snippet(body))
	}
	if result.Error != nil {
		return nil, fmt.Errorf("%w: openai error: %s", ErrUnavailable, result.Error.Message)
	}
	if len(result.Data) != 1 || len(result.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: openai returned no embedding", ErrUnavailable)
	}
	vec := result.Data[0].Embedding
	if c.dimension > 0 && len(vec) != c.dimension {
		return nil, fmt.Errorf("%w: embedding length %d does not match model dimension %d", ErrUnavailable, len(vec), c.dimension)
	}
	return vec, nil
}

// Dimension returns the model's output vector length, learned at startup.
func (c *OpenAIClient) Dimension() int { return c.dimension }

// ModelID returns the OpenAI model identifier.
func (c *OpenAIClient) ModelID() string { return c.model }
