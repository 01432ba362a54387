// Package extract runs the secondary code-submission flow: an LLM pulls
// domain concepts out of submitted source code and the tokens are streamed
// to an optional sink. Nothing is persisted.
package extract

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/e64/stackgraph/internal/config"
)

// TokenSink receives streamed tokens as the model produces them. It is a
// display side-channel only and has no bearing on the result.
type TokenSink interface {
	Token(token string)
}

// TokenSinkFunc adapts a function to the TokenSink interface.
type TokenSinkFunc func(token string)

func (f TokenSinkFunc) Token(token string) { f(token) }

const systemPrompt = `You are an assistant that analyzes source code.
Identify the business domain concepts the code models: entities, their
attributes and the relationships between them. Answer with a concise
structured summary.`

// Client is a streaming chat client for the Ollama API.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.OllamaBaseURL, "/"),
		model:   cfg.Model,
		http:    &http.Client{Timeout: 10 * time.Minute},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatStreamChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// ExtractFromCode asks the model for the domain concepts in a piece of code,
// forwarding each streamed token to sink (which may be nil) and returning
// the assembled answer.
func (c *Client) ExtractFromCode(ctx context.Context, fileName, filePath, code string, sink TokenSink) (string, error) {
	user := fmt.Sprintf("File: %s\nPath: %s\n\n%s", fileName, filePath, code)
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Stream: true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (status %d)", resp.StatusCode)
	}

	// The stream is newline-delimited JSON, one chunk per token.
	var answer strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk chatStreamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return "", fmt.Errorf("unmarshal stream chunk: %w", err)
		}
		if chunk.Error != "" {
			return "", fmt.Errorf("ollama error: %s", chunk.Error)
		}
		if chunk.Message.Content != "" {
			answer.WriteString(chunk.Message.Content)
			if sink != nil {
				sink.Token(chunk.Message.Content)
			}
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}

	return strings.TrimSpace(answer.String()), nil
}

// Model returns the model identifier.
func (c *Client) Model() string { return c.model }
