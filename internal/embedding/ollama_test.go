package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/e64/stackgraph/internal/config"
)

func ollamaServer(t *testing.T, vec []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "llama2" {
			t.Errorf("expected model llama2, got %s", req.Model)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: vec})
	}))
}

func TestNewOllamaClient_ProbesDimension(t *testing.T) {
	srv := ollamaServer(t, []float32{0.1, 0.2, 0.3, 0.4})
	defer srv.Close()

	client, err := NewOllamaClient(context.Background(), config.EmbeddingConfig{
		OllamaBaseURL: srv.URL,
		OllamaModel:   "llama2",
	})
	if err != nil {
		t.Fatal(err)
	}
	if client.Dimension() != 4 {
		t.Errorf("expected dimension 4, got %d", client.Dimension())
	}
	if client.ModelID() != "llama2" {
		t.Errorf("expected model llama2, got %s", client.ModelID())
	}
}

func TestOllamaClient_Embed(t *testing.T) {
	srv := ollamaServer(t, []float32{0.5, 0.6})
	defer srv.Close()

	client, err := NewOllamaClient(context.Background(), config.EmbeddingConfig{
		OllamaBaseURL: srv.URL,
		OllamaModel:   "llama2",
	})
	if err != nil {
		t.Fatal(err)
	}

	vec, err := client.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 2 || vec[0] != 0.5 {
		t.Errorf("unexpected vector %v", vec)
	}
}

func TestOllamaClient_Embed_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "model not found"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(context.Background(), config.EmbeddingConfig{
		OllamaBaseURL: srv.URL,
		OllamaModel:   "llama2",
	})
	if err == nil {
		t.Fatal("expected error for API error response")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestOllamaClient_Embed_DimensionDrift(t *testing.T) {
	vecs := [][]float32{{0.1, 0.2, 0.3}, {0.1, 0.2}}
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vec := vecs[call]
		if call < len(vecs)-1 {
			call++
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: vec})
	}))
	defer srv.Close()

	client, err := NewOllamaClient(context.Background(), config.EmbeddingConfig{
		OllamaBaseURL: srv.URL,
		OllamaModel:   "llama2",
	})
	if err != nil {
		t.Fatal(err)
	}
	if client.Dimension() != 3 {
		t.Fatalf("expected probed dimension 3, got %d", client.Dimension())
	}

	// Second call returns a shorter vector than the probed dimension.
	_, err = client.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for length drift, got %v", err)
	}
}

func TestNewOllamaClient_MissingBaseURL(t *testing.T) {
	_, err := NewOllamaClient(context.Background(), config.EmbeddingConfig{OllamaModel: "llama2"})
	if err == nil {
		t.Fatal("expected error for missing base URL")
	}
}
