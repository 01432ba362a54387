package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Neo4j.URI != "bolt://localhost:7687" {
		t.Errorf("unexpected default neo4j uri %s", cfg.Neo4j.URI)
	}
	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("unexpected default embedding provider %s", cfg.Embedding.Provider)
	}
	if cfg.Stack.PageSize != 100 {
		t.Errorf("unexpected default page size %d", cfg.Stack.PageSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NEO4J_URI", "neo4j://db:7687")
	t.Setenv("EMBEDDING_MODEL", "openai")
	t.Setenv("SO_PAGE_SIZE", "25")
	t.Setenv("EMBEDDING_CONCURRENCY", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Neo4j.URI != "neo4j://db:7687" {
		t.Errorf("env override not applied: %s", cfg.Neo4j.URI)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("env override not applied: %s", cfg.Embedding.Provider)
	}
	if cfg.Stack.PageSize != 25 {
		t.Errorf("env override not applied: %d", cfg.Stack.PageSize)
	}
	if cfg.Embedding.Concurrency != 8 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Embedding.Concurrency)
	}
}
