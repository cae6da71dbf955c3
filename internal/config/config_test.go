package config

import "testing"

func TestLoadPipelineDefaults(t *testing.T) {
	t.Setenv("NATS_INGEST_SUBJECT", "")
	t.Setenv("NATS_REBUILD_SUBJECT", "")
	t.Setenv("ATOM_BUILDER_MODE", "")
	t.Setenv("QDRANT_COLLECTION", "")
	t.Setenv("OLLAMA_REQUESTS_PER_SECOND", "")

	cfg := Load()
	if cfg.NATSIngestSubject != "documents.ingest" {
		t.Fatalf("expected default ingest subject, got %q", cfg.NATSIngestSubject)
	}
	if cfg.NATSRebuildSubject != "projects.sources_changed" {
		t.Fatalf("expected default rebuild subject, got %q", cfg.NATSRebuildSubject)
	}
	if cfg.AtomBuilderMode != "semantic" {
		t.Fatalf("expected default builder mode semantic, got %q", cfg.AtomBuilderMode)
	}
	if cfg.QdrantCollection != "atoms" {
		t.Fatalf("expected default qdrant collection atoms, got %q", cfg.QdrantCollection)
	}
	if cfg.OllamaRequestsPerSecond != 4 {
		t.Fatalf("expected default rate limit 4, got %v", cfg.OllamaRequestsPerSecond)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("ATOM_BUILDER_MODE", "heuristic")
	t.Setenv("OLLAMA_REQUESTS_PER_SECOND", "1.5")
	t.Setenv("OLLAMA_BURST", "8")
	t.Setenv("NEO4J_URI", "neo4j://localhost:7687")

	cfg := Load()
	if cfg.AtomBuilderMode != "heuristic" {
		t.Fatalf("expected builder mode override, got %q", cfg.AtomBuilderMode)
	}
	if cfg.OllamaRequestsPerSecond != 1.5 {
		t.Fatalf("expected rate limit 1.5, got %v", cfg.OllamaRequestsPerSecond)
	}
	if cfg.OllamaBurst != 8 {
		t.Fatalf("expected burst 8, got %d", cfg.OllamaBurst)
	}
	if cfg.Neo4jURI != "neo4j://localhost:7687" {
		t.Fatalf("expected neo4j uri override, got %q", cfg.Neo4jURI)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("OLLAMA_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("OLLAMA_REQUESTS_PER_SECOND", "plenty")

	cfg := Load()
	if cfg.OllamaTimeoutSeconds != 120 {
		t.Fatalf("expected fallback timeout 120, got %d", cfg.OllamaTimeoutSeconds)
	}
	if cfg.OllamaRequestsPerSecond != 4 {
		t.Fatalf("expected fallback rate limit 4, got %v", cfg.OllamaRequestsPerSecond)
	}
}
