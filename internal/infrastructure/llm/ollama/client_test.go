package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/ports"
)

func testClient(baseURL string) *Client {
	return New(Config{BaseURL: baseURL, GenModel: "gen", EmbedModel: "embed", VisionModel: "vision"}, nil)
}

func TestClassifyChunkParsesResponse(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		capturedPrompt, _ = payload["prompt"].(string)
		if payload["format"] != "json" {
			t.Fatalf("expected json-constrained output, got %v", payload["format"])
		}
		_, _ = w.Write([]byte(`{"response":"{\"title\":\"T\",\"authors\":[\"A\"],\"blocks\":[{\"block_index\":0,\"type\":\"heading\",\"topics\":[\"x\"],\"entities\":[],\"importance\":0.8}]}"}`))
	}))
	defer server.Close()

	classifier := NewClassifier(testClient(server.URL))
	result, err := classifier.ClassifyChunk(context.Background(), ports.ChunkRequest{
		DocumentType: domain.TypeScientificPaper,
		ChunkStart:   0,
		ChunkEnd:     2,
		TotalBlocks:  2,
		Context:      "[0] p.1 size=18.0 bold=true | Heading\n",
		WantTitle:    true,
	})
	if err != nil {
		t.Fatalf("ClassifyChunk() error = %v", err)
	}
	if result.Title != "T" || len(result.Blocks) != 1 || result.Blocks[0].Type != "heading" {
		t.Fatalf("unexpected result %+v", result)
	}
	if !strings.Contains(capturedPrompt, "blocks 0..1") || !strings.Contains(capturedPrompt, "Heading") {
		t.Fatalf("unexpected prompt: %s", capturedPrompt)
	}
	if !strings.Contains(capturedPrompt, `"title"`) {
		t.Fatalf("first chunk prompt must request a title: %s", capturedPrompt)
	}
}

func TestClassifyChunkMalformedJSONIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"not a json object at all"}`))
	}))
	defer server.Close()

	classifier := NewClassifier(testClient(server.URL))
	_, err := classifier.ClassifyChunk(context.Background(), ports.ChunkRequest{ChunkEnd: 1, TotalBlocks: 1})
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("contract violations must not be temporary: %v", err)
	}
}

func TestSummarizeParsesLevels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"{\"sentence\":\"s\",\"paragraph\":\"p\",\"full\":\"f\"}"}`))
	}))
	defer server.Close()

	classifier := NewClassifier(testClient(server.URL))
	summaries, err := classifier.Summarize(context.Background(), ports.SummaryRequest{Title: "T", Context: "body"})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summaries.Sentence != "s" || summaries.Paragraph != "p" || summaries.Full != "f" {
		t.Fatalf("unexpected summaries %+v", summaries)
	}
}

func TestEmbedServerErrorIsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	embedder := NewEmbedder(testClient(server.URL))
	_, err := embedder.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("5xx must be temporary, got %v", err)
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestDescribeImageSendsPayload(t *testing.T) {
	var gotImages int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Model  string   `json:"model"`
			Images []string `json:"images"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Model != "vision" {
			t.Fatalf("expected vision model, got %q", payload.Model)
		}
		gotImages = len(payload.Images)
		_, _ = w.Write([]byte(`{"response":" A bar chart of results. "}`))
	}))
	defer server.Close()

	vision := NewVision(testClient(server.URL))
	desc, err := vision.DescribeImage(context.Background(), []byte{0x89, 0x50})
	if err != nil {
		t.Fatalf("DescribeImage() error = %v", err)
	}
	if gotImages != 1 {
		t.Fatalf("expected one base64 image, got %d", gotImages)
	}
	if desc != "A bar chart of results." {
		t.Fatalf("unexpected description %q", desc)
	}
}

func TestDescribeImageEmptyPayloadSkipsRequest(t *testing.T) {
	vision := NewVision(testClient("http://127.0.0.1:0"))
	desc, err := vision.DescribeImage(context.Background(), nil)
	if err != nil || desc != "" {
		t.Fatalf("expected no-op for empty payload, got %q / %v", desc, err)
	}
}
