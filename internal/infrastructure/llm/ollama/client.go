package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/ports"
	"github.com/kirillkom/docgraph/internal/infrastructure/resilience"
)

type Config struct {
	BaseURL     string
	GenModel    string
	EmbedModel  string
	VisionModel string

	RequestTimeout time.Duration

	// RequestsPerSecond throttles all outgoing calls; zero disables the
	// limiter.
	RequestsPerSecond float64
	Burst             int
}

type Client struct {
	baseURL     string
	genModel    string
	embedModel  string
	visionModel string
	httpClient  *http.Client
	limiter     *rate.Limiter
	exec        *resilience.Executor
}

func New(cfg Config, exec *resilience.Executor) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		genModel:    cfg.GenModel,
		embedModel:  cfg.EmbedModel,
		visionModel: cfg.VisionModel,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     limiter,
		exec:        exec,
	}
}

// Classifier implements the block classification contract on top of the
// generate endpoint with JSON-constrained output.
type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

func (c *Classifier) ClassifyChunk(ctx context.Context, req ports.ChunkRequest) (ports.ChunkResult, error) {
	respText, err := c.client.generateJSON(ctx, "classify_chunk", c.client.genModel, buildChunkPrompt(req), nil)
	if err != nil {
		return ports.ChunkResult{}, err
	}

	// Malformed output is a contract violation and must stay fatal, so it is
	// never wrapped as temporary.
	var result ports.ChunkResult
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &result); err != nil {
		return ports.ChunkResult{}, fmt.Errorf("parse chunk classification json: %w", err)
	}
	return result, nil
}

func (c *Classifier) Summarize(ctx context.Context, req ports.SummaryRequest) (domain.GraphSummaries, error) {
	respText, err := c.client.generateJSON(ctx, "summarize", c.client.genModel, buildSummaryPrompt(req), nil)
	if err != nil {
		return domain.GraphSummaries{}, err
	}

	var result domain.GraphSummaries
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &result); err != nil {
		return domain.GraphSummaries{}, fmt.Errorf("parse summary json: %w", err)
	}
	return result, nil
}

// Vision describes extracted images through a multimodal model.
type Vision struct {
	client *Client
}

func NewVision(client *Client) *Vision {
	return &Vision{client: client}
}

func (v *Vision) DescribeImage(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", nil
	}
	images := []string{base64.StdEncoding.EncodeToString(image)}
	return v.client.generateText(ctx, "describe_image", v.client.visionModel, buildVisionPrompt(), images)
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.postResilient(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (c *Client) generateJSON(ctx context.Context, operation, model, prompt string, images []string) (string, error) {
	reqBody := map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}
	if len(images) > 0 {
		reqBody["images"] = images
	}
	return c.generate(ctx, operation, reqBody)
}

func (c *Client) generateText(ctx context.Context, operation, model, prompt string, images []string) (string, error) {
	reqBody := map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
	}
	if len(images) > 0 {
		reqBody["images"] = images
	}
	return c.generate(ctx, operation, reqBody)
}

func (c *Client) generate(ctx context.Context, operation string, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	if err := c.postResilient(ctx, "/api/generate", reqBody, &response, operation); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func (c *Client) postResilient(ctx context.Context, path string, payload, out any, operation string) error {
	var err error
	if c.exec != nil {
		err = c.exec.Execute(ctx, "ollama_"+operation, func(ctx context.Context) error {
			return c.postJSON(ctx, path, payload, out, operation)
		}, classifyOllamaError)
	} else {
		err = c.postJSON(ctx, path, payload, out, operation)
	}
	return wrapTemporaryIfNeeded(operation, err)
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
