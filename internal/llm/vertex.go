package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akiliquest/akiliquest/internal/config"
	"github.com/akiliquest/akiliquest/internal/metrics"
	"google.golang.org/genai"
)

// Vertex generates text with Gemini models on Vertex AI.
type Vertex struct {
	client  *genai.Client
	model   string
	metrics *metrics.Collector
}

// NewVertex creates a Vertex AI generator. The project id is mandatory.
func NewVertex(ctx context.Context, cfg config.Config, mc *metrics.Collector) (*Vertex, error) {
	client, err := newVertexClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Vertex{client: client, model: cfg.LLMModel, metrics: mc}, nil
}

func newVertexClient(ctx context.Context, cfg config.Config) (*genai.Client, error) {
	if cfg.GCPProject == "" {
		return nil, ErrMissingProject
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.GCPProject,
		Location: cfg.GCPLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create vertex client: %w", err)
	}
	return client, nil
}

// Generate sends one user prompt and returns the concatenated text parts of the first candidate.
func (v *Vertex) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.JSON {
		genCfg.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	resp, err := v.client.Models.GenerateContent(ctx, v.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, genCfg)
	duration := time.Since(start)
	if err != nil {
		slog.Warn("vertex generate failed", "model", v.model, "duration_ms", duration.Milliseconds(), "error", err)
		return "", fmt.Errorf("generate: %w", wrapFatalError(err))
	}

	var in, out int64
	if resp.UsageMetadata != nil {
		in = int64(resp.UsageMetadata.PromptTokenCount)
		out = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	v.metrics.RecordLLMUsage(metrics.OpLLMGenerate, duration, in, out)

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	slog.Debug("vertex generate complete", "model", v.model, "duration_ms", duration.Milliseconds(), "output_len", len(text))
	return text, nil
}

// Name returns the model id.
func (v *Vertex) Name() string {
	return v.model
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
