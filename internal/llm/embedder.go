package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/akiliquest/akiliquest/internal/config"
	"github.com/akiliquest/akiliquest/internal/metrics"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/genai"
)

// Embedder turns topic text into a vector stored alongside the topic.
type Embedder struct {
	embed     func(ctx context.Context, texts []string) ([][]float32, error)
	modelName string
	metrics   *metrics.Collector
}

// NewEmbedder creates an embedder for cfg.EmbedModel using the configured provider.
// Vertex uses the genai SDK; ollama and openai go through langchaingo.
func NewEmbedder(ctx context.Context, cfg config.Config, mc *metrics.Collector) (*Embedder, error) {
	if cfg.EmbedModel == "" {
		return nil, fmt.Errorf("%w: AKILIQUEST_EMBED_MODEL", config.ErrMissingSetting)
	}

	e := &Embedder{modelName: cfg.EmbedModel, metrics: mc}

	switch cfg.LLMProvider {
	case config.ProviderVertex:
		client, err := newVertexClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		e.embed = func(ctx context.Context, texts []string) ([][]float32, error) {
			contents := make([]*genai.Content, len(texts))
			for i, text := range texts {
				contents[i] = genai.NewContentFromText(text, genai.RoleUser)
			}
			result, err := client.Models.EmbedContent(ctx, cfg.EmbedModel, contents,
				&genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"})
			if err != nil {
				return nil, err
			}
			vectors := make([][]float32, len(result.Embeddings))
			for i, emb := range result.Embeddings {
				vectors[i] = emb.Values
			}
			return vectors, nil
		}

	case config.ProviderOllama:
		client, err := ollama.New(
			ollama.WithModel(cfg.EmbedModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
		model, err := embeddings.NewEmbedder(client)
		if err != nil {
			return nil, fmt.Errorf("create ollama embedder: %w", err)
		}
		e.embed = model.EmbedDocuments

	case config.ProviderOpenAI:
		client, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithEmbeddingModel(cfg.EmbedModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		model, err := embeddings.NewEmbedder(client)
		if err != nil {
			return nil, fmt.Errorf("create openai embedder: %w", err)
		}
		e.embed = model.EmbedDocuments

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.LLMProvider)
	}

	return e, nil
}

// Embed generates an embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vectors, err := e.embed(ctx, []string{text})
	duration := time.Since(start)
	if err != nil {
		slog.Warn("embedding failed", "model", e.modelName, "text_len", len(text), "duration_ms", duration.Milliseconds(), "error", err)
		return nil, fmt.Errorf("embed: %w", wrapFatalError(err))
	}
	e.metrics.RecordTiming(metrics.OpEmbedding, duration)

	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vectors[0], nil
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.modelName
}
