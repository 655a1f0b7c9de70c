// Package llm provides text generation and embedding backends for AkiliQuest.
package llm

import (
	"context"
	"errors"

	"github.com/akiliquest/akiliquest/internal/config"
	"github.com/akiliquest/akiliquest/internal/metrics"
)

// ErrMissingProject is returned when the Vertex AI backend is selected without a project id.
var ErrMissingProject = errors.New("google cloud project id is required for vertex")

// ErrEmptyResponse indicates the provider answered without any text.
var ErrEmptyResponse = errors.New("empty model response")

// Options tune a single generation call.
type Options struct {
	MaxTokens   int
	Temperature float64
	JSON        bool // ask the provider for a JSON-only answer when it supports it
}

// Generator produces text for a single prompt.
// Implementations are safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	Name() string
}

// NewGenerator creates the generator for cfg.LLMProvider.
// It is called once at startup; the result is shared.
func NewGenerator(ctx context.Context, cfg config.Config, mc *metrics.Collector) (Generator, error) {
	if cfg.LLMProvider == config.ProviderVertex {
		return NewVertex(ctx, cfg, mc)
	}
	return NewModel(ctx, cfg, mc)
}
