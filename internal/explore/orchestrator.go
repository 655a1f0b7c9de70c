package explore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akiliquest/akiliquest/internal/llm"
	"github.com/akiliquest/akiliquest/internal/metrics"
	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/sony/gobreaker"
)

// ErrTimeout indicates the model did not answer within the orchestrator timeout.
var ErrTimeout = errors.New("ai generation timed out")

const (
	tooShortReason = "Topic is too short. Please enter at least 2 characters."
	tooLongReason  = "Topic is too long. Please keep it under 100 characters."
)

var (
	exploreOpts  = llm.Options{MaxTokens: 2048, Temperature: 0.7, JSON: true}
	deeperOpts   = llm.Options{MaxTokens: 2048, Temperature: 0.8, JSON: true}
	validateOpts = llm.Options{MaxTokens: 256, Temperature: 0.1, JSON: true}
	suggestOpts  = llm.Options{MaxTokens: 512, Temperature: 0.9, JSON: true}
)

// Orchestrator runs prompts against a shared generator.
// None of its operations return errors: failures degrade to fallback values.
type Orchestrator struct {
	gen             llm.Generator
	timeout         time.Duration
	breakerFailures uint32
	breaker         *gobreaker.CircuitBreaker
	logger          *slog.Logger
	metrics         *metrics.Collector
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds every generation call.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithBreakerFailures sets how many consecutive generation failures open the breaker.
// Zero disables the breaker.
func WithBreakerFailures(n uint32) Option {
	return func(o *Orchestrator) { o.breakerFailures = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records call outcomes on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *Orchestrator) { o.metrics = c }
}

// New creates an orchestrator around gen, which was built once at startup.
func New(gen llm.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:             gen,
		timeout:         models.AITimeout,
		breakerFailures: 5,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.breakerFailures > 0 {
		threshold := o.breakerFailures
		o.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "ai-generation",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				// Callers going away says nothing about the provider.
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				o.logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return o
}

// Model returns the generator's model identifier.
func (o *Orchestrator) Model() string {
	return o.gen.Name()
}

// ExploreTopic asks for a summary and exactly five connections for topic.
func (o *Orchestrator) ExploreTopic(ctx context.Context, topic string) Outcome[models.AIResponse] {
	raw, err := o.generate(ctx, explorePrompt(topic), exploreOpts)
	if err == nil {
		var resp models.AIResponse
		if resp, err = parseExploration(raw); err == nil {
			return succeed(o, resp)
		}
	}
	return degrade(o, "explore topic", topic, fallbackExploration(topic), err)
}

// ExploreDeeper asks for more advanced connections that avoid the explored titles.
func (o *Orchestrator) ExploreDeeper(ctx context.Context, topic string, explored []string) Outcome[models.AIResponse] {
	raw, err := o.generate(ctx, deeperPrompt(topic, explored), deeperOpts)
	if err == nil {
		var resp models.AIResponse
		if resp, err = parseDeeper(raw, explored); err == nil {
			return succeed(o, resp)
		}
	}
	return degrade(o, "explore deeper", topic, fallbackExploration(topic), err)
}

// ValidateTopic checks input length locally, then asks the model for a verdict.
// A model failure accepts the trimmed input.
func (o *Orchestrator) ValidateTopic(ctx context.Context, input string) Outcome[models.TopicValidation] {
	switch n := models.TopicLength(input); {
	case n < models.MinTopicLength:
		return success(models.TopicValidation{Reason: tooShortReason, Suggestions: []string{}})
	case n > models.MaxTopicLength:
		return success(models.TopicValidation{Reason: tooLongReason, Suggestions: []string{}})
	}

	raw, err := o.generate(ctx, validatePrompt(strings.TrimSpace(input)), validateOpts)
	if err == nil {
		var v models.TopicValidation
		if v, err = parseValidation(raw, input); err == nil {
			return succeed(o, v)
		}
	}
	return degrade(o, "validate topic", input, fallbackValidation(input), err)
}

// SuggestTopics asks for count new topics given the explored history.
// The result is never empty.
func (o *Orchestrator) SuggestTopics(ctx context.Context, explored []string, count int) Outcome[[]string] {
	if count <= 0 {
		count = DefaultSuggestionCount
	}
	raw, err := o.generate(ctx, suggestPrompt(explored, count), suggestOpts)
	if err == nil {
		var list []string
		if list, err = parseSuggestions(raw, count); err == nil {
			return succeed(o, list)
		}
	}
	return degrade(o, "suggest topics", strings.Join(explored, ","), fallbackSuggestions(count), err)
}

func succeed[T any](o *Orchestrator, v T) Outcome[T] {
	o.metrics.RecordAICall(false)
	return success(v)
}

func degrade[T any](o *Orchestrator, op, topic string, v T, err error) Outcome[T] {
	o.logger.Warn("ai call degraded to fallback", "op", op, "topic", topic, "error", err)
	o.metrics.RecordAICall(true)
	return fallback(v, err)
}

// generate runs one generation through the breaker and the timeout race.
func (o *Orchestrator) generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	if o.breaker == nil {
		return o.race(ctx, prompt, opts)
	}
	out, err := o.breaker.Execute(func() (interface{}, error) {
		return o.race(ctx, prompt, opts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("circuit breaker is open: %w", err)
		}
		return "", err
	}
	return out.(string), nil
}

// race returns the generator's answer or ErrTimeout, whichever comes first.
// The generation goroutine runs under the timed context and reports on a buffered
// channel, so it never blocks after the race is lost.
func (o *Orchestrator) race(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	start := time.Now()
	go func() {
		text, err := o.gen.Generate(ctx, prompt, opts)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		o.logger.Debug("ai generation finished", "duration_ms", time.Since(start).Milliseconds(), "error", r.err)
		return r.text, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, o.timeout)
		}
		return "", ctx.Err()
	}
}
