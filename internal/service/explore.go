package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/akiliquest/akiliquest/internal/explore"
	"github.com/akiliquest/akiliquest/internal/models"
)

// Orchestrator is the AI side of an exploration.
type Orchestrator interface {
	ExploreTopic(ctx context.Context, topic string) explore.Outcome[models.AIResponse]
	ExploreDeeper(ctx context.Context, topic string, explored []string) explore.Outcome[models.AIResponse]
	ValidateTopic(ctx context.Context, input string) explore.Outcome[models.TopicValidation]
	SuggestTopics(ctx context.Context, explored []string, count int) explore.Outcome[[]string]
	Model() string
}

// Embedder produces topic vectors. Optional.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ExploreService wires topic validation, AI exploration, persistence and session progress.
type ExploreService struct {
	store    Store
	orch     Orchestrator
	embedder Embedder
	logger   *slog.Logger
	now      func() time.Time

	progress [progressStripes]sync.Mutex
}

// Option configures an ExploreService.
type Option func(*ExploreService)

// WithEmbedder stores an embedding with every successfully explored topic.
func WithEmbedder(e Embedder) Option {
	return func(s *ExploreService) { s.embedder = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *ExploreService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ExploreService) { s.now = now }
}

// NewExploreService creates the exploration service.
func NewExploreService(store Store, orch Orchestrator, opts ...Option) *ExploreService {
	s := &ExploreService{
		store:  store,
		orch:   orch,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExploreRequest asks for a new trail on Topic.
type ExploreRequest struct {
	Topic     string `json:"topic"`
	SessionID string `json:"sessionId,omitempty"`
}

// DeeperRequest asks to extend the latest trail of TopicID.
type DeeperRequest struct {
	TopicID   string `json:"topicId"`
	SessionID string `json:"sessionId,omitempty"`
}

// ExploreResult is returned by Explore and ExploreDeeper.
// A degraded result carries fallback AI content and an unsaved trail.
type ExploreResult struct {
	Topic          *models.Topic          `json:"topic"`
	Trail          *models.CuriosityTrail `json:"trail"`
	AI             models.AIResponse      `json:"ai"`
	Session        *models.UserSession    `json:"session,omitempty"`
	Degraded       bool                   `json:"degraded"`
	Reason         string                 `json:"reason,omitempty"`
	ProcessingTime int64                  `json:"processingTime"`
}

// Explore validates the topic, asks the model for connections, records the topic
// and saves a new trail. Degraded AI output still counts the topic but is not
// saved as a trail.
func (s *ExploreService) Explore(ctx context.Context, req ExploreRequest) (*ExploreResult, error) {
	start := s.now()

	verdict := s.orch.ValidateTopic(ctx, req.Topic)
	if !verdict.Value.IsValid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTopic, verdict.Value.Reason)
	}
	title := verdict.Value.CleanedTopic
	if title == "" {
		title = strings.TrimSpace(req.Topic)
	}

	ai := s.orch.ExploreTopic(ctx, title)

	// Fallback text is never stored; a later healthy exploration fills these in.
	input := models.TopicInput{Title: title}
	if !ai.Degraded {
		input.Description = ai.Value.Summary
		input.Tags = ai.Value.Keywords
		if ai.Value.Difficulty.Valid() {
			input.Difficulty = ai.Value.Difficulty
		}
	}
	if s.embedder != nil && !ai.Degraded {
		emb, err := s.embedder.Embed(ctx, title+"\n"+ai.Value.Summary)
		if err != nil {
			s.logger.Warn("topic embedding failed", "topic", title, "error", err)
		} else {
			input.Embedding = emb
		}
	}

	topic, err := s.store.SaveTopic(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("explore %q: %w", title, err)
	}

	trail := buildTrail(topic, ai.Value, s.orch.Model(), s.now(), s.now().Sub(start))
	result := &ExploreResult{
		Topic:    topic,
		Trail:    trail,
		AI:       ai.Value,
		Degraded: ai.Degraded,
		Reason:   ai.Reason,
	}

	if !ai.Degraded {
		saved, err := s.store.SaveCuriosityTrail(ctx, *trail)
		if err != nil {
			return nil, fmt.Errorf("explore %q: %w", title, err)
		}
		result.Trail = saved
	}

	result.Session = s.recordProgress(ctx, req.SessionID, topic.ID, ai.Value.EstimatedReadingTime, !ai.Degraded, result.Trail.MaxDepth)
	result.ProcessingTime = s.now().Sub(start).Milliseconds()

	s.logger.Info("topic explored",
		"topic", topic.Title,
		"topic_id", topic.ID,
		"nodes", len(result.Trail.Nodes),
		"degraded", ai.Degraded,
		"duration_ms", result.ProcessingTime)
	return result, nil
}

// ExploreDeeper extends the most recent trail of a topic by one level and saves
// the result as a new trail.
func (s *ExploreService) ExploreDeeper(ctx context.Context, req DeeperRequest) (*ExploreResult, error) {
	start := s.now()

	topic := s.store.GetTopicByID(ctx, req.TopicID)
	if topic == nil {
		return nil, fmt.Errorf("%w: %s", ErrTopicNotFound, req.TopicID)
	}
	prev := s.store.GetCuriosityTrailByTopic(ctx, topic.ID)
	if prev == nil {
		return nil, fmt.Errorf("%w: topic %s", ErrTrailNotFound, topic.ID)
	}
	if prev.MaxDepth >= models.MaxTrailDepth {
		return nil, fmt.Errorf("%w (%d)", ErrTrailTooDeep, models.MaxTrailDepth)
	}

	ai := s.orch.ExploreDeeper(ctx, topic.Title, prev.Titles())
	result := &ExploreResult{
		Topic:    topic,
		Trail:    prev,
		AI:       ai.Value,
		Degraded: ai.Degraded,
		Reason:   ai.Reason,
	}

	if !ai.Degraded {
		trail := extendTrail(prev, ai.Value, s.orch.Model(), s.now(), s.now().Sub(start))
		saved, err := s.store.SaveCuriosityTrail(ctx, *trail)
		if err != nil {
			return nil, fmt.Errorf("explore deeper %q: %w", topic.Title, err)
		}
		result.Trail = saved
	}

	result.Session = s.recordProgress(ctx, req.SessionID, topic.ID, ai.Value.EstimatedReadingTime, !ai.Degraded, result.Trail.MaxDepth)
	result.ProcessingTime = s.now().Sub(start).Milliseconds()

	s.logger.Info("trail extended",
		"topic", topic.Title,
		"depth", result.Trail.MaxDepth,
		"degraded", ai.Degraded,
		"duration_ms", result.ProcessingTime)
	return result, nil
}
