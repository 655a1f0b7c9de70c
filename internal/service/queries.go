package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/akiliquest/akiliquest/internal/explore"
	"github.com/akiliquest/akiliquest/internal/models"
)

// recentHistory bounds how many explored topics feed a suggestion prompt.
const recentHistory = 10

// Validate checks a raw topic input.
func (s *ExploreService) Validate(ctx context.Context, input string) explore.Outcome[models.TopicValidation] {
	return s.orch.ValidateTopic(ctx, input)
}

// Suggest proposes count topics, avoiding explored and the titles already in the session.
func (s *ExploreService) Suggest(ctx context.Context, sessionID string, explored []string, count int) explore.Outcome[[]string] {
	history := append([]string{}, explored...)
	if sessionID != "" {
		if sess := s.store.GetUserSession(ctx, sessionID); sess != nil {
			ids := sess.TopicsExplored
			if len(ids) > recentHistory {
				ids = ids[len(ids)-recentHistory:]
			}
			for _, id := range ids {
				if t := s.store.GetTopicByID(ctx, id); t != nil && !models.ContainsFold(history, t.Title) {
					history = append(history, t.Title)
				}
			}
		}
	}
	return s.orch.SuggestTopics(ctx, history, count)
}

// Search finds topics matching query. A blank query matches nothing.
func (s *ExploreService) Search(ctx context.Context, query string, limit int) []models.Topic {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Topic{}
	}
	return s.store.SearchTopics(ctx, query, clampLimit(limit, DefaultSearchLimit))
}

// Popular lists the most explored topics.
func (s *ExploreService) Popular(ctx context.Context, limit int) []models.Topic {
	return s.store.GetPopularTopics(ctx, clampLimit(limit, DefaultPopularLimit))
}

// RecentTrails lists the newest trails across all topics.
func (s *ExploreService) RecentTrails(ctx context.Context, limit int) []models.CuriosityTrail {
	return s.store.GetRecentTrails(ctx, clampLimit(limit, DefaultRecentLimit))
}

// Topic returns one topic.
func (s *ExploreService) Topic(ctx context.Context, id string) (*models.Topic, error) {
	t := s.store.GetTopicByID(ctx, id)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTopicNotFound, id)
	}
	return t, nil
}

// Trail returns the latest trail of a topic.
func (s *ExploreService) Trail(ctx context.Context, topicID string) (*models.CuriosityTrail, error) {
	t := s.store.GetCuriosityTrailByTopic(ctx, topicID)
	if t == nil {
		return nil, fmt.Errorf("%w: topic %s", ErrTrailNotFound, topicID)
	}
	return t, nil
}

// Export renders the latest trail of a topic and returns it with its download file name.
func (s *ExploreService) Export(ctx context.Context, topicID string, format models.ExportFormat) ([]byte, string, error) {
	trail, err := s.Trail(ctx, topicID)
	if err != nil {
		return nil, "", err
	}
	data, err := models.NewTrailExport(trail, s.now()).Encode(format)
	if err != nil {
		return nil, "", fmt.Errorf("export trail: %w", err)
	}
	if format == "" {
		format = models.ExportJSON
	}
	return data, models.ExportFileName(trail.Topic, format), nil
}

// UpdateSession applies a partial session write.
func (s *ExploreService) UpdateSession(ctx context.Context, u models.SessionUpdate) (*models.UserSession, error) {
	u.SessionID = strings.TrimSpace(u.SessionID)
	if u.SessionID == "" {
		return nil, ErrMissingSessionID
	}
	return s.store.UpdateUserSession(ctx, u)
}

// Session returns one session.
func (s *ExploreService) Session(ctx context.Context, id string) (*models.UserSession, error) {
	sess := s.store.GetUserSession(ctx, id)
	if sess == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Health reports store liveness.
func (s *ExploreService) Health(ctx context.Context) bool {
	return s.store.CheckHealth(ctx)
}

// Stats returns store counts, or nil when they cannot be read.
func (s *ExploreService) Stats(ctx context.Context) *models.Stats {
	return s.store.GetStats(ctx)
}

// Model returns the configured AI model identifier.
func (s *ExploreService) Model() string {
	return s.orch.Model()
}
