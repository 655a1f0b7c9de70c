// Package service provides the AkiliQuest exploration flow on top of a Store and the AI orchestrator.
package service

import (
	"context"

	"github.com/akiliquest/akiliquest/internal/models"
)

// Default result caps for list operations.
const (
	DefaultSearchLimit  = 10
	DefaultPopularLimit = 20
	DefaultRecentLimit  = 10
	MaxListLimit        = 100
)

// Store persists topics, curiosity trails and user sessions.
//
// Reads never fail: a missing record or a backend error yields nil or an empty
// slice and the backend logs a warning. Writes return wrapped errors, and shape
// violations wrap models.ErrInvalidShape.
type Store interface {
	// SaveTopic atomically inserts the topic or, when a topic with the same
	// title in any casing exists, increments its exploration count.
	SaveTopic(ctx context.Context, in models.TopicInput) (*models.Topic, error)
	GetTopicByID(ctx context.Context, id string) *models.Topic
	// SearchTopics runs ranked full-text search, falling back to a
	// case-insensitive substring match over title and description.
	SearchTopics(ctx context.Context, query string, limit int) []models.Topic
	GetPopularTopics(ctx context.Context, limit int) []models.Topic

	SaveCuriosityTrail(ctx context.Context, trail models.CuriosityTrail) (*models.CuriosityTrail, error)
	// GetCuriosityTrailByTopic returns the most recently generated trail.
	GetCuriosityTrailByTopic(ctx context.Context, topicID string) *models.CuriosityTrail
	GetRecentTrails(ctx context.Context, limit int) []models.CuriosityTrail

	// UpdateUserSession upserts by session id, merging supplied fields and
	// refreshing LastActiveAt.
	UpdateUserSession(ctx context.Context, u models.SessionUpdate) (*models.UserSession, error)
	GetUserSession(ctx context.Context, id string) *models.UserSession

	CheckHealth(ctx context.Context) bool
	GetStats(ctx context.Context) *models.Stats
	Close(ctx context.Context) error
}

// clampLimit applies def to non-positive limits and caps at MaxListLimit.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, MaxListLimit)
}
