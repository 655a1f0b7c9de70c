package db

import (
	"context"
	"fmt"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
)

// SaveCuriosityTrail appends a trail under a fresh record id.
func (c *Client) SaveCuriosityTrail(ctx context.Context, trail models.CuriosityTrail) (*models.CuriosityTrail, error) {
	if err := models.ValidateTrail(&trail); err != nil {
		return nil, fmt.Errorf("save curiosity trail: %w", err)
	}
	if trail.GeneratedAt.IsZero() {
		trail.GeneratedAt = time.Now()
	}

	results, err := surrealdb.Query[[]trailRow](ctx, c.db, `
		CREATE type::record("trail", $id) SET
			topic_id = $topic_id,
			topic = $topic,
			summary = $summary,
			nodes = $nodes,
			total_connections = $total_connections,
			max_depth = $max_depth,
			generated_at = type::datetime($generated_at),
			ai_model = $ai_model,
			processing_time = $processing_time
		RETURN AFTER
	`, map[string]any{
		"id":                uuid.NewString(),
		"topic_id":          trail.TopicID,
		"topic":             trail.Topic,
		"summary":           trail.Summary,
		"nodes":             trail.Nodes,
		"total_connections": trail.TotalConnections,
		"max_depth":         trail.MaxDepth,
		"generated_at":      trail.GeneratedAt.UTC().Format(time.RFC3339Nano),
		"ai_model":          trail.AIModel,
		"processing_time":   trail.ProcessingTime,
	})
	if err != nil {
		return nil, fmt.Errorf("save curiosity trail: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return nil, fmt.Errorf("save curiosity trail: %w", ErrNoResult)
	}
	row := firstRow((*results)[0].Result)
	if row == nil {
		return nil, fmt.Errorf("save curiosity trail: %w", ErrNoResult)
	}
	saved := row.toModel()
	return &saved, nil
}

// GetCuriosityTrailByTopic returns the most recently generated trail of a topic, or nil.
func (c *Client) GetCuriosityTrailByTopic(ctx context.Context, topicID string) *models.CuriosityTrail {
	trails, err := c.queryTrails(ctx, `
		SELECT * FROM trail WHERE topic_id = $topic_id ORDER BY generated_at DESC LIMIT 1
	`, map[string]any{"topic_id": topicID})
	if err != nil {
		c.logger.Warn("get trail failed", "topic_id", topicID, "error", err)
		return nil
	}
	return firstRow(trails)
}

// GetRecentTrails lists trails newest first.
func (c *Client) GetRecentTrails(ctx context.Context, limit int) []models.CuriosityTrail {
	trails, err := c.queryTrails(ctx, `
		SELECT * FROM trail ORDER BY generated_at DESC LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		c.logger.Warn("recent trails failed", "error", err)
		return []models.CuriosityTrail{}
	}
	return trails
}

func (c *Client) queryTrails(ctx context.Context, sql string, vars map[string]any) ([]models.CuriosityTrail, error) {
	results, err := surrealdb.Query[[]trailRow](ctx, c.db, sql, vars)
	if err != nil {
		return nil, err
	}
	out := []models.CuriosityTrail{}
	if results == nil || len(*results) == 0 {
		return out, nil
	}
	for _, row := range (*results)[0].Result {
		out = append(out, row.toModel())
	}
	return out, nil
}
