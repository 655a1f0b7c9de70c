package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// upsertAttempts bounds retries of a topic upsert that lost a transaction conflict.
const upsertAttempts = 3

// SaveTopic inserts a topic or bumps the exploration count of the existing one
// with the same title key. The record id is derived from the key, so the
// UPSERT itself is the uniqueness check. Descriptive fields that are still
// empty on the stored record are filled from in.
func (c *Client) SaveTopic(ctx context.Context, in models.TopicInput) (*models.Topic, error) {
	t := models.NewTopic(in, time.Now())
	t.Title = strings.TrimSpace(t.Title)
	if err := models.ValidateTopic(&t); err != nil {
		return nil, fmt.Errorf("save topic: %w", err)
	}

	key := models.TitleKey(t.Title)
	sets := []string{
		"title = title ?? $title",
		"title_key = $key",
		fillEmpty("description"),
		fillEmpty("tags"),
		"exploration_count = (exploration_count ?? 0) + 1",
		"created_at = created_at ?? time::now()",
		"updated_at = time::now()",
	}
	vars := map[string]any{
		"id":          topicRecordID(key),
		"key":         key,
		"title":       t.Title,
		"description": t.Description,
		"tags":        t.Tags,
	}
	if t.Category != "" {
		sets = append(sets, fillEmpty("category"))
		vars["category"] = t.Category
	}
	if t.Difficulty != "" {
		sets = append(sets, fillEmpty("difficulty"))
		vars["difficulty"] = string(t.Difficulty)
	}
	if len(t.Embedding) > 0 {
		sets = append(sets, "embedding = embedding ?? $embedding")
		vars["embedding"] = t.Embedding
	}
	sql := fmt.Sprintf(`UPSERT type::record("topic", $id) SET %s RETURN AFTER`, strings.Join(sets, ", "))

	var err error
	for attempt := 1; attempt <= upsertAttempts; attempt++ {
		var results *[]surrealdb.QueryResult[[]topicRow]
		results, err = surrealdb.Query[[]topicRow](ctx, c.db, sql, vars)
		err = wrapQueryError(err)
		if errors.Is(err, ErrTransactionConflict) {
			c.logger.Debug("topic upsert conflict, retrying", "topic", t.Title, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save topic: %w", err)
		}
		if results == nil || len(*results) == 0 {
			return nil, fmt.Errorf("save topic: %w", ErrNoResult)
		}
		row := firstRow((*results)[0].Result)
		if row == nil {
			return nil, fmt.Errorf("save topic: %w", ErrNoResult)
		}
		saved := row.toModel()
		return &saved, nil
	}
	return nil, fmt.Errorf("save topic: %w", err)
}

// fillEmpty keeps a stored field unless it is NONE, NULL, "" or [].
func fillEmpty(field string) string {
	return fmt.Sprintf("%[1]s = IF %[1]s THEN %[1]s ELSE $%[1]s END", field)
}

// GetTopicByID returns the topic or nil.
func (c *Client) GetTopicByID(ctx context.Context, id string) *models.Topic {
	results, err := surrealdb.Query[[]topicRow](ctx, c.db, `
		SELECT * FROM type::record("topic", $id)
	`, map[string]any{"id": id})
	if err != nil {
		c.logger.Warn("get topic failed", "id", id, "error", err)
		return nil
	}
	if results == nil || len(*results) == 0 {
		return nil
	}
	row := firstRow((*results)[0].Result)
	if row == nil {
		return nil
	}
	t := row.toModel()
	return &t
}

// SearchTopics ranks topics with BM25 over title and description. When the
// full-text query fails it falls back to a case-insensitive substring match.
func (c *Client) SearchTopics(ctx context.Context, query string, limit int) []models.Topic {
	vars := map[string]any{"q": query, "limit": limit}
	topics, err := c.queryTopics(ctx, `
		SELECT *, (search::score(0) ?? 0) + (search::score(1) ?? 0) AS score
		FROM topic
		WHERE title @0@ $q OR description @1@ $q
		ORDER BY score DESC
		LIMIT $limit
	`, vars)
	if err == nil {
		return topics
	}
	c.logger.Warn("full-text search failed, using substring match", "query", query, "error", err)

	// string::contains matches literally, so the query needs no escaping.
	vars["q"] = strings.ToLower(query)
	topics, err = c.queryTopics(ctx, `
		SELECT * FROM topic
		WHERE string::contains(string::lowercase(title), $q)
			OR string::contains(string::lowercase(description), $q)
		ORDER BY exploration_count DESC
		LIMIT $limit
	`, vars)
	if err != nil {
		c.logger.Warn("substring search failed", "query", query, "error", err)
		return []models.Topic{}
	}
	return topics
}

// GetPopularTopics lists topics by exploration count, highest first.
func (c *Client) GetPopularTopics(ctx context.Context, limit int) []models.Topic {
	topics, err := c.queryTopics(ctx, `
		SELECT * FROM topic ORDER BY exploration_count DESC, title ASC LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		c.logger.Warn("popular topics failed", "error", err)
		return []models.Topic{}
	}
	return topics
}

func (c *Client) queryTopics(ctx context.Context, sql string, vars map[string]any) ([]models.Topic, error) {
	results, err := surrealdb.Query[[]topicRow](ctx, c.db, sql, vars)
	if err != nil {
		return nil, err
	}
	out := []models.Topic{}
	if results == nil || len(*results) == 0 {
		return out, nil
	}
	for _, row := range (*results)[0].Result {
		out = append(out, row.toModel())
	}
	return out, nil
}
