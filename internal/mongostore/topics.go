package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// upsertAttempts bounds retries when two first-time upserts of one key race
// on a unique index.
const upsertAttempts = 3

// SaveTopic inserts a topic or increments the exploration count of the one
// with the same title key, in a single findOneAndUpdate. Description, tags
// and difficulty left empty by an earlier save are filled from in.
func (s *Store) SaveTopic(ctx context.Context, in models.TopicInput) (*models.Topic, error) {
	now := time.Now()
	t := models.NewTopic(in, now)
	t.Title = strings.TrimSpace(t.Title)
	if err := models.ValidateTopic(&t); err != nil {
		return nil, fmt.Errorf("save topic: %w", err)
	}

	filter := bson.M{"titleKey": models.TitleKey(t.Title)}
	update := topicUpsert(t, now)
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var err error
	for attempt := 1; attempt <= upsertAttempts; attempt++ {
		var doc topicDoc
		err = s.topics.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if mongo.IsDuplicateKeyError(err) {
			s.logger.Debug("topic upsert raced, retrying", "topic", t.Title, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save topic: %w", err)
		}
		saved := doc.toModel()
		return &saved, nil
	}
	return nil, fmt.Errorf("save topic: %w", err)
}

// topicUpsert builds a pipeline update: the counter and UpdatedAt always
// change, title and createdAt are kept once set, and descriptive fields are
// filled only while they are still empty.
func topicUpsert(t models.Topic, now time.Time) mongo.Pipeline {
	set := bson.M{
		"title":            bson.M{"$ifNull": bson.A{"$title", bson.M{"$literal": t.Title}}},
		"description":      fillEmpty("description", "", t.Description),
		"tags":             fillEmpty("tags", bson.A{}, t.Tags),
		"explorationCount": bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$explorationCount", 0}}, 1}},
		"createdAt":        bson.M{"$ifNull": bson.A{"$createdAt", now}},
		"updatedAt":        now,
	}
	if t.Category != "" {
		set["category"] = fillEmpty("category", "", t.Category)
	}
	if t.Difficulty != "" {
		set["difficulty"] = fillEmpty("difficulty", "", string(t.Difficulty))
	}
	if len(t.Embedding) > 0 {
		set["embedding"] = bson.M{"$ifNull": bson.A{"$embedding", bson.M{"$literal": t.Embedding}}}
	}
	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}

// fillEmpty keeps the stored field unless it is missing, null or equal to
// empty. User text goes through $literal so a leading "$" is not a field path.
func fillEmpty(field string, empty, v any) bson.M {
	path := "$" + field
	return bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{path, empty}}, empty}},
		bson.M{"$literal": v},
		path,
	}}
}

// GetTopicByID returns the topic or nil. Ids that are not ObjectIDs match nothing.
func (s *Store) GetTopicByID(ctx context.Context, id string) *models.Topic {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	var doc topicDoc
	err = s.topics.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.logger.Warn("get topic failed", "id", id, "error", err)
		}
		return nil
	}
	t := doc.toModel()
	return &t
}

// SearchTopics runs a $text search ranked by text score. When that fails (for
// example without the text index) it falls back to a case-insensitive regex
// over title and description with the query quoted literally.
func (s *Store) SearchTopics(ctx context.Context, query string, limit int) []models.Topic {
	textOpts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}).
		SetLimit(int64(limit))
	topics, err := s.findTopics(ctx, bson.M{"$text": bson.M{"$search": query}}, textOpts)
	if err == nil {
		return topics
	}
	s.logger.Warn("text search failed, using regex match", "query", query, "error", err)

	topics, err = s.findTopics(ctx, substringFilter(query), options.Find().
		SetSort(bson.D{{Key: "explorationCount", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		s.logger.Warn("regex search failed", "query", query, "error", err)
		return []models.Topic{}
	}
	return topics
}

func substringFilter(query string) bson.M {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"title": re},
		bson.M{"description": re},
	}}
}

// GetPopularTopics lists topics by exploration count, highest first.
func (s *Store) GetPopularTopics(ctx context.Context, limit int) []models.Topic {
	opts := options.Find().
		SetSort(bson.D{{Key: "explorationCount", Value: -1}, {Key: "title", Value: 1}}).
		SetLimit(int64(limit))
	topics, err := s.findTopics(ctx, bson.D{}, opts)
	if err != nil {
		s.logger.Warn("popular topics failed", "error", err)
		return []models.Topic{}
	}
	return topics
}

func (s *Store) findTopics(ctx context.Context, filter any, opts *options.FindOptions) ([]models.Topic, error) {
	cur, err := s.topics.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []topicDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Topic, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}
