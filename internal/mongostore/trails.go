package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SaveCuriosityTrail inserts a new trail document.
func (s *Store) SaveCuriosityTrail(ctx context.Context, trail models.CuriosityTrail) (*models.CuriosityTrail, error) {
	if err := models.ValidateTrail(&trail); err != nil {
		return nil, fmt.Errorf("save curiosity trail: %w", err)
	}
	if trail.GeneratedAt.IsZero() {
		trail.GeneratedAt = time.Now()
	}

	doc := newTrailDoc(trail)
	res, err := s.trails.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("save curiosity trail: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	saved := doc.toModel()
	return &saved, nil
}

// GetCuriosityTrailByTopic returns the most recently generated trail of a topic, or nil.
func (s *Store) GetCuriosityTrailByTopic(ctx context.Context, topicID string) *models.CuriosityTrail {
	opts := options.FindOne().SetSort(bson.D{{Key: "generatedAt", Value: -1}})
	var doc trailDoc
	err := s.trails.FindOne(ctx, bson.M{"topicId": topicID}, opts).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.logger.Warn("get trail failed", "topic_id", topicID, "error", err)
		}
		return nil
	}
	t := doc.toModel()
	return &t
}

// GetRecentTrails lists trails newest first.
func (s *Store) GetRecentTrails(ctx context.Context, limit int) []models.CuriosityTrail {
	opts := options.Find().
		SetSort(bson.D{{Key: "generatedAt", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.trails.Find(ctx, bson.D{}, opts)
	if err != nil {
		s.logger.Warn("recent trails failed", "error", err)
		return []models.CuriosityTrail{}
	}
	var docs []trailDoc
	if err := cur.All(ctx, &docs); err != nil {
		s.logger.Warn("recent trails decode failed", "error", err)
		return []models.CuriosityTrail{}
	}
	out := make([]models.CuriosityTrail, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out
}
