// Package mongostore is the MongoDB backend of the exploration store.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"
)

// ErrMissingURI is returned by Connect when no connection string is configured.
var ErrMissingURI = errors.New("mongodb uri is not configured")

// Collection names.
const (
	collTopics   = "topics"
	collTrails   = "trails"
	collSessions = "user_sessions"
)

// Connection limits.
const (
	maxPoolSize            = 10
	serverSelectionTimeout = 5 * time.Second
	socketTimeout          = 45 * time.Second
)

// Config holds MongoDB connection configuration.
type Config struct {
	URI      string
	Database string
}

// Store implements the exploration store on MongoDB.
type Store struct {
	client   *mongo.Client
	topics   *mongo.Collection
	trails   *mongo.Collection
	sessions *mongo.Collection
	logger   *slog.Logger
}

// Connect opens the client, verifies it with a ping and ensures indexes.
// Index failures are logged and do not fail the connect.
func Connect(ctx context.Context, cfg Config, log *slog.Logger) (*Store, error) {
	if cfg.URI == "" {
		return nil, ErrMissingURI
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.Database == "" {
		cfg.Database = "akiliquest"
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(maxPoolSize).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetSocketTimeout(socketTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:   client,
		topics:   db.Collection(collTopics),
		trails:   db.Collection(collTrails),
		sessions: db.Collection(collSessions),
		logger:   log,
	}
	s.ensureIndexes(ctx)
	log.Info("MongoDB connection established", "database", cfg.Database)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) {
	indexSets := []struct {
		coll    *mongo.Collection
		indexes []mongo.IndexModel
	}{
		{s.topics, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "titleKey", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("title_key_unique"),
			},
			{
				Keys: bson.D{
					{Key: "title", Value: "text"},
					{Key: "description", Value: "text"},
					{Key: "tags", Value: "text"},
				},
				Options: options.Index().SetName("topic_text").SetWeights(bson.D{{Key: "title", Value: 3}, {Key: "tags", Value: 2}}),
			},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "difficulty", Value: 1}}},
			{Keys: bson.D{{Key: "explorationCount", Value: -1}}},
		}},
		{s.trails, []mongo.IndexModel{
			{Keys: bson.D{{Key: "topicId", Value: 1}}},
			{Keys: bson.D{{Key: "generatedAt", Value: -1}}},
		}},
		{s.sessions, []mongo.IndexModel{
			{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
	}
	for _, ix := range indexSets {
		if _, err := ix.coll.Indexes().CreateMany(ctx, ix.indexes); err != nil {
			s.logger.Warn("create indexes failed", "collection", ix.coll.Name(), "error", err)
		}
	}
}

// CheckHealth pings the primary.
func (s *Store) CheckHealth(ctx context.Context) bool {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		return false
	}
	return true
}

// GetStats counts the three collections concurrently. Returns nil on failure.
func (s *Store) GetStats(ctx context.Context) *models.Stats {
	stats := &models.Stats{}
	g, gctx := errgroup.WithContext(ctx)
	for coll, dst := range map[*mongo.Collection]*int64{
		s.topics:   &stats.Topics,
		s.trails:   &stats.Trails,
		s.sessions: &stats.Sessions,
	} {
		g.Go(func() error {
			n, err := coll.CountDocuments(gctx, bson.D{})
			if err != nil {
				return fmt.Errorf("count %s: %w", coll.Name(), err)
			}
			*dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("stats failed", "error", err)
		return nil
	}
	stats.Timestamp = time.Now()
	return stats
}

// WipeData deletes all documents while keeping the indexes. Tests only.
func (s *Store) WipeData(ctx context.Context) error {
	s.logger.Warn("wiping all data from database")
	for _, coll := range []*mongo.Collection{s.trails, s.sessions, s.topics} {
		if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("delete %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	s.logger.Info("closing MongoDB connection")
	return s.client.Disconnect(ctx)
}

