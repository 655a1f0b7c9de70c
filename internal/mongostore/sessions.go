package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpdateUserSession upserts a session keyed by its id. Racing first writes
// of one id are retried like SaveTopic.
func (s *Store) UpdateUserSession(ctx context.Context, u models.SessionUpdate) (*models.UserSession, error) {
	if u.SessionID == "" {
		return nil, fmt.Errorf("update user session: empty session id")
	}
	filter := bson.M{"sessionId": u.SessionID}
	update := sessionUpdate(u, time.Now())
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var err error
	for attempt := 1; attempt <= upsertAttempts; attempt++ {
		var doc sessionDoc
		err = s.sessions.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if mongo.IsDuplicateKeyError(err) {
			s.logger.Debug("session upsert raced, retrying", "session", u.SessionID, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update user session: %w", err)
		}
		sess := doc.toModel()
		return &sess, nil
	}
	return nil, fmt.Errorf("update user session: %w", err)
}

// sessionUpdate puts supplied fields in $set and seeds the missing ones in
// $setOnInsert. A field never appears in both.
func sessionUpdate(u models.SessionUpdate, now time.Time) bson.M {
	set := bson.M{"lastActiveAt": now}
	onInsert := bson.M{"createdAt": now}

	list := func(field string, v []string) {
		if v != nil {
			set[field] = v
		} else {
			onInsert[field] = []string{}
		}
	}
	counter := func(field string, v *int) {
		if v != nil {
			set[field] = *v
		} else {
			onInsert[field] = 0
		}
	}

	list("topicsExplored", u.TopicsExplored)
	counter("trailsGenerated", u.TrailsGenerated)
	counter("totalExplorationTime", u.TotalExplorationTime)
	counter("curiosityScore", u.CuriosityScore)
	list("achievements", u.Achievements)

	return bson.M{"$set": set, "$setOnInsert": onInsert}
}

// GetUserSession returns the session or nil.
func (s *Store) GetUserSession(ctx context.Context, id string) *models.UserSession {
	var doc sessionDoc
	err := s.sessions.FindOne(ctx, bson.M{"sessionId": id}).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.logger.Warn("get session failed", "session", id, "error", err)
		}
		return nil
	}
	sess := doc.toModel()
	return &sess
}
