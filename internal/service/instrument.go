package service

import (
	"context"
	"time"

	"github.com/akiliquest/akiliquest/internal/metrics"
	"github.com/akiliquest/akiliquest/internal/models"
)

// Instrument wraps s so every call is timed on mc.
func Instrument(s Store, mc *metrics.Collector) Store {
	if mc == nil {
		return s
	}
	return &instrumentedStore{next: s, mc: mc}
}

type instrumentedStore struct {
	next Store
	mc   *metrics.Collector
}

func (i *instrumentedStore) record(op string, start time.Time) {
	i.mc.RecordTiming(op, time.Since(start))
}

func (i *instrumentedStore) SaveTopic(ctx context.Context, in models.TopicInput) (*models.Topic, error) {
	defer i.record(metrics.OpDBWrite, time.Now())
	return i.next.SaveTopic(ctx, in)
}

func (i *instrumentedStore) GetTopicByID(ctx context.Context, id string) *models.Topic {
	defer i.record(metrics.OpDBRead, time.Now())
	return i.next.GetTopicByID(ctx, id)
}

func (i *instrumentedStore) SearchTopics(ctx context.Context, query string, limit int) []models.Topic {
	defer i.record(metrics.OpDBSearch, time.Now())
	return i.next.SearchTopics(ctx, query, limit)
}

func (i *instrumentedStore) GetPopularTopics(ctx context.Context, limit int) []models.Topic {
	defer i.record(metrics.OpDBRead, time.Now())
	return i.next.GetPopularTopics(ctx, limit)
}

func (i *instrumentedStore) SaveCuriosityTrail(ctx context.Context, trail models.CuriosityTrail) (*models.CuriosityTrail, error) {
	defer i.record(metrics.OpDBWrite, time.Now())
	return i.next.SaveCuriosityTrail(ctx, trail)
}

func (i *instrumentedStore) GetCuriosityTrailByTopic(ctx context.Context, topicID string) *models.CuriosityTrail {
	defer i.record(metrics.OpDBRead, time.Now())
	return i.next.GetCuriosityTrailByTopic(ctx, topicID)
}

func (i *instrumentedStore) GetRecentTrails(ctx context.Context, limit int) []models.CuriosityTrail {
	defer i.record(metrics.OpDBRead, time.Now())
	return i.next.GetRecentTrails(ctx, limit)
}

func (i *instrumentedStore) UpdateUserSession(ctx context.Context, u models.SessionUpdate) (*models.UserSession, error) {
	defer i.record(metrics.OpDBWrite, time.Now())
	return i.next.UpdateUserSession(ctx, u)
}

func (i *instrumentedStore) GetUserSession(ctx context.Context, id string) *models.UserSession {
	defer i.record(metrics.OpDBRead, time.Now())
	return i.next.GetUserSession(ctx, id)
}

func (i *instrumentedStore) CheckHealth(ctx context.Context) bool {
	return i.next.CheckHealth(ctx)
}

func (i *instrumentedStore) GetStats(ctx context.Context) *models.Stats {
	defer i.record(metrics.OpDBRead, time.Now())
	return i.next.GetStats(ctx)
}

func (i *instrumentedStore) Close(ctx context.Context) error {
	return i.next.Close(ctx)
}
