package cli

import (
	"context"
	"errors"

	"github.com/akiliquest/akiliquest/internal/client"
	"github.com/akiliquest/akiliquest/internal/explore"
	"github.com/akiliquest/akiliquest/internal/metrics"
	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/akiliquest/akiliquest/internal/service"
)

// backend is what the commands run against: the service in-process, or a
// remote server through client.Client.
type backend interface {
	Explore(ctx context.Context, req service.ExploreRequest) (*service.ExploreResult, error)
	ExploreDeeper(ctx context.Context, req service.DeeperRequest) (*service.ExploreResult, error)
	Validate(ctx context.Context, input string) (explore.Outcome[models.TopicValidation], error)
	Suggest(ctx context.Context, sessionID string, explored []string, count int) (explore.Outcome[[]string], error)
	Search(ctx context.Context, query string, limit int) ([]models.Topic, error)
	Popular(ctx context.Context, limit int) ([]models.Topic, error)
	RecentTrails(ctx context.Context, limit int) ([]models.CuriosityTrail, error)
	Topic(ctx context.Context, id string) (*models.Topic, error)
	Trail(ctx context.Context, topicID string) (*models.CuriosityTrail, error)
	Export(ctx context.Context, topicID string, format models.ExportFormat) ([]byte, string, error)
	UpdateSession(ctx context.Context, u models.SessionUpdate) (*models.UserSession, error)
	Session(ctx context.Context, id string) (*models.UserSession, error)
	Health(ctx context.Context) (*client.Health, error)
	Stats(ctx context.Context) (*client.Stats, error)
}

var _ backend = (*client.Client)(nil)

var errStatsUnavailable = errors.New("statistics are unavailable")

// localBackend adapts the in-process service to backend.
type localBackend struct {
	svc     *service.ExploreService
	metrics *metrics.Collector
	version string
}

func (l *localBackend) Explore(ctx context.Context, req service.ExploreRequest) (*service.ExploreResult, error) {
	return l.svc.Explore(ctx, req)
}

func (l *localBackend) ExploreDeeper(ctx context.Context, req service.DeeperRequest) (*service.ExploreResult, error) {
	return l.svc.ExploreDeeper(ctx, req)
}

func (l *localBackend) Validate(ctx context.Context, input string) (explore.Outcome[models.TopicValidation], error) {
	return l.svc.Validate(ctx, input), nil
}

func (l *localBackend) Suggest(ctx context.Context, sessionID string, explored []string, count int) (explore.Outcome[[]string], error) {
	return l.svc.Suggest(ctx, sessionID, explored, count), nil
}

func (l *localBackend) Search(ctx context.Context, query string, limit int) ([]models.Topic, error) {
	return l.svc.Search(ctx, query, limit), nil
}

func (l *localBackend) Popular(ctx context.Context, limit int) ([]models.Topic, error) {
	return l.svc.Popular(ctx, limit), nil
}

func (l *localBackend) RecentTrails(ctx context.Context, limit int) ([]models.CuriosityTrail, error) {
	return l.svc.RecentTrails(ctx, limit), nil
}

func (l *localBackend) Topic(ctx context.Context, id string) (*models.Topic, error) {
	return l.svc.Topic(ctx, id)
}

func (l *localBackend) Trail(ctx context.Context, topicID string) (*models.CuriosityTrail, error) {
	return l.svc.Trail(ctx, topicID)
}

func (l *localBackend) Export(ctx context.Context, topicID string, format models.ExportFormat) ([]byte, string, error) {
	return l.svc.Export(ctx, topicID, format)
}

func (l *localBackend) UpdateSession(ctx context.Context, u models.SessionUpdate) (*models.UserSession, error) {
	return l.svc.UpdateSession(ctx, u)
}

func (l *localBackend) Session(ctx context.Context, id string) (*models.UserSession, error) {
	return l.svc.Session(ctx, id)
}

func (l *localBackend) Health(ctx context.Context) (*client.Health, error) {
	h := &client.Health{
		Status:   "healthy",
		Database: l.svc.Health(ctx),
		Model:    l.svc.Model(),
		Version:  l.version,
	}
	if !h.Database {
		h.Status = "unhealthy"
	}
	return h, nil
}

func (l *localBackend) Stats(ctx context.Context) (*client.Stats, error) {
	st := l.svc.Stats(ctx)
	if st == nil {
		return nil, errStatsUnavailable
	}
	out := &client.Stats{Store: *st}
	if l.metrics != nil {
		snap := l.metrics.Snapshot()
		out.Runtime = &snap
	}
	return out, nil
}
