package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akiliquest/akiliquest/internal/client"
	"github.com/akiliquest/akiliquest/internal/explore"
	"github.com/akiliquest/akiliquest/internal/llm"
	"github.com/akiliquest/akiliquest/internal/memstore"
	"github.com/akiliquest/akiliquest/internal/metrics"
	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/akiliquest/akiliquest/internal/server"
	"github.com/akiliquest/akiliquest/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedGenerator struct{}

func (cannedGenerator) Generate(_ context.Context, prompt string, _ llm.Options) (string, error) {
	switch {
	case strings.Contains(prompt, "sensible topic"):
		return `{"isValid": true, "cleanedTopic": "Coral Reefs", "suggestions": []}`, nil
	case strings.Contains(prompt, "Suggest"):
		return `["Kelp Forests", "Plankton"]`, nil
	case strings.Contains(prompt, "Go deeper"):
		return connections("Deep link")
	}
	return connections("Link")
}

func connections(prefix string) (string, error) {
	conns := make([]models.Connection, 5)
	for i := range conns {
		conns[i] = models.Connection{
			Title:        fmt.Sprintf("%s %d", prefix, i+1),
			Description:  "d",
			Relationship: "related",
			Confidence:   0.6,
		}
	}
	data, err := json.Marshal(models.AIResponse{
		Summary:              "Reefs",
		Connections:          conns,
		Keywords:             []string{"ocean"},
		Difficulty:           models.DifficultyBeginner,
		EstimatedReadingTime: 2,
	})
	return string(data), err
}

func (cannedGenerator) Name() string { return "canned" }

func newClient(t *testing.T) *client.Client {
	t.Helper()
	mc := metrics.NewCollector()
	orch := explore.New(cannedGenerator{}, explore.WithTimeout(time.Second), explore.WithBreakerFailures(0))
	svc := service.NewExploreService(memstore.New(), orch)
	srv := server.New(svc,
		server.WithMetrics(mc),
		server.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return client.New(ts.URL + "/")
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	res, err := c.Explore(ctx, service.ExploreRequest{Topic: "coral reefs", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "Coral Reefs", res.Topic.Title)
	require.Len(t, res.Trail.Nodes, 6)

	deeper, err := c.ExploreDeeper(ctx, service.DeeperRequest{TopicID: res.Topic.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, deeper.Trail.MaxDepth)

	topic, err := c.Topic(ctx, res.Topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, topic.ExplorationCount)

	trail, err := c.Trail(ctx, res.Topic.ID)
	require.NoError(t, err)
	assert.Equal(t, deeper.Trail.ID, trail.ID)

	found, err := c.Search(ctx, "coral", 5)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	popular, err := c.Popular(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, popular, 1)

	recent, err := c.RecentTrails(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	data, name, err := c.Export(ctx, res.Topic.ID, models.ExportYAML)
	require.NoError(t, err)
	assert.Equal(t, "Coral_Reefs_curiosity_trail.yaml", name)
	assert.Contains(t, string(data), "topic: Coral Reefs")
}

func TestValidateSuggestAndSessions(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	verdict, err := c.Validate(ctx, "coral reefs")
	require.NoError(t, err)
	assert.True(t, verdict.Value.IsValid)
	assert.False(t, verdict.Degraded)

	tooShort, err := c.Validate(ctx, "x")
	require.NoError(t, err)
	assert.False(t, tooShort.Value.IsValid)

	ideas, err := c.Suggest(ctx, "", []string{"Coral Reefs"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kelp Forests", "Plankton"}, ideas.Value)

	score := 40
	sess, err := c.UpdateSession(ctx, models.SessionUpdate{SessionID: "abc", CuriosityScore: &score})
	require.NoError(t, err)
	assert.Equal(t, 40, sess.CuriosityScore)

	got, err := c.Session(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 40, got.CuriosityScore)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "canned", health.Model)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Store.Sessions)
	require.NotNil(t, stats.Runtime)
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.Topic(ctx, "missing")
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))

	_, err = c.Explore(ctx, service.ExploreRequest{Topic: "x"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, server.CodeBadRequest, apiErr.Code)
	assert.Contains(t, apiErr.Message, "invalid topic")

	_, _, err = c.Export(ctx, "missing", models.ExportJSON)
	assert.True(t, client.IsNotFound(err))

	_, err = c.Search(ctx, " ", 5)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestUnreachableServer(t *testing.T) {
	c := client.New("http://127.0.0.1:1")
	_, err := c.Popular(context.Background(), 5)
	require.Error(t, err)
	assert.False(t, client.IsNotFound(err))
}
