//go:build integration

package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *Client

// TestMain starts one SurrealDB container for the package.
func TestMain(m *testing.M) {
	// Ryuk can fail in some CI environments.
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v2.3.7",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("start SurrealDB container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("container host: %v", err)
	}
	if host == "" || host == "null" {
		host = "localhost"
	}
	port, err := container.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, port.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("init schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func wipe(t *testing.T) context.Context {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, testDB.WipeData(ctx))
	return ctx
}

func TestSaveTopicUpsert(t *testing.T) {
	ctx := wipe(t)

	first, err := testDB.SaveTopic(ctx, models.TopicInput{Title: "Jazz", Description: "music", Tags: []string{"music"}, Difficulty: models.DifficultyBeginner})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ExplorationCount)

	_, err = testDB.SaveTopic(ctx, models.TopicInput{Title: "JAZZ", Description: "other"})
	require.NoError(t, err)
	third, err := testDB.SaveTopic(ctx, models.TopicInput{Title: "jazz"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, 3, third.ExplorationCount)
	assert.Equal(t, "Jazz", third.Title)
	assert.Equal(t, "music", third.Description)
	assert.Equal(t, models.DifficultyBeginner, third.Difficulty)
	assert.Equal(t, first.CreatedAt.Unix(), third.CreatedAt.Unix())
	assert.False(t, third.UpdatedAt.Before(first.UpdatedAt))

	got := testDB.GetTopicByID(ctx, first.ID)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.ExplorationCount)
	assert.Nil(t, testDB.GetTopicByID(ctx, "missing"))
}

func TestSaveTopicFillsEmptyFields(t *testing.T) {
	ctx := wipe(t)

	first, err := testDB.SaveTopic(ctx, models.TopicInput{Title: "Tides"})
	require.NoError(t, err)
	assert.Empty(t, first.Description)

	second, err := testDB.SaveTopic(ctx, models.TopicInput{
		Title:       "tides",
		Description: "$how the moon moves the sea",
		Tags:        []string{"ocean"},
		Difficulty:  models.DifficultyBeginner,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "$how the moon moves the sea", second.Description)
	assert.Equal(t, []string{"ocean"}, second.Tags)
	assert.Equal(t, models.DifficultyBeginner, second.Difficulty)

	third, err := testDB.SaveTopic(ctx, models.TopicInput{Title: "TIDES", Description: "other", Tags: []string{"x"}, Difficulty: models.DifficultyAdvanced})
	require.NoError(t, err)
	assert.Equal(t, "$how the moon moves the sea", third.Description)
	assert.Equal(t, []string{"ocean"}, third.Tags)
	assert.Equal(t, models.DifficultyBeginner, third.Difficulty)
	assert.Equal(t, 3, third.ExplorationCount)
}

func TestSaveTopicConcurrent(t *testing.T) {
	ctx := wipe(t)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := testDB.SaveTopic(ctx, models.TopicInput{Title: "Coral Reefs"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	popular := testDB.GetPopularTopics(ctx, 5)
	require.Len(t, popular, 1)
	assert.Equal(t, 10, popular[0].ExplorationCount)
}

func TestSearchTopics(t *testing.T) {
	ctx := wipe(t)
	for _, in := range []models.TopicInput{
		{Title: "Black Holes", Description: "Regions where gravity traps light"},
		{Title: "Supermassive Black Holes", Description: "Giants at galaxy centers"},
		{Title: "Jazz", Description: "Improvised music"},
	} {
		_, err := testDB.SaveTopic(ctx, in)
		require.NoError(t, err)
	}

	results := testDB.SearchTopics(ctx, "black holes", 5)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 5)
	for _, r := range results {
		assert.NotEqual(t, "Jazz", r.Title)
	}
}

func TestTrails(t *testing.T) {
	ctx := wipe(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trail := func(at time.Time) models.CuriosityTrail {
		return models.CuriosityTrail{
			TopicID: "t1",
			Topic:   "Jazz",
			Summary: "s",
			Nodes: []models.CuriosityNode{
				{ID: "root", Title: "Jazz", NodeType: models.NodeConcept, Confidence: 1, Connections: []string{"n1"}},
				{ID: "n1", Title: "Blues", Level: 1, NodeType: models.NodeConnection, Confidence: 0.8, Connections: []string{}},
			},
			TotalConnections: 1,
			MaxDepth:         1,
			GeneratedAt:      at,
			AIModel:          "m",
		}
	}

	_, err := testDB.SaveCuriosityTrail(ctx, trail(base.Add(time.Hour)))
	require.NoError(t, err)
	newest, err := testDB.SaveCuriosityTrail(ctx, trail(base.Add(3*time.Hour)))
	require.NoError(t, err)
	_, err = testDB.SaveCuriosityTrail(ctx, trail(base.Add(2*time.Hour)))
	require.NoError(t, err)

	latest := testDB.GetCuriosityTrailByTopic(ctx, "t1")
	require.NotNil(t, latest)
	assert.Equal(t, newest.ID, latest.ID)
	require.Len(t, latest.Nodes, 2)
	assert.Equal(t, []string{"n1"}, latest.Nodes[0].Connections)
	assert.Equal(t, models.NodeConnection, latest.Nodes[1].NodeType)

	assert.Len(t, testDB.GetRecentTrails(ctx, 2), 2)
	assert.Nil(t, testDB.GetCuriosityTrailByTopic(ctx, "none"))
}

func TestUserSessionUpsert(t *testing.T) {
	ctx := wipe(t)

	first, err := testDB.UpdateUserSession(ctx, models.SessionUpdate{SessionID: "abc"})
	require.NoError(t, err)
	assert.Empty(t, first.TopicsExplored)

	time.Sleep(10 * time.Millisecond)
	trails := 1
	second, err := testDB.UpdateUserSession(ctx, models.SessionUpdate{SessionID: "abc", TrailsGenerated: &trails})
	require.NoError(t, err)

	assert.Equal(t, 1, second.TrailsGenerated)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.LastActiveAt.After(first.LastActiveAt))

	got := testDB.GetUserSession(ctx, "abc")
	require.NotNil(t, got)
	assert.Equal(t, 1, got.TrailsGenerated)
}

func TestHealthAndStats(t *testing.T) {
	ctx := wipe(t)
	assert.True(t, testDB.CheckHealth(ctx))

	_, err := testDB.SaveTopic(ctx, models.TopicInput{Title: "Bees"})
	require.NoError(t, err)

	stats := testDB.GetStats(ctx)
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.Topics)
	assert.Zero(t, stats.Trails)
}
