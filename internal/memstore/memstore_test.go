package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/akiliquest/akiliquest/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ service.Store = (*Store)(nil)

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func trailFor(topicID, topic string, at time.Time) models.CuriosityTrail {
	return models.CuriosityTrail{
		TopicID: topicID,
		Topic:   topic,
		Summary: "summary of " + topic,
		Nodes: []models.CuriosityNode{
			{ID: "root", Title: topic, NodeType: models.NodeConcept, Confidence: 1, Connections: []string{}},
		},
		GeneratedAt: at,
	}
}

func TestSaveTopicCaseInsensitiveUpsert(t *testing.T) {
	ctx := context.Background()
	s := New(WithClock(stepClock()))

	first, err := s.SaveTopic(ctx, models.TopicInput{Title: "Jazz", Description: "music", Tags: []string{"music"}})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ExplorationCount)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	_, err = s.SaveTopic(ctx, models.TopicInput{Title: "JAZZ", Description: "ignored"})
	require.NoError(t, err)
	third, err := s.SaveTopic(ctx, models.TopicInput{Title: "jazz"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, 3, third.ExplorationCount)
	assert.Equal(t, "Jazz", third.Title, "first spelling is kept")
	assert.Equal(t, "music", third.Description)
	assert.True(t, third.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, first.CreatedAt, third.CreatedAt)
	assert.Equal(t, int64(1), s.GetStats(ctx).Topics)
}

func TestSaveTopicFillsEmptyFields(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.SaveTopic(ctx, models.TopicInput{Title: "Tides"})
	require.NoError(t, err)
	assert.Empty(t, first.Description)
	assert.Empty(t, first.Tags)

	second, err := s.SaveTopic(ctx, models.TopicInput{
		Title:       "tides",
		Description: "How the moon moves the sea",
		Tags:        []string{"ocean", "moon"},
		Difficulty:  models.DifficultyIntermediate,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "How the moon moves the sea", second.Description)
	assert.Equal(t, []string{"ocean", "moon"}, second.Tags)
	assert.Equal(t, models.DifficultyIntermediate, second.Difficulty)

	third, err := s.SaveTopic(ctx, models.TopicInput{
		Title:       "TIDES",
		Description: "something else",
		Tags:        []string{"other"},
		Difficulty:  models.DifficultyAdvanced,
	})
	require.NoError(t, err)
	assert.Equal(t, "How the moon moves the sea", third.Description, "filled fields are not overwritten")
	assert.Equal(t, []string{"ocean", "moon"}, third.Tags)
	assert.Equal(t, models.DifficultyIntermediate, third.Difficulty)
	assert.Equal(t, 3, third.ExplorationCount)
}

func TestSaveTopicConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			title := "Black Holes"
			if i%2 == 0 {
				title = "black holes"
			}
			_, err := s.SaveTopic(ctx, models.TopicInput{Title: title})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	popular := s.GetPopularTopics(ctx, 10)
	require.Len(t, popular, 1)
	assert.Equal(t, 50, popular[0].ExplorationCount)
}

func TestSaveTopicRejectsBadShape(t *testing.T) {
	_, err := New().SaveTopic(context.Background(), models.TopicInput{Title: "  "})
	require.ErrorIs(t, err, models.ErrInvalidShape)

	_, err = New().SaveTopic(context.Background(), models.TopicInput{Title: strings.Repeat("x", 101)})
	require.ErrorIs(t, err, models.ErrInvalidShape)
}

func TestGetTopicByIDMissing(t *testing.T) {
	assert.Nil(t, New().GetTopicByID(context.Background(), "nope"))
}

func seedSearch(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	for _, in := range []models.TopicInput{
		{Title: "Black Holes", Description: "Regions where gravity traps light", Tags: []string{"space"}},
		{Title: "Supermassive Black Holes", Description: "Giants at galaxy centers", Tags: []string{"space"}},
		{Title: "Jazz", Description: "Improvised music born in New Orleans"},
		{Title: "Event Horizons", Description: "The boundary around black holes"},
		{Title: "Holes in Cheese", Description: "Why Emmental has eyes"},
	} {
		_, err := s.SaveTopic(ctx, in)
		require.NoError(t, err)
	}
}

func TestSearchTopicsRanked(t *testing.T) {
	s := New()
	seedSearch(t, s)

	results := s.SearchTopics(context.Background(), "black holes", 5)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 5)
	assert.Contains(t, []string{"Black Holes", "Supermassive Black Holes"}, results[0].Title)

	limited := s.SearchTopics(context.Background(), "holes", 2)
	assert.Len(t, limited, 2)
}

func TestSearchTopicsSubstringFallback(t *testing.T) {
	s := New(WithoutTextIndex())
	seedSearch(t, s)

	results := s.SearchTopics(context.Background(), "black holes", 5)
	require.Len(t, results, 3)
	for _, r := range results {
		hay := strings.ToLower(r.Title + " " + r.Description)
		assert.Contains(t, hay, "black holes")
	}

	assert.Empty(t, s.SearchTopics(context.Background(), "(unbalanced[", 5), "query is matched literally")
}

func TestGetPopularTopics(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := range 4 {
		for range i + 1 {
			_, err := s.SaveTopic(ctx, models.TopicInput{Title: fmt.Sprintf("Topic %d", i)})
			require.NoError(t, err)
		}
	}

	popular := s.GetPopularTopics(ctx, 3)
	require.Len(t, popular, 3)
	assert.Equal(t, "Topic 3", popular[0].Title)
	assert.Equal(t, 4, popular[0].ExplorationCount)
	assert.Equal(t, "Topic 1", popular[2].Title)
}

func TestCuriosityTrails(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.SaveCuriosityTrail(ctx, trailFor("t1", "Jazz", base.Add(2*time.Hour)))
	require.NoError(t, err)
	newest, err := s.SaveCuriosityTrail(ctx, trailFor("t1", "Jazz", base.Add(5*time.Hour)))
	require.NoError(t, err)
	_, err = s.SaveCuriosityTrail(ctx, trailFor("t1", "Jazz", base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = s.SaveCuriosityTrail(ctx, trailFor("t2", "Bees", base.Add(3*time.Hour)))
	require.NoError(t, err)

	latest := s.GetCuriosityTrailByTopic(ctx, "t1")
	require.NotNil(t, latest)
	assert.Equal(t, newest.ID, latest.ID)
	assert.Nil(t, s.GetCuriosityTrailByTopic(ctx, "missing"))

	recent := s.GetRecentTrails(ctx, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, newest.ID, recent[0].ID)
	assert.Equal(t, "Bees", recent[1].Topic)

	_, err = s.SaveCuriosityTrail(ctx, models.CuriosityTrail{Topic: "Jazz"})
	require.ErrorIs(t, err, models.ErrInvalidShape)
}

func TestReturnedTrailIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	saved, err := s.SaveCuriosityTrail(ctx, trailFor("t1", "Jazz", time.Now()))
	require.NoError(t, err)

	saved.Nodes[0].Title = "mutated"
	assert.Equal(t, "Jazz", s.GetCuriosityTrailByTopic(ctx, "t1").Nodes[0].Title)
}

func TestUpdateUserSession(t *testing.T) {
	ctx := context.Background()
	s := New(WithClock(stepClock()))

	first, err := s.UpdateUserSession(ctx, models.SessionUpdate{SessionID: "abc"})
	require.NoError(t, err)
	assert.Empty(t, first.TopicsExplored)
	assert.NotNil(t, first.Achievements)
	assert.Zero(t, first.TrailsGenerated)

	trails := 1
	second, err := s.UpdateUserSession(ctx, models.SessionUpdate{SessionID: "abc", TrailsGenerated: &trails})
	require.NoError(t, err)

	assert.Equal(t, 1, second.TrailsGenerated)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.LastActiveAt.After(first.LastActiveAt))
	assert.Equal(t, int64(1), s.GetStats(ctx).Sessions)

	_, err = s.UpdateUserSession(ctx, models.SessionUpdate{})
	require.Error(t, err)
}

func TestHealthAndStats(t *testing.T) {
	ctx := context.Background()
	s := New()
	assert.True(t, s.CheckHealth(ctx))

	stats := s.GetStats(ctx)
	require.NotNil(t, stats)
	assert.Zero(t, stats.Topics)
	assert.False(t, stats.Timestamp.IsZero())
	require.NoError(t, s.Close(ctx))
}

func TestWipeData(t *testing.T) {
	ctx := context.Background()
	s := New()
	topic, err := s.SaveTopic(ctx, models.TopicInput{Title: "Jazz"})
	require.NoError(t, err)
	_, err = s.SaveCuriosityTrail(ctx, trailFor(topic.ID, "Jazz", time.Now()))
	require.NoError(t, err)
	_, err = s.UpdateUserSession(ctx, models.SessionUpdate{SessionID: "abc"})
	require.NoError(t, err)

	require.NoError(t, s.WipeData(ctx))

	stats := s.GetStats(ctx)
	assert.Zero(t, stats.Topics)
	assert.Zero(t, stats.Trails)
	assert.Zero(t, stats.Sessions)

	again, err := s.SaveTopic(ctx, models.TopicInput{Title: "Jazz"})
	require.NoError(t, err)
	assert.Equal(t, 1, again.ExplorationCount)
}
