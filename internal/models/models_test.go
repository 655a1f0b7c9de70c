package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValidateTopic(t *testing.T) {
	now := time.Now()

	t.Run("new topic passes", func(t *testing.T) {
		topic := NewTopic(TopicInput{Title: "Jazz", Description: "music"}, now)
		require.NoError(t, ValidateTopic(&topic))
		assert.Equal(t, 1, topic.ExplorationCount)
		assert.NotNil(t, topic.Tags, "tags should be seeded")
	})

	t.Run("missing title", func(t *testing.T) {
		topic := NewTopic(TopicInput{Description: "no title"}, now)
		err := ValidateTopic(&topic)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidShape))
		assert.Contains(t, err.Error(), "Title is required")
	})

	t.Run("missing creation time", func(t *testing.T) {
		topic := Topic{Title: "Jazz", Tags: []string{}}
		err := ValidateTopic(&topic)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CreatedAt is required")
	})

	t.Run("bad difficulty", func(t *testing.T) {
		topic := NewTopic(TopicInput{Title: "Jazz", Difficulty: DifficultyUnavailable}, now)
		err := ValidateTopic(&topic)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Difficulty must be one of")
	})
}

func TestValidateTrail(t *testing.T) {
	trail := CuriosityTrail{
		Topic:   "Jazz",
		Summary: "A genre",
		Nodes: []CuriosityNode{
			{ID: "n1", Title: "Jazz", NodeType: NodeConcept, Confidence: 1},
		},
	}
	require.NoError(t, ValidateTrail(&trail))

	trail.Nodes[0].Confidence = 1.5
	err := ValidateTrail(&trail)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidShape))

	empty := CuriosityTrail{Topic: "Jazz"}
	err = ValidateTrail(&empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Summary is required")
	assert.Contains(t, err.Error(), "Nodes is required")
}

func TestDifficultyValid(t *testing.T) {
	assert.True(t, DifficultyBeginner.Valid())
	assert.True(t, DifficultyAdvanced.Valid())
	assert.False(t, DifficultyUnavailable.Valid())
	assert.False(t, Difficulty("expert").Valid())
}

func TestTrailHelpers(t *testing.T) {
	nodes := []CuriosityNode{
		{ID: "a", Level: 0, Connections: []string{"b", "c"}},
		{ID: "b", Level: 1, Connections: []string{"d"}},
		{ID: "c", Level: 1},
		{ID: "d", Level: 2},
	}
	assert.Equal(t, 3, CountConnections(nodes))
	assert.Equal(t, 2, DeepestLevel(nodes))
	assert.Equal(t, 0, DeepestLevel(nil))
}

func TestSessionApply(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSession("abc", created)

	trails := 1
	later := created.Add(time.Minute)
	s.Apply(SessionUpdate{SessionID: "abc", TrailsGenerated: &trails}, later)

	assert.Equal(t, 1, s.TrailsGenerated)
	assert.Equal(t, created, s.CreatedAt)
	assert.Equal(t, later, s.LastActiveAt)
	assert.Empty(t, s.TopicsExplored, "unsupplied fields keep their value")
}

func TestTrailExport(t *testing.T) {
	trail := &CuriosityTrail{
		Topic: "Black Holes",
		Nodes: []CuriosityNode{
			{ID: "1", Title: "Black Holes", Description: "root", Level: 0, Confidence: 1},
			{ID: "2", Title: "Event Horizon", Description: "edge", Level: 1, Confidence: 0.9},
		},
	}
	stamp := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	export := NewTrailExport(trail, stamp)

	t.Run("json", func(t *testing.T) {
		data, err := export.Encode(ExportJSON)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "Black Holes", decoded["topic"])
		assert.Len(t, decoded["trail"], 2)
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := export.Encode(ExportYAML)
		require.NoError(t, err)
		var decoded TrailExport
		require.NoError(t, yaml.Unmarshal(data, &decoded))
		assert.Equal(t, "Event Horizon", decoded.Trail[1].Title)
		assert.Equal(t, 1, decoded.Trail[1].Level)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := export.Encode("xml")
		require.Error(t, err)
	})

	assert.Equal(t, "Black_Holes_curiosity_trail.json", ExportFileName("Black Holes", ExportJSON))
	assert.True(t, strings.HasSuffix(ExportFileName("AI  Ethics", ExportYAML), "AI_Ethics_curiosity_trail.yaml"))
}
