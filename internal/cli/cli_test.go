package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akiliquest/akiliquest/internal/explore"
	"github.com/akiliquest/akiliquest/internal/llm"
	"github.com/akiliquest/akiliquest/internal/memstore"
	"github.com/akiliquest/akiliquest/internal/metrics"
	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/akiliquest/akiliquest/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGenerator struct {
	err error
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string, _ llm.Options) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	switch {
	case strings.Contains(prompt, "sensible topic"):
		return `{"isValid": true, "cleanedTopic": "Black Holes", "suggestions": []}`, nil
	case strings.Contains(prompt, "Go deeper"):
		return aiJSON("Further", 3), nil
	case strings.Contains(prompt, "Suggest"):
		return `["Volcanoes", "Origami", "Tides"]`, nil
	default:
		return aiJSON("Idea", 5), nil
	}
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func aiJSON(prefix string, n int) string {
	conns := make([]models.Connection, n)
	for i := range conns {
		conns[i] = models.Connection{
			Title:        fmt.Sprintf("%s %d", prefix, i+1),
			Description:  "why it matters",
			Relationship: "related idea",
			Confidence:   0.7,
		}
	}
	data, _ := json.Marshal(models.AIResponse{
		Summary:              prefix + " summary",
		Connections:          conns,
		Keywords:             []string{"space", "gravity"},
		Difficulty:           models.DifficultyBeginner,
		EstimatedReadingTime: 3,
	})
	return string(data)
}

// useLocal points the commands at an in-memory service for one test.
func useLocal(t *testing.T, gen llm.Generator) *service.ExploreService {
	t.Helper()
	mc := metrics.NewCollector()
	orch := explore.New(gen, explore.WithTimeout(time.Second), explore.WithBreakerFailures(0), explore.WithMetrics(mc))
	svc := service.NewExploreService(service.Instrument(memstore.New(), mc), orch)

	prev := openBackend
	openBackend = func(context.Context) (backend, func(), error) {
		return &localBackend{svc: svc, metrics: mc, version: "test"}, func() {}, nil
	}
	t.Cleanup(func() { openBackend = prev })
	return svc
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	sessionID = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func exploredTopicID(t *testing.T, svc *service.ExploreService) string {
	t.Helper()
	topics := svc.Popular(context.Background(), 1)
	require.Len(t, topics, 1)
	return topics[0].ID
}

func TestExploreCommand(t *testing.T) {
	useLocal(t, &scriptedGenerator{})

	out, err := run(t, "explore", "black", "holes", "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Black Holes")
	assert.Contains(t, out, "Idea summary")
	assert.Contains(t, out, "Idea 5")
	assert.Contains(t, out, "Keywords: space, gravity")
	assert.Contains(t, out, "Score")
	assert.Contains(t, out, "Trail saved (depth 1)")
}

func TestExploreCommandDegraded(t *testing.T) {
	useLocal(t, &scriptedGenerator{err: errors.New("HTTP 503 unavailable")})

	out, err := run(t, "explore", "jazz")
	require.NoError(t, err)
	assert.Contains(t, out, "AI unavailable")
	assert.Contains(t, out, "Trail not saved.")
}

func TestExploreCommandRejectsBadTopic(t *testing.T) {
	useLocal(t, &scriptedGenerator{})

	_, err := run(t, "explore", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrInvalidTopic)
}

func TestDeeperAndTrailCommands(t *testing.T) {
	svc := useLocal(t, &scriptedGenerator{})

	_, err := run(t, "explore", "black holes")
	require.NoError(t, err)
	id := exploredTopicID(t, svc)

	out, err := run(t, "deeper", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Further 1")
	assert.Contains(t, out, "Trail saved (depth 2)")

	out, err = run(t, "trail", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Black Holes")
	assert.Contains(t, out, "depth 2")
	assert.Contains(t, out, "Further 3")

	out, err = run(t, "trails")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Black Holes")

	_, err = run(t, "deeper", "missing")
	assert.ErrorIs(t, err, service.ErrTopicNotFound)
}

func TestValidateAndSuggestCommands(t *testing.T) {
	useLocal(t, &scriptedGenerator{})

	out, err := run(t, "validate", "black", "holes")
	require.NoError(t, err)
	assert.Contains(t, out, "Valid topic: Black Holes")

	out, err = run(t, "suggest", "--count", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Volcanoes")
	assert.Contains(t, out, "2. Origami")
	assert.NotContains(t, out, "Tides")
}

func TestSearchAndPopularCommands(t *testing.T) {
	useLocal(t, &scriptedGenerator{})

	out, err := run(t, "search", "holes")
	require.NoError(t, err)
	assert.Contains(t, out, "No topics found.")

	_, err = run(t, "explore", "black holes")
	require.NoError(t, err)

	out, err = run(t, "search", "holes")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 results")
	assert.Contains(t, out, "Black Holes")

	out, err = run(t, "popular", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Black Holes")
	assert.Contains(t, out, "explored 1×")
}

func TestExportCommand(t *testing.T) {
	svc := useLocal(t, &scriptedGenerator{})

	_, err := run(t, "explore", "black holes")
	require.NoError(t, err)
	id := exploredTopicID(t, svc)

	out, err := run(t, "export", id, "-o", "-")
	require.NoError(t, err)
	var exported models.TrailExport
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	assert.Equal(t, "Black Holes", exported.Topic)
	assert.Len(t, exported.Trail, 6)

	dir := t.TempDir()
	out, err = run(t, "export", id, "--format", "yaml", "--output", dir)
	require.NoError(t, err)
	path := filepath.Join(dir, "Black_Holes_curiosity_trail.yaml")
	assert.Contains(t, out, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "topic: Black Holes")

	_, err = run(t, "export", id, "--format", "csv", "-o", "-")
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestSessionCommand(t *testing.T) {
	t.Setenv("AKILIQUEST_SESSION_ID", "")
	useLocal(t, &scriptedGenerator{})

	_, err := run(t, "session")
	require.Error(t, err)

	out, err := run(t, "session", "s1", "--score", "7", "--achievements", "explorer,night-owl")
	require.NoError(t, err)
	assert.Contains(t, out, "Session s1")
	assert.Contains(t, out, "Curiosity score:  7")
	assert.Contains(t, out, "explorer, night-owl")

	out, err = run(t, "session", "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Curiosity score:  7")

	_, err = run(t, "session", "nobody")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestHealthAndStatsCommands(t *testing.T) {
	useLocal(t, &scriptedGenerator{})

	_, err := run(t, "explore", "black holes")
	require.NoError(t, err)

	out, err := run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")
	assert.Contains(t, out, "Database: true")
	assert.Contains(t, out, "Model:    scripted")

	out, err = run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Topics:   1")
	assert.Contains(t, out, "Trails:   1")
	assert.Contains(t, out, "AI calls:     2 (0 degraded)")
}
