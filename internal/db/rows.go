package db

import (
	"fmt"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/google/uuid"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// topicRow is a topic record as stored in SurrealDB.
type topicRow struct {
	ID               surrealmodels.RecordID `json:"id"`
	Title            string                 `json:"title"`
	TitleKey         string                 `json:"title_key"`
	Description      string                 `json:"description"`
	Category         *string                `json:"category,omitempty"`
	Difficulty       *string                `json:"difficulty,omitempty"`
	Tags             []string               `json:"tags"`
	Embedding        []float32              `json:"embedding,omitempty"`
	ExplorationCount int                    `json:"exploration_count"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

func (r topicRow) toModel() models.Topic {
	t := models.Topic{
		ID:               recordKey(r.ID),
		Title:            r.Title,
		Description:      r.Description,
		Tags:             r.Tags,
		Embedding:        r.Embedding,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		ExplorationCount: r.ExplorationCount,
	}
	if r.Category != nil {
		t.Category = *r.Category
	}
	if r.Difficulty != nil {
		t.Difficulty = models.Difficulty(*r.Difficulty)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

// trailRow is a trail record. Nodes are stored as flexible objects.
type trailRow struct {
	ID               surrealmodels.RecordID `json:"id"`
	TopicID          string                 `json:"topic_id"`
	Topic            string                 `json:"topic"`
	Summary          string                 `json:"summary"`
	Nodes            []models.CuriosityNode `json:"nodes"`
	TotalConnections int                    `json:"total_connections"`
	MaxDepth         int                    `json:"max_depth"`
	GeneratedAt      time.Time              `json:"generated_at"`
	AIModel          string                 `json:"ai_model"`
	ProcessingTime   int64                  `json:"processing_time"`
}

func (r trailRow) toModel() models.CuriosityTrail {
	nodes := r.Nodes
	for i := range nodes {
		if nodes[i].Connections == nil {
			nodes[i].Connections = []string{}
		}
	}
	return models.CuriosityTrail{
		ID:               recordKey(r.ID),
		TopicID:          r.TopicID,
		Topic:            r.Topic,
		Summary:          r.Summary,
		Nodes:            nodes,
		TotalConnections: r.TotalConnections,
		MaxDepth:         r.MaxDepth,
		GeneratedAt:      r.GeneratedAt,
		AIModel:          r.AIModel,
		ProcessingTime:   r.ProcessingTime,
	}
}

// sessionRow is a user_session record.
type sessionRow struct {
	ID                   surrealmodels.RecordID `json:"id"`
	SessionID            string                 `json:"session_id"`
	TopicsExplored       []string               `json:"topics_explored"`
	TrailsGenerated      int                    `json:"trails_generated"`
	TotalExplorationTime int                    `json:"total_exploration_time"`
	CuriosityScore       int                    `json:"curiosity_score"`
	Achievements         []string               `json:"achievements"`
	CreatedAt            time.Time              `json:"created_at"`
	LastActiveAt         time.Time              `json:"last_active_at"`
}

func (r sessionRow) toModel() models.UserSession {
	s := models.UserSession{
		SessionID:            r.SessionID,
		TopicsExplored:       r.TopicsExplored,
		TrailsGenerated:      r.TrailsGenerated,
		TotalExplorationTime: r.TotalExplorationTime,
		CuriosityScore:       r.CuriosityScore,
		Achievements:         r.Achievements,
		CreatedAt:            r.CreatedAt,
		LastActiveAt:         r.LastActiveAt,
	}
	if s.SessionID == "" {
		s.SessionID = recordKey(r.ID)
	}
	if s.TopicsExplored == nil {
		s.TopicsExplored = []string{}
	}
	if s.Achievements == nil {
		s.Achievements = []string{}
	}
	return s
}

// recordKey returns the id part of a record id ("topic:abc" -> "abc").
func recordKey(id surrealmodels.RecordID) string {
	if s, ok := id.ID.(string); ok {
		return s
	}
	return fmt.Sprint(id.ID)
}

var topicNamespace = uuid.MustParse("5b0e3a52-6c1d-4f0e-9a57-0f5f2b8c9d41")

// topicRecordID derives a stable, URL-safe record id from a title key, so two
// spellings of one title address the same record.
func topicRecordID(titleKey string) string {
	return uuid.NewSHA1(topicNamespace, []byte(titleKey)).String()
}

// firstRow returns the first row of the first statement result, or nil.
func firstRow[T any](rows []T) *T {
	if len(rows) == 0 {
		return nil
	}
	return &rows[0]
}
