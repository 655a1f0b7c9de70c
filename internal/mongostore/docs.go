package mongostore

import (
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type topicDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Title            string             `bson:"title"`
	TitleKey         string             `bson:"titleKey"`
	Description      string             `bson:"description"`
	Category         string             `bson:"category,omitempty"`
	Difficulty       string             `bson:"difficulty,omitempty"`
	Tags             []string           `bson:"tags"`
	Embedding        []float32          `bson:"embedding,omitempty"`
	ExplorationCount int                `bson:"explorationCount"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

func (d topicDoc) toModel() models.Topic {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Topic{
		ID:               d.ID.Hex(),
		Title:            d.Title,
		Description:      d.Description,
		Category:         d.Category,
		Difficulty:       models.Difficulty(d.Difficulty),
		Tags:             tags,
		Embedding:        d.Embedding,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		ExplorationCount: d.ExplorationCount,
	}
}

type nodeDoc struct {
	ID          string   `bson:"id"`
	Title       string   `bson:"title"`
	Description string   `bson:"description"`
	Level       int      `bson:"level"`
	Connections []string `bson:"connections"`
	NodeType    string   `bson:"nodeType"`
	Confidence  float64  `bson:"confidence"`
	Sources     []string `bson:"sources,omitempty"`
}

type trailDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	TopicID          string             `bson:"topicId"`
	Topic            string             `bson:"topic"`
	Summary          string             `bson:"summary"`
	Nodes            []nodeDoc          `bson:"nodes"`
	TotalConnections int                `bson:"totalConnections"`
	MaxDepth         int                `bson:"maxDepth"`
	GeneratedAt      time.Time          `bson:"generatedAt"`
	AIModel          string             `bson:"aiModel"`
	ProcessingTime   int64              `bson:"processingTime"`
}

func newTrailDoc(t models.CuriosityTrail) trailDoc {
	nodes := make([]nodeDoc, len(t.Nodes))
	for i, n := range t.Nodes {
		conns := n.Connections
		if conns == nil {
			conns = []string{}
		}
		nodes[i] = nodeDoc{
			ID:          n.ID,
			Title:       n.Title,
			Description: n.Description,
			Level:       n.Level,
			Connections: conns,
			NodeType:    string(n.NodeType),
			Confidence:  n.Confidence,
			Sources:     n.Sources,
		}
	}
	return trailDoc{
		TopicID:          t.TopicID,
		Topic:            t.Topic,
		Summary:          t.Summary,
		Nodes:            nodes,
		TotalConnections: t.TotalConnections,
		MaxDepth:         t.MaxDepth,
		GeneratedAt:      t.GeneratedAt,
		AIModel:          t.AIModel,
		ProcessingTime:   t.ProcessingTime,
	}
}

func (d trailDoc) toModel() models.CuriosityTrail {
	nodes := make([]models.CuriosityNode, len(d.Nodes))
	for i, n := range d.Nodes {
		conns := n.Connections
		if conns == nil {
			conns = []string{}
		}
		nodes[i] = models.CuriosityNode{
			ID:          n.ID,
			Title:       n.Title,
			Description: n.Description,
			Level:       n.Level,
			Connections: conns,
			NodeType:    models.NodeType(n.NodeType),
			Confidence:  n.Confidence,
			Sources:     n.Sources,
		}
	}
	return models.CuriosityTrail{
		ID:               d.ID.Hex(),
		TopicID:          d.TopicID,
		Topic:            d.Topic,
		Summary:          d.Summary,
		Nodes:            nodes,
		TotalConnections: d.TotalConnections,
		MaxDepth:         d.MaxDepth,
		GeneratedAt:      d.GeneratedAt,
		AIModel:          d.AIModel,
		ProcessingTime:   d.ProcessingTime,
	}
}

type sessionDoc struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	SessionID            string             `bson:"sessionId"`
	TopicsExplored       []string           `bson:"topicsExplored"`
	TrailsGenerated      int                `bson:"trailsGenerated"`
	TotalExplorationTime int                `bson:"totalExplorationTime"`
	CuriosityScore       int                `bson:"curiosityScore"`
	Achievements         []string           `bson:"achievements"`
	CreatedAt            time.Time          `bson:"createdAt"`
	LastActiveAt         time.Time          `bson:"lastActiveAt"`
}

func (d sessionDoc) toModel() models.UserSession {
	s := models.UserSession{
		SessionID:            d.SessionID,
		TopicsExplored:       d.TopicsExplored,
		TrailsGenerated:      d.TrailsGenerated,
		TotalExplorationTime: d.TotalExplorationTime,
		CuriosityScore:       d.CuriosityScore,
		Achievements:         d.Achievements,
		CreatedAt:            d.CreatedAt,
		LastActiveAt:         d.LastActiveAt,
	}
	if s.TopicsExplored == nil {
		s.TopicsExplored = []string{}
	}
	if s.Achievements == nil {
		s.Achievements = []string{}
	}
	return s
}
