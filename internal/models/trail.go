package models

import "time"

// NodeType classifies a node in a curiosity trail.
type NodeType string

const (
	NodeConcept     NodeType = "concept"
	NodeApplication NodeType = "application"
	NodeConnection  NodeType = "connection"
	NodeDeepDive    NodeType = "deep-dive"
)

// CuriosityNode is one step of a curiosity trail.
// Level 0 is the starting topic and has no inbound edges.
type CuriosityNode struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	Title       string   `json:"title" yaml:"title" validate:"required"`
	Description string   `json:"description" yaml:"description"`
	Level       int      `json:"level" yaml:"level" validate:"gte=0"`
	Connections []string `json:"connections" yaml:"connections"`
	NodeType    NodeType `json:"nodeType" yaml:"node_type" validate:"oneof=concept application connection deep-dive"`
	Confidence  float64  `json:"confidence" yaml:"confidence" validate:"gte=0,lte=1"`
	Sources     []string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// CuriosityTrail is the generated tree for one exploration of a topic.
// Trails are append-only: a new exploration writes a new trail and the most
// recently generated one wins on lookup.
type CuriosityTrail struct {
	ID               string          `json:"id" yaml:"id"`
	TopicID          string          `json:"topicId" yaml:"topic_id"`
	Topic            string          `json:"topic" yaml:"topic" validate:"required"`
	Summary          string          `json:"summary" yaml:"summary" validate:"required"`
	Nodes            []CuriosityNode `json:"nodes" yaml:"nodes" validate:"required,dive"`
	TotalConnections int             `json:"totalConnections" yaml:"total_connections" validate:"gte=0"`
	MaxDepth         int             `json:"maxDepth" yaml:"max_depth" validate:"gte=0"`
	GeneratedAt      time.Time       `json:"generatedAt" yaml:"generated_at"`
	AIModel          string          `json:"aiModel" yaml:"ai_model"`
	ProcessingTime   int64           `json:"processingTime" yaml:"processing_time"`
}

// Titles returns the node titles in trail order.
func (t *CuriosityTrail) Titles() []string {
	titles := make([]string, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		titles = append(titles, n.Title)
	}
	return titles
}

// CountConnections sums the outbound edges of all nodes.
func CountConnections(nodes []CuriosityNode) int {
	total := 0
	for _, n := range nodes {
		total += len(n.Connections)
	}
	return total
}

// DeepestLevel returns the highest node level, 0 for an empty trail.
func DeepestLevel(nodes []CuriosityNode) int {
	deepest := 0
	for _, n := range nodes {
		if n.Level > deepest {
			deepest = n.Level
		}
	}
	return deepest
}
