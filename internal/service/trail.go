package service

import (
	"strings"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/google/uuid"
)

var (
	applicationHints = []string{"appl", "use", "practical", "industry", "technology", "tool"}
	connectionHints  = []string{"histor", "influence", "cross", "interdisciplin", "link", "parallel", "cultur"}
)

// nodeTypeFor classifies a connection by its relationship text.
// Nodes below the first level are always deep dives.
func nodeTypeFor(relationship string, level int) models.NodeType {
	if level > 1 {
		return models.NodeDeepDive
	}
	rel := strings.ToLower(relationship)
	for _, h := range applicationHints {
		if strings.Contains(rel, h) {
			return models.NodeApplication
		}
	}
	for _, h := range connectionHints {
		if strings.Contains(rel, h) {
			return models.NodeConnection
		}
	}
	return models.NodeConcept
}

func clampConfidence(c float64) float64 {
	return max(0, min(1, c))
}

func newNode(c models.Connection, level int) models.CuriosityNode {
	return models.CuriosityNode{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(c.Title),
		Description: c.Description,
		Level:       level,
		Connections: []string{},
		NodeType:    nodeTypeFor(c.Relationship, level),
		Confidence:  clampConfidence(c.Confidence),
	}
}

// buildTrail roots a trail at the topic and hangs every connection off it at level 1.
func buildTrail(topic *models.Topic, ai models.AIResponse, model string, now time.Time, elapsed time.Duration) *models.CuriosityTrail {
	nodes := make([]models.CuriosityNode, 1, len(ai.Connections)+1)
	nodes[0] = models.CuriosityNode{
		ID:          uuid.NewString(),
		Title:       topic.Title,
		Description: ai.Summary,
		Level:       0,
		Connections: []string{},
		NodeType:    models.NodeConcept,
		Confidence:  1,
	}
	for _, c := range ai.Connections {
		n := newNode(c, 1)
		nodes[0].Connections = append(nodes[0].Connections, n.ID)
		nodes = append(nodes, n)
	}

	return &models.CuriosityTrail{
		TopicID:          topic.ID,
		Topic:            topic.Title,
		Summary:          ai.Summary,
		Nodes:            nodes,
		TotalConnections: models.CountConnections(nodes),
		MaxDepth:         models.DeepestLevel(nodes),
		GeneratedAt:      now,
		AIModel:          model,
		ProcessingTime:   elapsed.Milliseconds(),
	}
}

// extendTrail copies prev and appends one level of nodes below its deepest level.
// New nodes are attached round-robin to the deepest nodes; no parent receives more
// than models.MaxConnectionsPerNode new links and surplus connections are dropped.
func extendTrail(prev *models.CuriosityTrail, ai models.AIResponse, model string, now time.Time, elapsed time.Duration) *models.CuriosityTrail {
	nodes := make([]models.CuriosityNode, len(prev.Nodes), len(prev.Nodes)+len(ai.Connections))
	var parents []int
	for i, n := range prev.Nodes {
		n.Connections = append([]string{}, n.Connections...)
		nodes[i] = n
		if n.Level == prev.MaxDepth {
			parents = append(parents, i)
		}
	}

	level := prev.MaxDepth + 1
	conns := ai.Connections
	if capacity := len(parents) * models.MaxConnectionsPerNode; len(conns) > capacity {
		conns = conns[:capacity]
	}
	for i, c := range conns {
		n := newNode(c, level)
		p := parents[i%len(parents)]
		nodes[p].Connections = append(nodes[p].Connections, n.ID)
		nodes = append(nodes, n)
	}

	summary := ai.Summary
	if summary == "" {
		summary = prev.Summary
	}
	return &models.CuriosityTrail{
		TopicID:          prev.TopicID,
		Topic:            prev.Topic,
		Summary:          summary,
		Nodes:            nodes,
		TotalConnections: models.CountConnections(nodes),
		MaxDepth:         models.DeepestLevel(nodes),
		GeneratedAt:      now,
		AIModel:          model,
		ProcessingTime:   elapsed.Milliseconds(),
	}
}
