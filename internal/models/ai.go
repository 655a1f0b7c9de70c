package models

import "time"

// Limits shared by the orchestrator and the exploration service.
const (
	MaxTrailDepth         = 5
	MaxConnectionsPerNode = 3
	MinTopicLength        = 2
	MaxTopicLength        = 100
	AITimeout             = 30 * time.Second
	ExploreConnections    = 5
)

// Connection is one related concept proposed by the model.
type Connection struct {
	Title        string  `json:"title" validate:"required"`
	Description  string  `json:"description"`
	Relationship string  `json:"relationship"`
	Confidence   float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// AIResponse is the structured result of one exploration prompt.
// It is transient: the exploration service turns it into a CuriosityTrail.
type AIResponse struct {
	Summary              string       `json:"summary" validate:"required"`
	Connections          []Connection `json:"connections" validate:"required,dive"`
	Keywords             []string     `json:"keywords"`
	Difficulty           Difficulty   `json:"difficulty"`
	EstimatedReadingTime int          `json:"estimatedReadingTime" validate:"gte=0"`
}

// TopicValidation is the verdict on a raw topic input.
type TopicValidation struct {
	IsValid      bool     `json:"isValid"`
	CleanedTopic string   `json:"cleanedTopic,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	Suggestions  []string `json:"suggestions"`
}
