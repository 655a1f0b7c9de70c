package models

import "time"

// Difficulty grades how approachable a topic is.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"

	// DifficultyUnavailable marks fallback responses produced without the model.
	// It is never stored on a topic.
	DifficultyUnavailable Difficulty = "unavailable"
)

// Valid reports whether d is one of the three gradable difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Topic is the canonical subject record a user explores.
// Titles are unique ignoring case.
type Topic struct {
	ID               string     `json:"id" yaml:"id"`
	Title            string     `json:"title" yaml:"title" validate:"required,max=100"`
	Description      string     `json:"description" yaml:"description"`
	Category         string     `json:"category,omitempty" yaml:"category,omitempty"`
	Difficulty       Difficulty `json:"difficulty,omitempty" yaml:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Tags             []string   `json:"tags" yaml:"tags" validate:"required"`
	Embedding        []float32  `json:"embedding,omitempty" yaml:"-"`
	CreatedAt        time.Time  `json:"createdAt" yaml:"created_at" validate:"required"`
	UpdatedAt        time.Time  `json:"updatedAt" yaml:"updated_at"`
	ExplorationCount int        `json:"explorationCount" yaml:"exploration_count" validate:"gte=0"`
}

// TopicInput carries the caller-supplied fields of a topic save.
// Identity, timestamps and the exploration counter are owned by the store.
type TopicInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category,omitempty"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	Tags        []string   `json:"tags"`
	Embedding   []float32  `json:"embedding,omitempty"`
}

// NewTopic stamps a first-time topic from input: both timestamps set to now
// and the exploration counter at one.
func NewTopic(in TopicInput, now time.Time) Topic {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return Topic{
		Title:            in.Title,
		Description:      in.Description,
		Category:         in.Category,
		Difficulty:       in.Difficulty,
		Tags:             tags,
		Embedding:        in.Embedding,
		CreatedAt:        now,
		UpdatedAt:        now,
		ExplorationCount: 1,
	}
}
