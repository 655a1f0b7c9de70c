package explore

import (
	"fmt"
	"strings"

	"github.com/akiliquest/akiliquest/internal/models"
)

// DefaultSuggestions are offered when the model cannot suggest topics.
var DefaultSuggestions = []string{
	"Black Holes",
	"Jazz",
	"Ancient Egypt",
	"AI Ethics",
	"Quantum Computing",
	"Coral Reefs",
	"The Renaissance",
	"Cryptography",
}

// DefaultSuggestionCount is used when a caller asks for zero or fewer suggestions.
const DefaultSuggestionCount = 5

func fallbackExploration(topic string) models.AIResponse {
	return models.AIResponse{
		Summary: fmt.Sprintf("%s is a fascinating subject with plenty to discover. "+
			"Detailed AI insights are unavailable right now, so try exploring it again in a moment.", topic),
		Connections:          []models.Connection{},
		Keywords:             []string{},
		Difficulty:           models.DifficultyUnavailable,
		EstimatedReadingTime: 0,
	}
}

func fallbackValidation(input string) models.TopicValidation {
	return models.TopicValidation{
		IsValid:      true,
		CleanedTopic: strings.TrimSpace(input),
		Suggestions:  []string{},
	}
}

// fallbackSuggestions returns count entries from DefaultSuggestions, cycling when
// count exceeds the list.
func fallbackSuggestions(count int) []string {
	if count <= 0 {
		count = DefaultSuggestionCount
	}
	out := make([]string, count)
	for i := range out {
		out[i] = DefaultSuggestions[i%len(DefaultSuggestions)]
	}
	return out
}
