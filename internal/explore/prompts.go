package explore

import (
	"fmt"
	"strings"

	"github.com/akiliquest/akiliquest/internal/models"
)

const exploreTemplate = `You are AkiliQuest, a guide who sparks curiosity. Explore the topic "%s".

Respond with JSON only, no markdown and no commentary, in exactly this shape:
{
  "summary": "2-3 engaging sentences explaining the topic",
  "connections": [
    {
      "title": "related concept",
      "description": "one sentence on what it is",
      "relationship": "how it connects to %s",
      "confidence": 0.0
    }
  ],
  "keywords": ["keyword"],
  "difficulty": "beginner" | "intermediate" | "advanced",
  "estimatedReadingTime": 5
}

Rules:
- "connections" must contain exactly %d entries with distinct titles.
- "confidence" is a number between 0 and 1.
- "estimatedReadingTime" is a whole number of minutes.`

const deeperTemplate = `You are AkiliQuest, a guide who sparks curiosity. The user has already explored "%s"
and these related ideas:
%s

Go deeper. Propose between 1 and %d NEW connections that are more advanced or cross-disciplinary.
Do not repeat any title listed above.

Respond with JSON only, no markdown and no commentary, in exactly this shape:
{
  "summary": "2-3 sentences on where the deeper path leads",
  "connections": [
    {"title": "", "description": "", "relationship": "", "confidence": 0.0}
  ],
  "keywords": ["keyword"],
  "difficulty": "beginner" | "intermediate" | "advanced",
  "estimatedReadingTime": 5
}`

const validateTemplate = `Decide whether the following input is a sensible topic to learn about: "%s"

Respond with JSON only:
{"isValid": true, "cleanedTopic": "corrected spelling and capitalization", "reason": "why it is invalid, if it is", "suggestions": ["up to 3 alternative topics"]}`

const suggestTemplate = `Suggest %d fascinating topics for a curious learner.
%s
Each topic should be 1-4 words, varied across science, art, history and technology.

Respond with JSON only: an array of strings, for example ["Black Holes", "Jazz"].`

func explorePrompt(topic string) string {
	return fmt.Sprintf(exploreTemplate, topic, topic, models.ExploreConnections)
}

func deeperPrompt(topic string, explored []string) string {
	return fmt.Sprintf(deeperTemplate, topic, bulletList(explored), models.ExploreConnections)
}

func validatePrompt(input string) string {
	return fmt.Sprintf(validateTemplate, input)
}

func suggestPrompt(explored []string, count int) string {
	history := "The learner has not explored anything yet."
	if len(explored) > 0 {
		history = "Avoid these topics the learner already explored:\n" + bulletList(explored)
	}
	return fmt.Sprintf(suggestTemplate, count, history)
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (none)"
	}
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- ")
		sb.WriteString(item)
	}
	return sb.String()
}
