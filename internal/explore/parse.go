package explore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/akiliquest/akiliquest/internal/models"
)

var (
	// ErrNoJSON indicates the model answer contained no JSON value.
	ErrNoJSON = errors.New("no JSON found in model response")

	// ErrInvalidResponse indicates decoded model output failed the schema checks.
	ErrInvalidResponse = errors.New("invalid model response")
)

// sanitize strips code fences and surrounding prose, returning the first complete
// JSON object or array in raw.
func sanitize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", ErrNoJSON
	}
	end := matchingClose(s, start)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated value", ErrNoJSON)
	}
	return s[start : end+1], nil
}

// matchingClose returns the index of the bracket closing the one at start,
// skipping brackets inside string literals. Returns -1 if unbalanced.
func matchingClose(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func decode[T any](raw string) (T, error) {
	var v T
	clean, err := sanitize(raw)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(clean), &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return v, nil
}

// parseExploration decodes an exploration answer. It must carry exactly
// models.ExploreConnections connections.
func parseExploration(raw string) (models.AIResponse, error) {
	resp, err := decode[models.AIResponse](raw)
	if err != nil {
		return resp, err
	}
	if len(resp.Connections) != models.ExploreConnections {
		return resp, fmt.Errorf("%w: expected %d connections, got %d",
			ErrInvalidResponse, models.ExploreConnections, len(resp.Connections))
	}
	if err := checkAIResponse(&resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// parseDeeper decodes a deeper exploration answer. Connections whose title repeats
// an explored one (or an earlier connection) are dropped; 1 to
// models.ExploreConnections must remain.
func parseDeeper(raw string, explored []string) (models.AIResponse, error) {
	resp, err := decode[models.AIResponse](raw)
	if err != nil {
		return resp, err
	}

	seen := append([]string(nil), explored...)
	kept := make([]models.Connection, 0, len(resp.Connections))
	for _, c := range resp.Connections {
		title := strings.TrimSpace(c.Title)
		if title == "" || models.ContainsFold(seen, title) {
			continue
		}
		seen = append(seen, title)
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return resp, fmt.Errorf("%w: no new connections", ErrInvalidResponse)
	}
	if len(kept) > models.ExploreConnections {
		kept = kept[:models.ExploreConnections]
	}
	resp.Connections = kept

	if err := checkAIResponse(&resp); err != nil {
		return resp, err
	}
	return resp, nil
}

func checkAIResponse(resp *models.AIResponse) error {
	resp.Summary = strings.TrimSpace(resp.Summary)
	if resp.Keywords == nil {
		resp.Keywords = []string{}
	}
	resp.Difficulty = models.Difficulty(strings.ToLower(strings.TrimSpace(string(resp.Difficulty))))
	if !resp.Difficulty.Valid() {
		return fmt.Errorf("%w: difficulty %q", ErrInvalidResponse, resp.Difficulty)
	}
	if err := models.ValidateAIResponse(resp); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// parseValidation decodes a topic verdict. A valid verdict without a cleaned
// topic falls back to the trimmed input.
func parseValidation(raw, input string) (models.TopicValidation, error) {
	v, err := decode[models.TopicValidation](raw)
	if err != nil {
		return v, err
	}
	v.CleanedTopic = strings.TrimSpace(v.CleanedTopic)
	if v.IsValid && v.CleanedTopic == "" {
		v.CleanedTopic = strings.TrimSpace(input)
	}
	if !v.IsValid && strings.TrimSpace(v.Reason) == "" {
		return v, fmt.Errorf("%w: rejection without reason", ErrInvalidResponse)
	}
	v.Suggestions = cleanList(v.Suggestions, 0)
	return v, nil
}

// parseSuggestions accepts a JSON array of strings or an object with a
// "suggestions" array. At most count unique, non-empty entries are returned.
func parseSuggestions(raw string, count int) ([]string, error) {
	clean, err := sanitize(raw)
	if err != nil {
		return nil, err
	}

	var list []string
	if strings.HasPrefix(clean, "{") {
		var wrapped struct {
			Suggestions []string `json:"suggestions"`
			Topics      []string `json:"topics"`
		}
		if err := json.Unmarshal([]byte(clean), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		list = append(wrapped.Suggestions, wrapped.Topics...)
	} else if err := json.Unmarshal([]byte(clean), &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	list = cleanList(list, count)
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no suggestions", ErrInvalidResponse)
	}
	return list, nil
}

// cleanList trims entries, drops blanks and case-insensitive repeats, and caps
// the result at limit when limit > 0. Never returns nil.
func cleanList(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || models.ContainsFold(out, item) {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
