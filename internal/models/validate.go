package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidShape indicates a record failed its structural checks before a write.
var ErrInvalidShape = errors.New("invalid data structure")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateTopic checks a topic before insert.
func ValidateTopic(t *Topic) error {
	return check("topic", t)
}

// ValidateTrail checks a curiosity trail before insert.
func ValidateTrail(t *CuriosityTrail) error {
	return check("curiosity trail", t)
}

// ValidateAIResponse checks the typed fields of a decoded model response.
func ValidateAIResponse(r *AIResponse) error {
	return check("ai response", r)
}

// ValidateRequest checks an API request body against its validate tags.
func ValidateRequest(v any) error {
	return check("request", v)
}

func check(kind string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %s: %v", ErrInvalidShape, kind, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidShape, kind, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
