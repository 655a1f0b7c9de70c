// Package explore turns topics into structured model output: prompt construction,
// bounded generation, response parsing and deterministic fallbacks.
package explore

// Outcome is the result of an orchestrated model call.
// Value is always usable; Degraded reports that it came from a fallback, with Reason
// holding the failure that caused it.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

func success[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

func fallback[T any](v T, err error) Outcome[T] {
	return Outcome[T]{Value: v, Degraded: true, Reason: err.Error()}
}
