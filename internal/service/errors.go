package service

import "errors"

var (
	// ErrInvalidTopic indicates topic validation rejected the input.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrTopicNotFound indicates no topic has the requested id.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrTrailNotFound indicates the topic has no saved trail yet.
	ErrTrailNotFound = errors.New("curiosity trail not found")

	// ErrTrailTooDeep indicates the latest trail already reached models.MaxTrailDepth.
	ErrTrailTooDeep = errors.New("curiosity trail is at maximum depth")

	// ErrSessionNotFound indicates no session has the requested id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrMissingSessionID indicates a session write without an id.
	ErrMissingSessionID = errors.New("session id is required")
)
