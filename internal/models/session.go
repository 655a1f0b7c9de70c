package models

import "time"

// UserSession tracks gamified exploration progress for one client session.
type UserSession struct {
	SessionID            string    `json:"sessionId"`
	TopicsExplored       []string  `json:"topicsExplored"`
	TrailsGenerated      int       `json:"trailsGenerated"`
	TotalExplorationTime int       `json:"totalExplorationTime"`
	CuriosityScore       int       `json:"curiosityScore"`
	Achievements         []string  `json:"achievements"`
	CreatedAt            time.Time `json:"createdAt"`
	LastActiveAt         time.Time `json:"lastActiveAt"`
}

// SessionUpdate is a partial session write. Nil fields are left untouched on
// an existing session and seeded with defaults on a new one.
type SessionUpdate struct {
	SessionID            string   `json:"sessionId"`
	TopicsExplored       []string `json:"topicsExplored,omitempty"`
	TrailsGenerated      *int     `json:"trailsGenerated,omitempty"`
	TotalExplorationTime *int     `json:"totalExplorationTime,omitempty"`
	CuriosityScore       *int     `json:"curiosityScore,omitempty"`
	Achievements         []string `json:"achievements,omitempty"`
}

// NewSession seeds an empty session created at now.
func NewSession(id string, now time.Time) UserSession {
	return UserSession{
		SessionID:      id,
		TopicsExplored: []string{},
		Achievements:   []string{},
		CreatedAt:      now,
		LastActiveAt:   now,
	}
}

// Apply merges the supplied fields of u into s and refreshes LastActiveAt.
func (s *UserSession) Apply(u SessionUpdate, now time.Time) {
	if u.TopicsExplored != nil {
		s.TopicsExplored = u.TopicsExplored
	}
	if u.TrailsGenerated != nil {
		s.TrailsGenerated = *u.TrailsGenerated
	}
	if u.TotalExplorationTime != nil {
		s.TotalExplorationTime = *u.TotalExplorationTime
	}
	if u.CuriosityScore != nil {
		s.CuriosityScore = *u.CuriosityScore
	}
	if u.Achievements != nil {
		s.Achievements = u.Achievements
	}
	s.LastActiveAt = now
}

// Stats summarizes store contents.
type Stats struct {
	Topics    int64     `json:"topics"`
	Trails    int64     `json:"trails"`
	Sessions  int64     `json:"sessions"`
	Timestamp time.Time `json:"timestamp"`
}
