// Package memstore is an in-process Store used for development and tests.
package memstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/google/uuid"
)

var errNoTextIndex = errors.New("text index unavailable")

// Store keeps topics, trails and sessions in maps guarded by one RWMutex.
type Store struct {
	mu       sync.RWMutex
	topics   map[string]*models.Topic // by id
	titles   map[string]string        // title key -> id
	trails   []models.CuriosityTrail
	sessions map[string]*models.UserSession

	now         func() time.Time
	noTextIndex bool
	logger      *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithoutTextIndex makes ranked search fail so the substring fallback runs.
func WithoutTextIndex() Option {
	return func(s *Store) { s.noTextIndex = true }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		topics:   make(map[string]*models.Topic),
		titles:   make(map[string]string),
		sessions: make(map[string]*models.UserSession),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveTopic inserts a topic or increments the count of the one with the same title key.
func (s *Store) SaveTopic(_ context.Context, in models.TopicInput) (*models.Topic, error) {
	key := models.TitleKey(in.Title)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.titles[key]; ok {
		t := s.topics[id]
		fillMissing(t, in)
		t.ExplorationCount++
		t.UpdatedAt = now
		return copyTopic(t), nil
	}

	t := models.NewTopic(in, now)
	t.Title = strings.TrimSpace(t.Title)
	if err := models.ValidateTopic(&t); err != nil {
		return nil, fmt.Errorf("save topic: %w", err)
	}
	t.ID = uuid.NewString()
	s.topics[t.ID] = &t
	s.titles[key] = t.ID
	return copyTopic(&t), nil
}

// fillMissing copies fields that are still empty on t from in. Stored values
// always win.
func fillMissing(t *models.Topic, in models.TopicInput) {
	if t.Description == "" {
		t.Description = in.Description
	}
	if len(t.Tags) == 0 && len(in.Tags) > 0 {
		t.Tags = slices.Clone(in.Tags)
	}
	if t.Difficulty == "" && in.Difficulty.Valid() {
		t.Difficulty = in.Difficulty
	}
	if t.Category == "" {
		t.Category = in.Category
	}
	if len(t.Embedding) == 0 && len(in.Embedding) > 0 {
		t.Embedding = slices.Clone(in.Embedding)
	}
}

// GetTopicByID returns the topic or nil.
func (s *Store) GetTopicByID(_ context.Context, id string) *models.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.topics[id]
	if !ok {
		return nil
	}
	return copyTopic(t)
}

// SearchTopics ranks topics by query term hits, falling back to substring match.
func (s *Store) SearchTopics(_ context.Context, query string, limit int) []models.Topic {
	limit = orDefault(limit, 10)
	s.mu.RLock()
	defer s.mu.RUnlock()

	results, err := s.rankedSearch(query, limit)
	if err != nil {
		s.logger.Warn("text search failed, using substring match", "query", query, "error", err)
		results = s.substringSearch(query, limit)
	}
	return results
}

func (s *Store) rankedSearch(query string, limit int) ([]models.Topic, error) {
	if s.noTextIndex {
		return nil, errNoTextIndex
	}
	terms := strings.Fields(strings.ToLower(query))

	type hit struct {
		topic *models.Topic
		score int
	}
	var hits []hit
	for _, t := range s.topics {
		score := 0
		title := strings.ToLower(t.Title)
		desc := strings.ToLower(t.Description)
		for _, term := range terms {
			if strings.Contains(title, term) {
				score += 2
			}
			if strings.Contains(desc, term) {
				score++
			}
			if models.ContainsFold(t.Tags, term) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, hit{topic: t, score: score})
		}
	}
	slices.SortFunc(hits, func(a, b hit) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(b.topic.ExplorationCount, a.topic.ExplorationCount)
	})

	out := make([]models.Topic, 0, min(len(hits), limit))
	for _, h := range hits {
		if len(out) == limit {
			break
		}
		out = append(out, *copyTopic(h.topic))
	}
	return out, nil
}

func (s *Store) substringSearch(query string, limit int) []models.Topic {
	q := strings.ToLower(query)
	out := []models.Topic{}
	for _, t := range s.sortedTopics() {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, *copyTopic(t))
		}
	}
	return out
}

// GetPopularTopics lists topics by exploration count, highest first.
func (s *Store) GetPopularTopics(_ context.Context, limit int) []models.Topic {
	limit = orDefault(limit, 20)
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := s.sortedTopics()
	out := make([]models.Topic, 0, min(len(sorted), limit))
	for _, t := range sorted[:min(len(sorted), limit)] {
		out = append(out, *copyTopic(t))
	}
	return out
}

// sortedTopics orders topics by exploration count desc, then title. Caller holds the lock.
func (s *Store) sortedTopics() []*models.Topic {
	all := make([]*models.Topic, 0, len(s.topics))
	for _, t := range s.topics {
		all = append(all, t)
	}
	slices.SortFunc(all, func(a, b *models.Topic) int {
		if c := cmp.Compare(b.ExplorationCount, a.ExplorationCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
	return all
}

// SaveCuriosityTrail appends a trail.
func (s *Store) SaveCuriosityTrail(_ context.Context, trail models.CuriosityTrail) (*models.CuriosityTrail, error) {
	if err := models.ValidateTrail(&trail); err != nil {
		return nil, fmt.Errorf("save curiosity trail: %w", err)
	}
	trail = copyTrail(trail)
	trail.ID = uuid.NewString()
	if trail.GeneratedAt.IsZero() {
		trail.GeneratedAt = s.now()
	}

	s.mu.Lock()
	s.trails = append(s.trails, trail)
	s.mu.Unlock()

	out := copyTrail(trail)
	return &out, nil
}

// GetCuriosityTrailByTopic returns the trail with the latest GeneratedAt, or nil.
func (s *Store) GetCuriosityTrailByTopic(_ context.Context, topicID string) *models.CuriosityTrail {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.CuriosityTrail
	for i := range s.trails {
		t := &s.trails[i]
		if t.TopicID != topicID {
			continue
		}
		if latest == nil || !t.GeneratedAt.Before(latest.GeneratedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil
	}
	out := copyTrail(*latest)
	return &out
}

// GetRecentTrails lists trails by GeneratedAt, newest first.
func (s *Store) GetRecentTrails(_ context.Context, limit int) []models.CuriosityTrail {
	limit = orDefault(limit, 10)
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := slices.Clone(s.trails)
	slices.SortStableFunc(sorted, func(a, b models.CuriosityTrail) int {
		return b.GeneratedAt.Compare(a.GeneratedAt)
	})
	out := make([]models.CuriosityTrail, 0, min(len(sorted), limit))
	for _, t := range sorted[:min(len(sorted), limit)] {
		out = append(out, copyTrail(t))
	}
	return out
}

// UpdateUserSession creates the session on first use and merges u into it.
func (s *Store) UpdateUserSession(_ context.Context, u models.SessionUpdate) (*models.UserSession, error) {
	if u.SessionID == "" {
		return nil, fmt.Errorf("update user session: empty session id")
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[u.SessionID]
	if !ok {
		fresh := models.NewSession(u.SessionID, now)
		sess = &fresh
		s.sessions[u.SessionID] = sess
	}
	sess.Apply(u, now)
	return copySession(sess), nil
}

// GetUserSession returns the session or nil.
func (s *Store) GetUserSession(_ context.Context, id string) *models.UserSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	return copySession(sess)
}

// CheckHealth always reports true.
func (s *Store) CheckHealth(context.Context) bool {
	return true
}

// GetStats counts stored records.
func (s *Store) GetStats(context.Context) *models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &models.Stats{
		Topics:    int64(len(s.topics)),
		Trails:    int64(len(s.trails)),
		Sessions:  int64(len(s.sessions)),
		Timestamp: s.now(),
	}
}

// WipeData drops every record.
func (s *Store) WipeData(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = make(map[string]*models.Topic)
	s.titles = make(map[string]string)
	s.trails = nil
	s.sessions = make(map[string]*models.UserSession)
	return nil
}

// Close is a no-op.
func (s *Store) Close(context.Context) error {
	return nil
}

func orDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

func copyTopic(t *models.Topic) *models.Topic {
	c := *t
	c.Tags = slices.Clone(t.Tags)
	c.Embedding = slices.Clone(t.Embedding)
	return &c
}

func copyTrail(t models.CuriosityTrail) models.CuriosityTrail {
	nodes := make([]models.CuriosityNode, len(t.Nodes))
	for i, n := range t.Nodes {
		n.Connections = slices.Clone(n.Connections)
		n.Sources = slices.Clone(n.Sources)
		nodes[i] = n
	}
	t.Nodes = nodes
	return t
}

func copySession(s *models.UserSession) *models.UserSession {
	c := *s
	c.TopicsExplored = slices.Clone(s.TopicsExplored)
	c.Achievements = slices.Clone(s.Achievements)
	return &c
}
