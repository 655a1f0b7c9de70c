package service

import (
	"context"
	"hash/fnv"
	"slices"
	"sync"

	"github.com/akiliquest/akiliquest/internal/models"
)

// Gamification rules.
const (
	scorePerTrail    = 10
	scorePerNewTopic = 5

	AchievementFirstTrail = "first-trail"
	AchievementExplorer5  = "explorer-5"
	AchievementDeepDiver  = "deep-diver"

	deepDiverDepth = 3
)

// progressStripes is the number of locks recordProgress hashes session ids onto.
const progressStripes = 32

func (s *ExploreService) progressLock(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.progress[h.Sum32()%progressStripes]
}

// recordProgress folds one exploration into the session. It is best effort:
// a failed write is logged and nil is returned. The read-modify-write is
// serialized per session within this process only.
func (s *ExploreService) recordProgress(ctx context.Context, sessionID, topicID string, minutes int, trailSaved bool, depth int) *models.UserSession {
	if sessionID == "" {
		return nil
	}
	mu := s.progressLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	cur := s.store.GetUserSession(ctx, sessionID)
	if cur == nil {
		fresh := models.NewSession(sessionID, s.now())
		cur = &fresh
	}

	explored := slices.Clone(cur.TopicsExplored)
	if explored == nil {
		explored = []string{}
	}
	score := cur.CuriosityScore
	if !slices.Contains(explored, topicID) {
		explored = append(explored, topicID)
		score += scorePerNewTopic
	}

	trails := cur.TrailsGenerated
	if trailSaved {
		trails++
		score += scorePerTrail
	}
	total := cur.TotalExplorationTime + max(minutes, 0)

	achievements := slices.Clone(cur.Achievements)
	if achievements == nil {
		achievements = []string{}
	}
	if trails >= 1 {
		achievements = models.AppendUnique(achievements, AchievementFirstTrail)
	}
	if len(explored) >= 5 {
		achievements = models.AppendUnique(achievements, AchievementExplorer5)
	}
	if trailSaved && depth >= deepDiverDepth {
		achievements = models.AppendUnique(achievements, AchievementDeepDiver)
	}

	sess, err := s.store.UpdateUserSession(ctx, models.SessionUpdate{
		SessionID:            sessionID,
		TopicsExplored:       explored,
		TrailsGenerated:      &trails,
		TotalExplorationTime: &total,
		CuriosityScore:       &score,
		Achievements:         achievements,
	})
	if err != nil {
		s.logger.Warn("session progress not saved", "session", sessionID, "error", err)
		return nil
	}
	return sess
}
