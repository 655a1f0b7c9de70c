package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/akiliquest/akiliquest/internal/explore"
	"github.com/akiliquest/akiliquest/internal/metrics"
	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/akiliquest/akiliquest/internal/service"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type exploreRequest struct {
	Topic     string `json:"topic" validate:"required"`
	SessionID string `json:"sessionId,omitempty" validate:"omitempty,max=128"`
}

type deeperRequest struct {
	TopicID   string `json:"topicId" validate:"required,max=128"`
	SessionID string `json:"sessionId,omitempty" validate:"omitempty,max=128"`
}

type validateRequest struct {
	Input string `json:"input" validate:"required"`
}

type suggestRequest struct {
	ExploredTopics []string `json:"exploredTopics,omitempty" validate:"omitempty,max=50,dive,max=100"`
	Count          int      `json:"count,omitempty" validate:"omitempty,min=1,max=10"`
	SessionID      string   `json:"sessionId,omitempty" validate:"omitempty,max=128"`
}

type sessionRequest struct {
	TopicsExplored       []string `json:"topicsExplored,omitempty"`
	TrailsGenerated      *int     `json:"trailsGenerated,omitempty" validate:"omitempty,gte=0"`
	TotalExplorationTime *int     `json:"totalExplorationTime,omitempty" validate:"omitempty,gte=0"`
	CuriosityScore       *int     `json:"curiosityScore,omitempty" validate:"omitempty,gte=0"`
	Achievements         []string `json:"achievements,omitempty"`
}

// outcomeData is the response body of orchestrated AI calls.
type outcomeData[T any] struct {
	Result   T      `json:"result"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

func newOutcomeData[T any](o explore.Outcome[T]) outcomeData[T] {
	return outcomeData[T]{Result: o.Value, Degraded: o.Degraded, Reason: o.Reason}
}

type healthData struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
	Model    string `json:"model"`
	Version  string `json:"version"`
}

type statsData struct {
	Store   *models.Stats     `json:"store"`
	Runtime *metrics.Snapshot `json:"runtime,omitempty"`
}

// decode reads a JSON body into dst and runs its validate tags.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		s.respondError(w, r, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := models.ValidateRequest(dst); err != nil {
		s.respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return false
	}
	return true
}

// queryLimit parses ?limit=. Missing means 0, which the service replaces with its default.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	return n, nil
}

func (s *Server) explore(w http.ResponseWriter, r *http.Request) {
	var req exploreRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.svc.Explore(r.Context(), service.ExploreRequest{Topic: req.Topic, SessionID: req.SessionID})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusOK, res)
}

func (s *Server) exploreDeeper(w http.ResponseWriter, r *http.Request) {
	var req deeperRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.svc.ExploreDeeper(r.Context(), service.DeeperRequest{TopicID: req.TopicID, SessionID: req.SessionID})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusOK, res)
}

func (s *Server) validateTopic(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respondJSON(w, r, http.StatusOK, newOutcomeData(s.svc.Validate(r.Context(), req.Input)))
}

func (s *Server) suggestTopics(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if !s.decode(w, r, &req) {
		return
	}
	out := s.svc.Suggest(r.Context(), req.SessionID, req.ExploredTopics, req.Count)
	s.respondJSON(w, r, http.StatusOK, newOutcomeData(out))
}

func (s *Server) searchTopics(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.respondError(w, r, http.StatusBadRequest, CodeBadRequest, "query parameter q is required")
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	s.respondJSON(w, r, http.StatusOK, s.svc.Search(r.Context(), q, limit))
}

func (s *Server) popularTopics(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	s.respondJSON(w, r, http.StatusOK, s.svc.Popular(r.Context(), limit))
}

func (s *Server) recentTrails(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	s.respondJSON(w, r, http.StatusOK, s.svc.RecentTrails(r.Context(), limit))
}

func (s *Server) getTopic(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Topic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusOK, t)
}

func (s *Server) getTrail(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Trail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusOK, t)
}

// exportTrail streams the export file itself, not an envelope.
func (s *Server) exportTrail(w http.ResponseWriter, r *http.Request) {
	format := models.ExportFormat(strings.ToLower(r.URL.Query().Get("format")))
	data, name, err := s.svc.Export(r.Context(), chi.URLParam(r, "id"), format)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	contentType := "application/json"
	if format == models.ExportYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("write export failed", "error", err)
	}
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !s.decode(w, r, &req) {
		return
	}
	sess, err := s.svc.UpdateSession(r.Context(), models.SessionUpdate{
		SessionID:            chi.URLParam(r, "id"),
		TopicsExplored:       req.TopicsExplored,
		TrailsGenerated:      req.TrailsGenerated,
		TotalExplorationTime: req.TotalExplorationTime,
		CuriosityScore:       req.CuriosityScore,
		Achievements:         req.Achievements,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusOK, sess)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusOK, sess)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st := s.svc.Stats(r.Context())
	if st == nil {
		s.respondError(w, r, http.StatusServiceUnavailable, CodeUnhealthy, "statistics are unavailable")
		return
	}
	data := statsData{Store: st}
	if s.collector != nil {
		snap := s.collector.Snapshot()
		data.Runtime = &snap
	}
	s.respondJSON(w, r, http.StatusOK, data)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ok := s.svc.Health(r.Context())
	data := healthData{
		Status:   "healthy",
		Database: ok,
		Model:    s.svc.Model(),
		Version:  s.version,
	}
	if !ok {
		data.Status = "unhealthy"
		s.write(w, http.StatusServiceUnavailable, APIResponse{
			Data:     data,
			Error:    &APIError{Code: CodeUnhealthy, Message: "database is unreachable"},
			Metadata: s.meta(r),
		})
		return
	}
	s.respondJSON(w, r, http.StatusOK, data)
}
