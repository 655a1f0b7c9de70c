package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/akiliquest/akiliquest/internal/service"
	"github.com/go-chi/chi/v5/middleware"
)

// Error codes carried in APIError.Code.
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL_ERROR"
	CodeUnhealthy  = "UNHEALTHY"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *APIError    `json:"error,omitempty"`
	Metadata ResponseMeta `json:"metadata"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMeta is attached to every response.
type ResponseMeta struct {
	Timestamp      time.Time `json:"timestamp"`
	ProcessingTime int64     `json:"processingTime"`
	RequestID      string    `json:"requestId,omitempty"`
}

type startKey struct{}

func (s *Server) meta(r *http.Request) ResponseMeta {
	m := ResponseMeta{
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetReqID(r.Context()),
	}
	if start, ok := r.Context().Value(startKey{}).(time.Time); ok {
		m.ProcessingTime = time.Since(start).Milliseconds()
	}
	return m
}

func (s *Server) respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	s.write(w, status, APIResponse{Success: true, Data: data, Metadata: s.meta(r)})
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.write(w, status, APIResponse{
		Error:    &APIError{Code: code, Message: message},
		Metadata: s.meta(r),
	})
}

func (s *Server) write(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}

// respondServiceError maps service errors to HTTP statuses. Unexpected errors
// are logged and reported with a generic message.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrTopicNotFound),
		errors.Is(err, service.ErrTrailNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		s.respondError(w, r, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidTopic),
		errors.Is(err, service.ErrTrailTooDeep),
		errors.Is(err, service.ErrMissingSessionID),
		errors.Is(err, models.ErrInvalidShape),
		errors.Is(err, models.ErrUnsupportedFormat):
		s.respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
	default:
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err)
		s.respondError(w, r, http.StatusInternalServerError, CodeInternal,
			"Something went wrong. Please try again.")
	}
}
