// Package client provides an HTTP client for the AkiliQuest API server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akiliquest/akiliquest/internal/explore"
	"github.com/akiliquest/akiliquest/internal/metrics"
	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/akiliquest/akiliquest/internal/service"
)

// DefaultEndpoint is used when neither an endpoint nor AKILIQUEST_SERVER_URL is set.
const DefaultEndpoint = "http://localhost:8080"

// Client talks to the AkiliQuest JSON API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a client.
// If endpoint is empty, uses AKILIQUEST_SERVER_URL or DefaultEndpoint.
// Timeout can be configured via AKILIQUEST_CLIENT_TIMEOUT (default 2m, long for LLM calls).
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("AKILIQUEST_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	timeout := 2 * time.Minute
	if t := os.Getenv("AKILIQUEST_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// outcome mirrors the server's body for orchestrated AI calls.
type outcome[T any] struct {
	Result   T      `json:"result"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason"`
}

func (o outcome[T]) toOutcome() explore.Outcome[T] {
	return explore.Outcome[T]{Value: o.Result, Degraded: o.Degraded, Reason: o.Reason}
}

// Execute sends a request and decodes the envelope's data into result.
func (c *Client) Execute(ctx context.Context, method, path string, body, result any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("unmarshal data: %w", err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

func withLimit(path string, limit int, extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// =============================================================================
// EXPLORATION
// =============================================================================

// Explore asks the server for a new trail on topic.
func (c *Client) Explore(ctx context.Context, req service.ExploreRequest) (*service.ExploreResult, error) {
	var res service.ExploreResult
	if err := c.Execute(ctx, http.MethodPost, "/api/explore", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ExploreDeeper extends the latest trail of a topic.
func (c *Client) ExploreDeeper(ctx context.Context, req service.DeeperRequest) (*service.ExploreResult, error) {
	var res service.ExploreResult
	if err := c.Execute(ctx, http.MethodPost, "/api/explore/deeper", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Validate checks a raw topic input.
func (c *Client) Validate(ctx context.Context, input string) (explore.Outcome[models.TopicValidation], error) {
	var out outcome[models.TopicValidation]
	err := c.Execute(ctx, http.MethodPost, "/api/topics/validate", map[string]string{"input": input}, &out)
	return out.toOutcome(), err
}

// Suggest proposes new topics.
func (c *Client) Suggest(ctx context.Context, sessionID string, explored []string, count int) (explore.Outcome[[]string], error) {
	body := map[string]any{"exploredTopics": explored}
	if count > 0 {
		body["count"] = count
	}
	if sessionID != "" {
		body["sessionId"] = sessionID
	}
	var out outcome[[]string]
	err := c.Execute(ctx, http.MethodPost, "/api/topics/suggest", body, &out)
	return out.toOutcome(), err
}

// =============================================================================
// QUERIES
// =============================================================================

// Search finds topics matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.Topic, error) {
	var topics []models.Topic
	path := withLimit("/api/topics/search", limit, url.Values{"q": {query}})
	if err := c.Execute(ctx, http.MethodGet, path, nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// Popular lists the most explored topics.
func (c *Client) Popular(ctx context.Context, limit int) ([]models.Topic, error) {
	var topics []models.Topic
	if err := c.Execute(ctx, http.MethodGet, withLimit("/api/topics/popular", limit, nil), nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// RecentTrails lists the newest trails.
func (c *Client) RecentTrails(ctx context.Context, limit int) ([]models.CuriosityTrail, error) {
	var trails []models.CuriosityTrail
	if err := c.Execute(ctx, http.MethodGet, withLimit("/api/trails/recent", limit, nil), nil, &trails); err != nil {
		return nil, err
	}
	return trails, nil
}

// Topic fetches one topic.
func (c *Client) Topic(ctx context.Context, id string) (*models.Topic, error) {
	var t models.Topic
	if err := c.Execute(ctx, http.MethodGet, "/api/topics/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Trail fetches the latest trail of a topic.
func (c *Client) Trail(ctx context.Context, topicID string) (*models.CuriosityTrail, error) {
	var t models.CuriosityTrail
	if err := c.Execute(ctx, http.MethodGet, "/api/topics/"+url.PathEscape(topicID)+"/trail", nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Export downloads the latest trail of a topic and returns the bytes and file name.
func (c *Client) Export(ctx context.Context, topicID string, format models.ExportFormat) ([]byte, string, error) {
	path := "/api/topics/" + url.PathEscape(topicID) + "/trail/export"
	if format != "" {
		path += "?format=" + url.QueryEscape(string(format))
	}
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var env envelope
		if json.Unmarshal(data, &env) == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return nil, "", apiErr
	}
	return data, fileName(resp.Header.Get("Content-Disposition")), nil
}

// fileName extracts filename="..." from a Content-Disposition header.
func fileName(disposition string) string {
	_, name, ok := strings.Cut(disposition, "filename=")
	if !ok {
		return ""
	}
	if unquoted, err := strconv.Unquote(name); err == nil {
		return unquoted
	}
	return strings.Trim(name, `"`)
}

// =============================================================================
// SESSIONS & STATUS
// =============================================================================

// UpdateSession applies a partial session write.
func (c *Client) UpdateSession(ctx context.Context, u models.SessionUpdate) (*models.UserSession, error) {
	var sess models.UserSession
	if err := c.Execute(ctx, http.MethodPut, "/api/sessions/"+url.PathEscape(u.SessionID), u, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Session fetches one session.
func (c *Client) Session(ctx context.Context, id string) (*models.UserSession, error) {
	var sess models.UserSession
	if err := c.Execute(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(id), nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Health reports server and database status.
type Health struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
	Model    string `json:"model"`
	Version  string `json:"version"`
}

// Health queries /health. An unhealthy server answers 503 with a body; that is
// returned as a Health, not an error.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	err := c.Execute(ctx, http.MethodGet, "/health", nil, &h)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable {
		return &Health{Status: "unhealthy"}, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Stats is the body of /api/stats.
type Stats struct {
	Store   models.Stats      `json:"store"`
	Runtime *metrics.Snapshot `json:"runtime,omitempty"`
}

// Stats fetches store counts and runtime metrics.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.Execute(ctx, http.MethodGet, "/api/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
