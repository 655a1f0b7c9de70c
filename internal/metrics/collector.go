// Package metrics collects in-memory runtime statistics and exports them to Prometheus.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Token metrics (only for LLM operations)
	TotalInputTokens  int64
	TotalOutputTokens int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"totalTimeMs"`
	AvgTimeMs   float64 `json:"avgTimeMs"`
	MinTimeMs   int64   `json:"minTimeMs"`
	MaxTimeMs   int64   `json:"maxTimeMs"`

	// Token totals (nil if not applicable)
	TotalInputTokens  *int64 `json:"totalInputTokens,omitempty"`
	TotalOutputTokens *int64 `json:"totalOutputTokens,omitempty"`
}

// Snapshot represents runtime statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64            `json:"uptimeSeconds"`
	LLMGenerate   *OperationSnapshot `json:"llmGenerate,omitempty"`
	Embedding     *OperationSnapshot `json:"embedding,omitempty"`
	DBRead        *OperationSnapshot `json:"dbRead,omitempty"`
	DBWrite       *OperationSnapshot `json:"dbWrite,omitempty"`
	DBSearch      *OperationSnapshot `json:"dbSearch,omitempty"`
	AICalls       int64              `json:"aiCalls"`
	Degraded      int64              `json:"degraded"`
}

// Operation names for the collector.
const (
	OpLLMGenerate = "llm_generate"
	OpEmbedding   = "embedding"
	OpDBRead      = "db_read"
	OpDBWrite     = "db_write"
	OpDBSearch    = "db_search"
)

// Operations lists every timed operation in display order.
var Operations = []string{OpLLMGenerate, OpEmbedding, OpDBRead, OpDBWrite, OpDBSearch}

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe and no-ops on a nil receiver.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
	aiCalls   int64
	degraded  int64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.RecordLLMUsage(op, duration, 0, 0)
}

// RecordLLMUsage records timing and token usage for an LLM operation.
func (c *Collector) RecordLLMUsage(op string, duration time.Duration, inputTokens, outputTokens int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration
	m.MinTime = min(m.MinTime, duration)
	m.MaxTime = max(m.MaxTime, duration)
	m.TotalInputTokens += inputTokens
	m.TotalOutputTokens += outputTokens
}

// RecordAICall counts one orchestrated AI call and whether it fell back.
func (c *Collector) RecordAICall(degraded bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.aiCalls++
	if degraded {
		c.degraded++
	}
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}

	if m.TotalInputTokens > 0 || m.TotalOutputTokens > 0 {
		totalIn := m.TotalInputTokens
		totalOut := m.TotalOutputTokens
		snap.TotalInputTokens = &totalIn
		snap.TotalOutputTokens = &totalOut
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		LLMGenerate:   snapshotOp(c.ops[OpLLMGenerate]),
		Embedding:     snapshotOp(c.ops[OpEmbedding]),
		DBRead:        snapshotOp(c.ops[OpDBRead]),
		DBWrite:       snapshotOp(c.ops[OpDBWrite]),
		DBSearch:      snapshotOp(c.ops[OpDBSearch]),
		AICalls:       c.aiCalls,
		Degraded:      c.degraded,
	}
}

// operation returns a copy of the raw metrics for op.
func (c *Collector) operation(op string) (OperationMetrics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.ops[op]
	if !ok {
		return OperationMetrics{}, false
	}
	return *m, true
}
