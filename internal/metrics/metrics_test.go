package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorSnapshot(t *testing.T) {
	c := NewCollector()

	assert.Nil(t, c.Snapshot().LLMGenerate, "no data yet")

	c.RecordLLMUsage(OpLLMGenerate, 100*time.Millisecond, 10, 40)
	c.RecordLLMUsage(OpLLMGenerate, 300*time.Millisecond, 20, 60)
	c.RecordTiming(OpDBWrite, 5*time.Millisecond)

	snap := c.Snapshot()
	require.NotNil(t, snap.LLMGenerate)
	assert.Equal(t, int64(2), snap.LLMGenerate.Count)
	assert.Equal(t, int64(100), snap.LLMGenerate.MinTimeMs)
	assert.Equal(t, int64(300), snap.LLMGenerate.MaxTimeMs)
	assert.InDelta(t, 200.0, snap.LLMGenerate.AvgTimeMs, 0.001)
	require.NotNil(t, snap.LLMGenerate.TotalInputTokens)
	assert.Equal(t, int64(30), *snap.LLMGenerate.TotalInputTokens)
	assert.Equal(t, int64(100), *snap.LLMGenerate.TotalOutputTokens)

	require.NotNil(t, snap.DBWrite)
	assert.Nil(t, snap.DBWrite.TotalInputTokens)
}

func TestCollectorAICalls(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(degraded bool) {
			defer wg.Done()
			c.RecordAICall(degraded)
		}(i%4 == 0)
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, int64(20), snap.AICalls)
	assert.Equal(t, int64(5), snap.Degraded)
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.RecordTiming(OpDBRead, time.Second)
	c.RecordAICall(true)
	assert.Equal(t, Snapshot{}, c.Snapshot())
}

func TestExporterHandler(t *testing.T) {
	c := NewCollector()
	c.RecordLLMUsage(OpLLMGenerate, time.Second, 3, 4)
	c.RecordAICall(true)

	e := NewExporter(c)
	e.ObserveRequest(http.MethodPost, "/api/explore", "200", 20*time.Millisecond)

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `akiliquest_http_requests_total{method="POST",route="/api/explore",status="200"} 1`)
	assert.Contains(t, text, `akiliquest_operations_total{operation="llm_generate"} 1`)
	assert.Contains(t, text, `akiliquest_llm_tokens_total{direction="output"} 4`)
	assert.Contains(t, text, "akiliquest_ai_degraded_total 1")
}
