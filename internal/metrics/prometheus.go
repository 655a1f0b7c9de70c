package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "akiliquest"

// Exporter publishes HTTP metrics and the in-memory Collector in Prometheus format.
type Exporter struct {
	registry     *prometheus.Registry
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewExporter creates an exporter with its own registry so tests can build many.
func NewExporter(c *Collector) *Exporter {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	registry.MustRegister(httpRequests, httpDuration)
	if c != nil {
		registry.MustRegister(&collectorBridge{c: c})
	}

	return &Exporter{
		registry:     registry,
		httpRequests: httpRequests,
		httpDuration: httpDuration,
	}
}

// ObserveRequest records one served HTTP request.
func (e *Exporter) ObserveRequest(method, route, status string, d time.Duration) {
	e.httpRequests.WithLabelValues(method, route, status).Inc()
	e.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry at /metrics.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

var (
	opCountDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "operations_total"),
		"Completed operations by kind", []string{"operation"}, nil)
	opSecondsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "operation_seconds_total"),
		"Cumulative operation time by kind", []string{"operation"}, nil)
	tokensDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "llm_tokens_total"),
		"LLM tokens by direction", []string{"direction"}, nil)
	aiCallsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "ai_calls_total"),
		"Orchestrated AI calls", nil, nil)
	degradedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "ai_degraded_total"),
		"AI calls answered with a fallback", nil, nil)
)

// collectorBridge reads the Collector on every scrape.
type collectorBridge struct {
	c *Collector
}

func (b *collectorBridge) Describe(ch chan<- *prometheus.Desc) {
	ch <- opCountDesc
	ch <- opSecondsDesc
	ch <- tokensDesc
	ch <- aiCallsDesc
	ch <- degradedDesc
}

func (b *collectorBridge) Collect(ch chan<- prometheus.Metric) {
	for _, op := range Operations {
		m, ok := b.c.operation(op)
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(opCountDesc, prometheus.CounterValue, float64(m.Count), op)
		ch <- prometheus.MustNewConstMetric(opSecondsDesc, prometheus.CounterValue, m.TotalTime.Seconds(), op)
		if op == OpLLMGenerate {
			ch <- prometheus.MustNewConstMetric(tokensDesc, prometheus.CounterValue, float64(m.TotalInputTokens), "input")
			ch <- prometheus.MustNewConstMetric(tokensDesc, prometheus.CounterValue, float64(m.TotalOutputTokens), "output")
		}
	}
	snap := b.c.Snapshot()
	ch <- prometheus.MustNewConstMetric(aiCallsDesc, prometheus.CounterValue, float64(snap.AICalls))
	ch <- prometheus.MustNewConstMetric(degradedDesc, prometheus.CounterValue, float64(snap.Degraded))
}
