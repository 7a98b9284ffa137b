package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the chat service.
type Metrics struct {
	registry *prometheus.Registry

	chatRequests  *prometheus.CounterVec
	chatDuration  *prometheus.HistogramVec
	streamChunks  *prometheus.CounterVec
	tokens        *prometheus.CounterVec
	sessionsSwept prometheus.Counter
}

// NewMetrics creates and registers the service metrics. The sessionCount
// function is polled for the active session gauge and may be nil.
func NewMetrics(sessionCount func() float64) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: reg,
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrdesk_chat_requests_total",
			Help: "Chat requests handled, by agent and outcome.",
		}, []string{"agent", "status"}),
		chatDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrdesk_chat_duration_seconds",
			Help:    "Time spent handling a chat request.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"agent"}),
		streamChunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrdesk_stream_chunks_total",
			Help: "Chunks delivered over streaming responses, by agent.",
		}, []string{"agent"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrdesk_tokens_total",
			Help: "Model tokens consumed, by agent and direction.",
		}, []string{"agent", "type"}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrdesk_sessions_swept_total",
			Help: "Idle sessions removed by the background sweeper.",
		}),
	}
	reg.MustRegister(m.chatRequests, m.chatDuration, m.streamChunks, m.tokens, m.sessionsSwept)

	if sessionCount != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "hrdesk_sessions_active",
			Help: "Sessions currently held in memory.",
		}, sessionCount))
	}
	return m
}

// RecordChat records a completed chat request.
func (m *Metrics) RecordChat(agent, status string, duration time.Duration) {
	m.chatRequests.WithLabelValues(agent, status).Inc()
	m.chatDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordTokens counts model tokens consumed on behalf of an agent.
func (m *Metrics) RecordTokens(agent string, inputTokens, outputTokens int) {
	m.tokens.WithLabelValues(agent, "input").Add(float64(inputTokens))
	m.tokens.WithLabelValues(agent, "output").Add(float64(outputTokens))
}

// RecordStreamChunk counts one chunk delivered to a streaming client.
func (m *Metrics) RecordStreamChunk(agent string) {
	m.streamChunks.WithLabelValues(agent).Inc()
}

// RecordSweep counts sessions removed by the idle sweeper.
func (m *Metrics) RecordSweep(removed int) {
	m.sessionsSwept.Add(float64(removed))
}

// Handler serves the metrics in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
