// Package metrics exposes the bot's Prometheus collectors. All recording
// methods are safe on a nil *Metrics so components can run without metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "relaybot"

// Metrics groups the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	messages     *prometheus.CounterVec
	upstream     *prometheus.CounterVec
	latency      prometheus.Histogram
	rotations    *prometheus.CounterVec
	cooldowns    prometheus.Counter
	completions  *prometheus.CounterVec
	sessions     prometheus.Gauge
	evictions    prometheus.Counter
	sendFailures prometheus.Counter
}

// New creates a Metrics instance with its own registry, including the
// standard Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Inbound chat messages by kind (text, media, command).",
		}, []string{"kind"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Generative API calls by outcome class.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of individual generative API calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 45},
		}),
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_rotations_total",
			Help:      "Credential cursor advances by reason.",
		}, []string{"reason"}),
		cooldowns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_cooldowns_total",
			Help:      "Credentials placed in cool-down after a rate-limit signal.",
		}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Logical reply requests by final result.",
		}, []string{"result"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Chat sessions currently held in memory.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "Sessions removed by the idle sweep.",
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Outbound chat sends that failed.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.messages, m.upstream, m.latency, m.rotations, m.cooldowns,
		m.completions, m.sessions, m.evictions, m.sendFailures,
	)
	return m
}

// Handler returns the HTTP handler serving the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry. Exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordMessage counts an inbound message of the given kind.
func (m *Metrics) RecordMessage(kind string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(kind).Inc()
}

// RecordUpstream records one generative API call.
func (m *Metrics) RecordUpstream(outcome string, latency time.Duration) {
	if m == nil {
		return
	}
	m.upstream.WithLabelValues(outcome).Inc()
	m.latency.Observe(latency.Seconds())
}

// RecordRotation counts a cursor advance.
func (m *Metrics) RecordRotation(reason string) {
	if m == nil {
		return
	}
	m.rotations.WithLabelValues(reason).Inc()
}

// RecordCooldown counts a credential entering cool-down.
func (m *Metrics) RecordCooldown() {
	if m == nil {
		return
	}
	m.cooldowns.Inc()
}

// RecordCompletion counts the final result of a reply request.
func (m *Metrics) RecordCompletion(result string) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(result).Inc()
}

// SetSessions sets the active session gauge.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

// RecordEvictions adds n evicted sessions.
func (m *Metrics) RecordEvictions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.evictions.Add(float64(n))
}

// RecordSendFailure counts a failed outbound send.
func (m *Metrics) RecordSendFailure() {
	if m == nil {
		return
	}
	m.sendFailures.Inc()
}
