// Package metrics provides Prometheus instrumentation for emocore.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every emocore metric name.
const Namespace = "emocore"

// Manager owns a private registry and every emocore collector. A nil or
// disabled Manager accepts all calls and records nothing.
type Manager struct {
	registry *prometheus.Registry
	enabled  bool

	classifications   *prometheus.CounterVec
	classifyDuration  prometheus.Histogram
	interactionsTotal *prometheus.CounterVec

	retrainRuns     *prometheus.CounterVec
	retrainDuration prometheus.Histogram

	persistFailures   *prometheus.CounterVec
	externalFallbacks *prometheus.CounterVec

	trendDays      prometheus.Gauge
	activeSessions prometheus.Gauge
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool

	ClassifyDurationBuckets []float64
	RetrainDurationBuckets  []float64
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:                 true,
		ClassifyDurationBuckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		RetrainDurationBuckets:  []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	}
}

// NewManager creates a new metrics manager.
func NewManager(cfg Config) *Manager {
	if !cfg.Enabled {
		return &Manager{enabled: false}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Manager{
		registry: registry,
		enabled:  true,
	}

	m.classifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "classifications_total",
		Help:      "Total number of classifications by result source and primary emotion",
	}, []string{"source", "primary"})

	m.classifyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "classify_duration_seconds",
		Help:      "Classification latency in seconds",
		Buckets:   cfg.ClassifyDurationBuckets,
	})

	m.interactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "interactions_logged_total",
		Help:      "Total number of interaction log requests by outcome",
	}, []string{"accepted"})

	m.retrainRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "retrain_runs_total",
		Help:      "Total number of retraining runs by status",
	}, []string{"status"})

	m.retrainDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "retrain_duration_seconds",
		Help:      "Retraining run duration in seconds",
		Buckets:   cfg.RetrainDurationBuckets,
	})

	m.persistFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "persistence_failures_total",
		Help:      "Total number of swallowed persistence failures by operation",
	}, []string{"op"})

	m.externalFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "external_fallbacks_total",
		Help:      "Total number of external classifier calls that fell back to rule-based scoring",
	}, []string{"reason"})

	m.trendDays = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "trend_days",
		Help:      "Number of day keys retained by the trend store",
	})

	m.activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "active_sessions",
		Help:      "Number of live conversation sessions",
	})

	registry.MustRegister(
		m.classifications, m.classifyDuration, m.interactionsTotal,
		m.retrainRuns, m.retrainDuration,
		m.persistFailures, m.externalFallbacks,
		m.trendDays, m.activeSessions,
	)
	return m
}

// NoOpManager returns a disabled manager.
func NoOpManager() *Manager {
	return &Manager{enabled: false}
}

// Enabled returns whether metrics collection is enabled.
func (m *Manager) Enabled() bool {
	return m != nil && m.enabled
}

// Registry exposes the private registry, or nil when disabled.
func (m *Manager) Registry() *prometheus.Registry {
	if !m.Enabled() {
		return nil
	}
	return m.registry
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Manager) Handler() http.Handler {
	if !m.Enabled() {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordClassification records one classification and its latency.
func (m *Manager) RecordClassification(source, primary string, duration time.Duration) {
	if !m.Enabled() {
		return
	}
	m.classifications.WithLabelValues(source, primary).Inc()
	m.classifyDuration.Observe(duration.Seconds())
}

// RecordInteraction records a LogInteraction outcome.
func (m *Manager) RecordInteraction(accepted bool) {
	if !m.Enabled() {
		return
	}
	label := "false"
	if accepted {
		label = "true"
	}
	m.interactionsTotal.WithLabelValues(label).Inc()
}

// RecordRetrain records a retraining run.
func (m *Manager) RecordRetrain(status string, duration time.Duration) {
	if !m.Enabled() {
		return
	}
	m.retrainRuns.WithLabelValues(status).Inc()
	m.retrainDuration.Observe(duration.Seconds())
}

// RecordPersistFailure records a swallowed persistence failure.
func (m *Manager) RecordPersistFailure(op string) {
	if !m.Enabled() {
		return
	}
	m.persistFailures.WithLabelValues(op).Inc()
}

// RecordExternalFallback records an external classifier fallback.
func (m *Manager) RecordExternalFallback(reason string) {
	if !m.Enabled() {
		return
	}
	m.externalFallbacks.WithLabelValues(reason).Inc()
}

// SetTrendDays updates the retained day gauge.
func (m *Manager) SetTrendDays(n int) {
	if !m.Enabled() {
		return
	}
	m.trendDays.Set(float64(n))
}

// SetActiveSessions updates the live session gauge.
func (m *Manager) SetActiveSessions(n int) {
	if !m.Enabled() {
		return
	}
	m.activeSessions.Set(float64(n))
}
