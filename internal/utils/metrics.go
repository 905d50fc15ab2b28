// internal/utils/metrics.go
package utils

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector holds every Prometheus series the service exports
type MetricsCollector struct {
	SessionsActive    prometheus.Gauge
	SessionsCreated   prometheus.Counter
	SessionsExpired   prometheus.Counter
	PhaseTransitions  *prometheus.CounterVec
	BranchSelections  *prometheus.CounterVec
	Submissions       *prometheus.CounterVec
	WebSocketClients  prometheus.Gauge
	APIRequests       *prometheus.CounterVec
	APIRequestLatency *prometheus.HistogramVec
	Errors            *prometheus.CounterVec
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// GetMetricsCollector returns the collector bound to the default registry
func GetMetricsCollector() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector(prometheus.DefaultRegisterer)
	})
	return globalMetrics
}

// NewMetricsCollector registers a fresh set of series on reg
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	f := promauto.With(reg)
	return &MetricsCollector{
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "crisis_sessions_active",
			Help: "Number of live simulation sessions.",
		}),
		SessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "crisis_sessions_created_total",
			Help: "Total number of sessions created.",
		}),
		SessionsExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "crisis_sessions_expired_total",
			Help: "Total number of sessions removed by the idle sweeper.",
		}),
		PhaseTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crisis_phase_transitions_total",
			Help: "Phase changes by origin and target phase.",
		}, []string{"from", "to"}),
		BranchSelections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crisis_branch_selections_total",
			Help: "Branch selections by target route.",
		}, []string{"route"}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crisis_submissions_total",
			Help: "Decision submissions, split by whether the timer forced them.",
		}, []string{"forced"}),
		WebSocketClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "crisis_websocket_clients",
			Help: "Connected WebSocket clients.",
		}),
		APIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crisis_api_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"endpoint", "method", "status"}),
		APIRequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crisis_api_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crisis_errors_total",
			Help: "Errors by type and component.",
		}, []string{"type", "component"}),
	}
}

// RecordAPIRequest records metrics for an API request
func (m *MetricsCollector) RecordAPIRequest(endpoint, method string, statusCode int, duration time.Duration) {
	m.APIRequests.WithLabelValues(endpoint, method, strconv.Itoa(statusCode)).Inc()
	m.APIRequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// RecordPhaseTransition counts a phase change
func (m *MetricsCollector) RecordPhaseTransition(from, to string) {
	m.PhaseTransitions.WithLabelValues(from, to).Inc()
}

// RecordBranch counts a branch selection
func (m *MetricsCollector) RecordBranch(route string) {
	m.BranchSelections.WithLabelValues(route).Inc()
}

// RecordSubmission counts a transition into results
func (m *MetricsCollector) RecordSubmission(forced bool) {
	m.Submissions.WithLabelValues(strconv.FormatBool(forced)).Inc()
}

// RecordError records an error metric
func (m *MetricsCollector) RecordError(errorType, component string) {
	m.Errors.WithLabelValues(errorType, component).Inc()
}
