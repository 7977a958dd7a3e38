package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BatchMetrics struct {
	service  string
	registry *prometheus.Registry

	filesTotal  *prometheus.CounterVec
	runDuration prometheus.Histogram
}

func NewBatchMetrics(service string) *BatchMetrics {
	registry := prometheus.NewRegistry()

	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mail_triage",
			Subsystem: "batch",
			Name:      "files_total",
			Help:      "Total batch files by outcome.",
		},
		[]string{"service", "outcome"},
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mail_triage",
			Subsystem: "batch",
			Name:      "run_duration_seconds",
			Help:      "Batch run duration in seconds.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	registry.MustRegister(filesTotal, runDuration)

	return &BatchMetrics{
		service:     service,
		registry:    registry,
		filesTotal:  filesTotal,
		runDuration: runDuration,
	}
}

func (m *BatchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *BatchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *BatchMetrics) ObserveBatchFile(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.filesTotal.WithLabelValues(m.service, outcome).Inc()
}

func (m *BatchMetrics) ObserveRun(duration time.Duration) {
	m.runDuration.Observe(duration.Seconds())
}
