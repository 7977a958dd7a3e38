package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/mail-triage/internal/core/domain"
)

// ClassificationMetrics counts finished classifications by provider tag,
// category and fallback path.
type ClassificationMetrics struct {
	service string

	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewClassificationMetrics(service string, registerer prometheus.Registerer) *ClassificationMetrics {
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mail_triage",
			Subsystem: "classification",
			Name:      "total",
			Help:      "Total classifications by provider tag, category and fallback.",
		},
		[]string{"service", "provider", "category", "fallback"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mail_triage",
			Subsystem: "classification",
			Name:      "duration_seconds",
			Help:      "End-to-end classification duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"service", "provider"},
	)
	registerer.MustRegister(total, duration)

	return &ClassificationMetrics{
		service:  service,
		total:    total,
		duration: duration,
	}
}

func (m *ClassificationMetrics) ObserveClassification(provider string, category domain.Category, fallback bool, elapsed time.Duration) {
	if provider == "" {
		provider = "unknown"
	}
	m.total.WithLabelValues(m.service, provider, string(category), strconv.FormatBool(fallback)).Inc()
	m.duration.WithLabelValues(m.service, provider).Observe(elapsed.Seconds())
}
