package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/core/ports"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	checkTotal    *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	checkInFlight prometheus.Gauge
	queueLag      *prometheus.HistogramVec
	issuesTotal   *prometheus.CounterVec
	contentPages  *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	checkTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "papercheck",
			Subsystem: "worker",
			Name:      "submission_check_total",
			Help:      "Total processed submissions by status.",
		},
		[]string{"service", "status"},
	)
	checkDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "papercheck",
			Subsystem: "worker",
			Name:      "submission_check_duration_seconds",
			Help:      "Submission check duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	checkInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "papercheck",
			Subsystem: "worker",
			Name:      "submission_check_in_flight",
			Help:      "Number of in-flight submission checks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "papercheck",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between upload and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	issuesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "papercheck",
			Subsystem: "checker",
			Name:      "issues_total",
			Help:      "Issues reported by kind and severity.",
		},
		[]string{"service", "kind", "severity"},
	)
	contentPages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "papercheck",
			Subsystem: "checker",
			Name:      "content_pages",
			Help:      "Content pages per checked submission by paper type.",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12, 16},
		},
		[]string{"service", "paper_type"},
	)

	registry.MustRegister(checkTotal, checkDuration, checkInFlight, queueLag, issuesTotal, contentPages)

	return &WorkerMetrics{
		registry:      registry,
		checkTotal:    checkTotal,
		checkDuration: checkDuration,
		checkInFlight: checkInFlight,
		queueLag:      queueLag,
		issuesTotal:   issuesTotal,
		contentPages:  contentPages,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartCheck() {
	m.checkInFlight.Inc()
}

func (m *WorkerMetrics) FinishCheck(service string, duration time.Duration, err error) {
	m.checkInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.checkTotal.WithLabelValues(service, status).Inc()
	m.checkDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

// RecordResult counts the result's issues and its content page total.
func (m *WorkerMetrics) RecordResult(service string, result domain.CheckResult) {
	for _, issue := range result.Issues {
		m.issuesTotal.WithLabelValues(service, string(issue.Kind), string(issue.Severity)).Inc()
	}
	if result.TotalPages > 0 {
		m.contentPages.WithLabelValues(service, string(result.PaperType)).Observe(float64(result.ContentPages))
	}
}

type checkObserver struct {
	metrics *WorkerMetrics
	service string
}

// Observer adapts the metrics to ports.ProcessObserver.
func (m *WorkerMetrics) Observer(service string) ports.ProcessObserver {
	return checkObserver{metrics: m, service: service}
}

func (o checkObserver) CheckStarted(sub domain.Submission) {
	if sub.CreatedAt.IsZero() {
		return
	}
	o.metrics.ObserveQueueLag(o.service, time.Since(sub.CreatedAt))
}

func (o checkObserver) CheckFinished(result domain.CheckResult) {
	o.metrics.RecordResult(o.service, result)
}
