package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	batchTotal      *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	batchInFlight   prometheus.Gauge
	pairsTotal      *prometheus.CounterVec
	notifyTotal     *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	batchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfpm",
			Subsystem: "worker",
			Name:      "batches_total",
			Help:      "Total batch scoring runs by status.",
		},
		[]string{"service", "status"},
	)
	batchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfpm",
			Subsystem: "worker",
			Name:      "batch_duration_seconds",
			Help:      "Batch scoring run duration in seconds by status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"service", "status"},
	)
	batchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rfpm",
			Subsystem: "worker",
			Name:      "batches_in_flight",
			Help:      "Number of in-flight batch scoring runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	pairsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfpm",
			Subsystem: "worker",
			Name:      "pairs_total",
			Help:      "Total scored (rfp, vendor) pairs by score source.",
		},
		[]string{"service", "source"},
	)
	notifyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfpm",
			Subsystem: "worker",
			Name:      "notifications_total",
			Help:      "Total match notifications by status.",
		},
		[]string{"service", "status"},
	)
	persistFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfpm",
			Subsystem: "worker",
			Name:      "persist_failures_total",
			Help:      "Total score persistence failures.",
		},
		[]string{"service"},
	)

	registry.MustRegister(batchTotal, batchDuration, batchInFlight, pairsTotal, notifyTotal, persistFailures)

	return &WorkerMetrics{
		registry:        registry,
		batchTotal:      batchTotal,
		batchDuration:   batchDuration,
		batchInFlight:   batchInFlight,
		pairsTotal:      pairsTotal,
		notifyTotal:     notifyTotal,
		persistFailures: persistFailures,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartBatch() {
	m.batchInFlight.Inc()
}

func (m *WorkerMetrics) FinishBatch(service string, duration time.Duration, err error) {
	m.batchInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.batchTotal.WithLabelValues(service, status).Inc()
	m.batchDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

// ObserveReport folds one batch report into the pair-level counters.
func (m *WorkerMetrics) ObserveReport(service string, report *domain.BatchReport) {
	if report == nil {
		return
	}
	m.pairsTotal.WithLabelValues(service, string(domain.ScoreSourceJudge)).Add(float64(report.JudgeScored))
	m.pairsTotal.WithLabelValues(service, string(domain.ScoreSourceFallback)).Add(float64(report.FallbackScored))
	m.notifyTotal.WithLabelValues(service, "sent").Add(float64(report.NotificationsSent))
	m.notifyTotal.WithLabelValues(service, "failed").Add(float64(report.NotificationFailures))
	m.persistFailures.WithLabelValues(service).Add(float64(report.PersistFailures))
}
