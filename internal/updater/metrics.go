package updater

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	updateStatusSuccess     = "success"
	updateStatusUnavailable = "unavailable"
	updateStatusError       = "error"
	updateStatusPanic       = "panic"
	updateStatusDeleted     = "deleted"

	queuePriority   = "priority"
	queueBackground = "background"
	queueUnderway   = "underway"

	faviconFound   = "found"
	faviconMissing = "missing"
	faviconError   = "error"
)

type metrics struct {
	startTime prometheus.Gauge

	updateStatus   *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	updateDuration prometheus.Histogram
	queueSize      *prometheus.GaugeVec
	faviconResults *prometheus.CounterVec
	drains         prometheus.Counter
}

func makeMetrics() metrics {
	return metrics{
		startTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeds_start_time",
			Help: "Scheduler start time",
		}),

		updateStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeds_update_status",
			Help: "Feed update status",
		}, []string{"status"}),

		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feeds_fetch_duration",
			Help:    "Document fetch duration",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),

		updateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feeds_update_duration",
			Help:    "Feed update duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),

		queueSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "feeds_queue_size",
			Help: "Number of feeds in the update queues",
		}, []string{"queue"}),

		faviconResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeds_favicons",
			Help: "Favicon resolution results",
		}, []string{"result"}),

		drains: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feeds_update_drains",
			Help: "Number of completed update cycles",
		}),
	}
}

var _ prometheus.Collector = &metrics{}

func (m *metrics) Describe(descs chan<- *prometheus.Desc) {
	m.startTime.Describe(descs)
	m.updateStatus.Describe(descs)
	m.fetchDuration.Describe(descs)
	m.updateDuration.Describe(descs)
	m.queueSize.Describe(descs)
	m.faviconResults.Describe(descs)
	m.drains.Describe(descs)
}

func (m *metrics) Collect(metrics chan<- prometheus.Metric) {
	m.startTime.Collect(metrics)
	m.updateStatus.Collect(metrics)
	m.fetchDuration.Collect(metrics)
	m.updateDuration.Collect(metrics)
	m.queueSize.Collect(metrics)
	m.faviconResults.Collect(metrics)
	m.drains.Collect(metrics)
}
