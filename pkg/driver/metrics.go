package driver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds counters and histograms for script invocations.
type Metrics struct {
	Invocations *prometheus.CounterVec
	Cycles      prometheus.Histogram
	Memory      prometheus.Histogram
	Duration    *prometheus.HistogramVec
}

// Outcome labels.
const (
	LabelOk       = "ok"
	LabelError    = "error"
	LabelAborted  = "aborted"
	LabelRejected = "rejected"
	LabelHost     = "host_err"
	LabelInternal = "internal_err"
)

func NewMetrics() *Metrics {
	const (
		namespace = "airscript"
		subsystem = "invocation"
	)

	return &Metrics{
		Invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "total",
			Help:      "Count of script invocations by outcome",
		}, []string{"outcome"}),

		Cycles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cycles",
			Help:      "Histogram of reduction steps used by executed scripts",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
		}),

		Memory: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "memory_bytes",
			Help:      "Histogram of bytes allocated by executed scripts",
			Buckets:   prometheus.ExponentialBuckets(1024, 8, 7),
		}),

		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "Histogram of end-to-end invocation times, including parsing and checking",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 5, 8),
		}, []string{"outcome"}),
	}
}

func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Invocations,
		m.Cycles,
		m.Memory,
		m.Duration,
	}
}

func (m *Metrics) observe(o Outcome) {
	label := o.Label()
	m.Invocations.WithLabelValues(label).Inc()
	m.Duration.WithLabelValues(label).Observe(o.Elapsed.Seconds())
	if o.Err == nil {
		m.Cycles.Observe(float64(o.Result.Usage.Cycles))
		m.Memory.Observe(float64(o.Result.Usage.MemoryBytes))
	}
}
