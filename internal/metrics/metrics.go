package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups the application metrics on a private registry, so several
// instances (tests, multiple apps in one process) never collide.
type Collector struct {
	registry *prometheus.Registry

	RequestsRecorded   *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RequestLogDropped  prometheus.Counter
	RequestLogFailures prometheus.Counter
	RequestLogQueue    prometheus.Gauge
	RemoteSubmissions  *prometheus.CounterVec
	PartitionsRemoved  prometheus.Counter
}

// NewCollector creates a collector registered under the given namespace.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		RequestsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_recorded_total",
				Help:      "Total number of request/response cycles captured by the request recorder",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "status"},
		),
		RequestLogDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_log_dropped_total",
			Help:      "Request log entries dropped because the write queue was full",
		}),
		RequestLogFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_log_write_failures_total",
			Help:      "Request log entries that could not be appended to their partition",
		}),
		RequestLogQueue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "request_log_queue_size",
			Help:      "Current number of request log entries waiting to be written",
		}),
		RemoteSubmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_log_submissions_total",
				Help:      "Remote log submissions by result",
			},
			[]string{"result"},
		),
		PartitionsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_log_partitions_removed_total",
			Help:      "Request log partitions deleted by retention",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format as a Fiber handler.
func (m *Collector) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// The helpers below are nil-safe so components can run without metrics.

func (m *Collector) ObserveRequest(method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsRecorded.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method, status).Observe(seconds)
}

func (m *Collector) IncRequestLogDropped() {
	if m == nil {
		return
	}
	m.RequestLogDropped.Inc()
}

func (m *Collector) IncRequestLogFailure() {
	if m == nil {
		return
	}
	m.RequestLogFailures.Inc()
}

func (m *Collector) SetRequestLogQueue(n int) {
	if m == nil {
		return
	}
	m.RequestLogQueue.Set(float64(n))
}

func (m *Collector) IncRemoteSubmission(result string) {
	if m == nil {
		return
	}
	m.RemoteSubmissions.WithLabelValues(result).Inc()
}

func (m *Collector) AddPartitionsRemoved(n int) {
	if m == nil {
		return
	}
	m.PartitionsRemoved.Add(float64(n))
}
