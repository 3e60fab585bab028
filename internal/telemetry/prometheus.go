// Package telemetry instruments the HTTP server and publishes host gauges
// to Prometheus. Host gauges are sampled during the scrape itself.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"host-metrics/internal/domain"
)

const scrapeTimeout = 10 * time.Second

type Metrics struct {
	registry *prometheus.Registry

	TotalRequests      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	ActiveRequests     *prometheus.GaugeVec
	CollectionFailures *prometheus.CounterVec
}

// New builds a registry holding request telemetry, Go runtime and process
// collectors, and a host collector backed by c. A nil c skips host gauges.
func New(c domain.Collector) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TotalRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		ActiveRequests: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "http_requests_active",
				Help: "Number of active HTTP requests",
			},
			[]string{"method", "endpoint"},
		),
		CollectionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "host_collection_failures_total",
				Help: "Snapshots that failed, by the resource that could not be read",
			},
			[]string{"resource"},
		),
	}

	m.registry.MustRegister(
		m.TotalRequests,
		m.RequestDuration,
		m.ActiveRequests,
		m.CollectionFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if c != nil {
		m.registry.MustRegister(&hostCollector{source: c, metrics: m})
	}
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError})
}

// ObserveCollectionError counts err against the resource it names.
func (m *Metrics) ObserveCollectionError(err error) {
	if m == nil || err == nil {
		return
	}
	resource := "unknown"
	var rqe *domain.ResourceQueryError
	if errors.As(err, &rqe) {
		resource = string(rqe.Resource)
	}
	m.CollectionFailures.WithLabelValues(resource).Inc()
}

// Middleware records request counts, latency and in-flight requests.
// routeName maps a request to a bounded label value.
func (m *Metrics) Middleware(routeName func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			endpoint := routeName(r)
			start := time.Now()

			m.ActiveRequests.WithLabelValues(r.Method, endpoint).Inc()
			defer m.ActiveRequests.WithLabelValues(r.Method, endpoint).Dec()

			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			m.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
			m.TotalRequests.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.status)).Inc()
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

var (
	cpuDesc    = prometheus.NewDesc("host_cpu_percent", "CPU utilization over the sampling window", nil, nil)
	memoryDesc = prometheus.NewDesc("host_memory_percent", "Physical memory in use", nil, nil)
	diskDesc   = prometheus.NewDesc("host_disk_percent", "Root filesystem capacity in use", nil, nil)
)

type hostCollector struct {
	source  domain.Collector
	metrics *Metrics
}

func (h *hostCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- cpuDesc
	ch <- memoryDesc
	ch <- diskDesc
}

func (h *hostCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	snap, err := h.source.Collect(ctx)
	if err != nil {
		h.metrics.ObserveCollectionError(err)
		ch <- prometheus.NewInvalidMetric(cpuDesc, err)
		return
	}
	ch <- prometheus.MustNewConstMetric(cpuDesc, prometheus.GaugeValue, snap.CPU)
	ch <- prometheus.MustNewConstMetric(memoryDesc, prometheus.GaugeValue, snap.Memory)
	ch <- prometheus.MustNewConstMetric(diskDesc, prometheus.GaugeValue, snap.Disk)
}
