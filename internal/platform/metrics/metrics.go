package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resultados"

// Collector owns a private registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	datasetLoads    *prometheus.CounterVec
	datasetRecords  prometheus.Gauge
	datasetLoadedAt prometheus.Gauge
	viewsDerived    prometheus.Counter
	sessionsActive  prometheus.Gauge
	exportsServed   *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Collector{
		registry: reg,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		datasetLoads: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		datasetRecords: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "records",
			Help:      "Records in the current dataset snapshot.",
		}),
		datasetLoadedAt: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "last_success_unixtime",
			Help:      "Unix time of the last successful dataset load.",
		}),
		viewsDerived: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_derived_total",
			Help:      "Derived dashboard views computed.",
		}),
		sessionsActive: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Live dashboard sessions.",
		}),
		exportsServed: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Exports served by format.",
		}, []string{"format"}),
		jobRuns: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Background job runs by type and status.",
		}, []string{"job", "status"}),
	}
}

func (c *Collector) Record(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

func (c *Collector) DatasetLoaded(count int, err error) {
	if err != nil {
		c.datasetLoads.WithLabelValues("failed").Inc()
		return
	}
	c.datasetLoads.WithLabelValues("loaded").Inc()
	c.datasetRecords.Set(float64(count))
	c.datasetLoadedAt.SetToCurrentTime()
}

func (c *Collector) ViewDerived() {
	c.viewsDerived.Inc()
}

func (c *Collector) SessionsActive(n int) {
	c.sessionsActive.Set(float64(n))
}

func (c *Collector) ExportServed(format string) {
	c.exportsServed.WithLabelValues(format).Inc()
}

func (c *Collector) JobRun(jobType, status string) {
	c.jobRuns.WithLabelValues(jobType, status).Inc()
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
