package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	rateLimited  prometheus.Counter
	renders      *prometheus.CounterVec
	degradations *prometheus.CounterVec
	renderTime   prometheus.Histogram
	imports      *prometheus.CounterVec
	jobs         *prometheus.CounterVec
	purged       prometheus.Counter
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payslip_http_requests_total",
			Help: "HTTP requests by status code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payslip_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"code"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payslip_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payslip_renders_total",
			Help: "Rendered payslips by theme.",
		}, []string{"theme"}),
		degradations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payslip_render_degradations_total",
			Help: "Sections that fell back to an estimated layout.",
		}, []string{"section"}),
		renderTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "payslip_render_duration_seconds",
			Help:    "Time spent laying out and serialising a payslip.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payslip_workbook_imports_total",
			Help: "Workbook imports by outcome.",
		}, []string{"outcome"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payslip_job_runs_total",
			Help: "Background job runs by job and status.",
		}, []string{"job", "status"}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payslip_drafts_purged_total",
			Help: "Idle drafts removed by the sweeper.",
		}),
	}
	c.registry.MustRegister(
		c.requests, c.duration, c.rateLimited,
		c.renders, c.degradations, c.renderTime,
		c.imports, c.jobs, c.purged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Record(status int, duration time.Duration) {
	code := strconv.Itoa(status)
	c.requests.WithLabelValues(code).Inc()
	c.duration.WithLabelValues(code).Observe(duration.Seconds())
	if status == http.StatusTooManyRequests {
		c.rateLimited.Inc()
	}
}

func (c *Collector) RecordRender(theme string, degradedSections []string, duration time.Duration) {
	c.renders.WithLabelValues(theme).Inc()
	for _, section := range degradedSections {
		c.degradations.WithLabelValues(section).Inc()
	}
	c.renderTime.Observe(duration.Seconds())
}

// RecordImport counts an import as "ok", "partial" (rows skipped),
// "unsupported" or "parse_error".
func (c *Collector) RecordImport(outcome string) {
	c.imports.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordJob(job, status string) {
	c.jobs.WithLabelValues(job, status).Inc()
}

func (c *Collector) RecordPurged(n int64) {
	c.purged.Add(float64(n))
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
