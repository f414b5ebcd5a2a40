// Package metrics collects Prometheus metrics for the API server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what handlers, services and jobs report into.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordUpstream(service, outcome string, duration time.Duration)
	RecordJob(job string, err error)
	WSConnected()
	WSDisconnected()
}

// Collector is the Prometheus implementation of Recorder.
// A nil *Collector records nothing.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	upstream        *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	jobRuns         *prometheus.CounterVec
	wsConnections   prometheus.Gauge
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barangaylink_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status_code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "barangaylink_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barangaylink_ai_upstream_total",
			Help: "Calls to the AI services by service and outcome",
		}, []string{"service", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "barangaylink_ai_upstream_latency_seconds",
			Help:    "AI service latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barangaylink_job_runs_total",
			Help: "Scheduled job runs by job and result",
		}, []string{"job", "result"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "barangaylink_ws_connections",
			Help: "Open notification websocket connections",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.upstream,
		c.upstreamLatency,
		c.jobRuns,
		c.wsConnections,
	)

	return c
}

// RecordRequest records one served HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordUpstream records one AI service call. outcome is "ok", "error" or "open".
func (c *Collector) RecordUpstream(service, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.upstream.WithLabelValues(service, outcome).Inc()
	if outcome != "open" {
		c.upstreamLatency.WithLabelValues(service).Observe(duration.Seconds())
	}
}

// RecordJob records a scheduled job run.
func (c *Collector) RecordJob(job string, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.jobRuns.WithLabelValues(job, result).Inc()
}

func (c *Collector) WSConnected() {
	if c == nil {
		return
	}
	c.wsConnections.Inc()
}

func (c *Collector) WSDisconnected() {
	if c == nil {
		return
	}
	c.wsConnections.Dec()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
