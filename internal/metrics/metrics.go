// Package metrics collects and exposes Prometheus metrics for the API
// client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the metrics interface consumed by the HTTP client core.
type Collector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordNetworkError()
	RecordRefresh(success bool)
	RecordRetry()
}

// PromCollector implements Collector on a Prometheus registry.
type PromCollector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	networkErrors  prometheus.Counter
	refreshes      *prometheus.CounterVec
	retries        prometheus.Counter
}

// NewPromCollector creates a collector and registers its metrics on reg.
func NewPromCollector(reg prometheus.Registerer) *PromCollector {
	c := &PromCollector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "allerlog_http_status_total",
			Help: "API responses by HTTP status code.",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "allerlog_request_latency_seconds",
			Help:    "API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		networkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "allerlog_network_errors_total",
			Help: "Requests that failed without producing a response.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "allerlog_token_refresh_total",
			Help: "Token refresh exchanges by outcome.",
		}, []string{"outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "allerlog_request_retries_total",
			Help: "Requests re-issued after a successful token refresh.",
		}),
	}
	reg.MustRegister(c.httpStatus, c.requestLatency, c.networkErrors, c.refreshes, c.retries)
	return c
}

func (c *PromCollector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (c *PromCollector) RecordRequestLatency(d time.Duration) {
	c.requestLatency.Observe(d.Seconds())
}

func (c *PromCollector) RecordNetworkError() {
	c.networkErrors.Inc()
}

func (c *PromCollector) RecordRefresh(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.refreshes.WithLabelValues(outcome).Inc()
}

func (c *PromCollector) RecordRetry() {
	c.retries.Inc()
}

// Handler returns an http.Handler serving the metrics of reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Noop is a Collector that discards everything. Useful in tests and when no
// metrics listener is configured.
type Noop struct{}

func (Noop) RecordHTTPStatus(int)                 {}
func (Noop) RecordRequestLatency(time.Duration)   {}
func (Noop) RecordNetworkError()                  {}
func (Noop) RecordRefresh(bool)                   {}
func (Noop) RecordRetry()                         {}
