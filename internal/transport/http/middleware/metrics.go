package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetricsOptions configures the request instrumentation collectors.
type HTTPMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Subsystem  string
	Buckets    []float64
}

// HTTPMetrics holds the request counter, latency histogram, and in-flight
// gauge exposed on /metrics.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

var httpMetricLabels = []string{"method", "route", "status"}

// NewHTTPMetrics registers the HTTP collectors. Registering into a registry
// that already holds them reuses the existing collectors, so the constructor
// is safe to call more than once per process.
func NewHTTPMetrics(opts HTTPMetricsOptions) (*HTTPMetrics, error) {
	if opts.Namespace == "" {
		opts.Namespace = "arch"
	}
	if opts.Subsystem == "" {
		opts.Subsystem = "http"
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if len(opts.Buckets) == 0 {
		opts.Buckets = prometheus.DefBuckets
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      "requests_total",
		Help:      "Total number of HTTP requests partitioned by method, route, and status code.",
	}, httpMetricLabels)
	registered, err := registerCollector(opts.Registerer, requests)
	if err != nil {
		return nil, err
	}
	if existing, ok := registered.(*prometheus.CounterVec); ok {
		requests = existing
	} else {
		return nil, fmt.Errorf("existing requests collector has unexpected type %T", registered)
	}

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of HTTP request latencies in seconds partitioned by method, route, and status code.",
		Buckets:   opts.Buckets,
	}, httpMetricLabels)
	registered, err = registerCollector(opts.Registerer, duration)
	if err != nil {
		return nil, err
	}
	if existing, ok := registered.(*prometheus.HistogramVec); ok {
		duration = existing
	} else {
		return nil, fmt.Errorf("existing duration collector has unexpected type %T", registered)
	}

	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      "in_flight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})
	registered, err = registerCollector(opts.Registerer, inFlight)
	if err != nil {
		return nil, err
	}
	if existing, ok := registered.(prometheus.Gauge); ok {
		inFlight = existing
	} else {
		return nil, fmt.Errorf("existing inflight collector has unexpected type %T", registered)
	}

	return &HTTPMetrics{Requests: requests, Duration: duration, InFlight: inFlight}, nil
}

// registerCollector registers c, returning the already-registered collector
// when one with the same descriptor exists.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return already.ExistingCollector, nil
		}
		return nil, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// Handler records every request against the collectors. Unmatched routes
// fall back to the raw path so 404 traffic still shows up.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		if m.InFlight != nil {
			m.InFlight.Inc()
			defer m.InFlight.Dec()
		}

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}

		if m.Requests != nil {
			m.Requests.With(labels).Inc()
		}
		if m.Duration != nil {
			m.Duration.With(labels).Observe(time.Since(start).Seconds())
		}
	}
}
