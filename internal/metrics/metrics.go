// Package metrics exposes Prometheus HTTP instrumentation for the API.
package metrics

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// Metrics holds the HTTP collectors registered on one registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inflight        *prometheus.GaugeVec
}

// New creates the HTTP collectors and registers them on reg. A nil reg uses
// a fresh registry. db, when set, adds connection pool gauges.
func New(reg *prometheus.Registry, db *sql.DB) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		gatherer: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of processed HTTP requests",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		inflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "HTTP requests in flight by method and route",
		}, []string{"method", "path"}),
	}

	toRegister := []prometheus.Collector{m.requestsTotal, m.requestDuration, m.inflight}
	if db != nil {
		toRegister = append(toRegister, collectors.NewDBStatsCollector(db, "students"))
	}
	for _, c := range toRegister {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records count, latency and in-flight gauges labelled by route
// template, so /students/1 and /students/2 share one series.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := strings.ToUpper(c.Request().Method)
			path := c.Path()
			if path == "" {
				path = unmatchedRoute
			}

			m.inflight.WithLabelValues(method, path).Inc()
			start := time.Now()

			err := next(c)

			m.inflight.WithLabelValues(method, path).Dec()
			m.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(statusOf(c, err))).Inc()
			return err
		}
	}
}

// statusOf returns the written status, or the status err would produce when
// no inner middleware handled it.
func statusOf(c echo.Context, err error) int {
	if c.Response().Committed || err == nil {
		if s := c.Response().Status; s != 0 {
			return s
		}
		return http.StatusOK
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}
