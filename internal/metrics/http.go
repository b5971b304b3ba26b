package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gemwalletcom/swapper/internal/swapper"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		},
	)

	httpErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_errors_total",
			Help:      "Failed HTTP requests by swap error kind",
		},
		[]string{"method", "path", "status", "kind"},
	)
)

// HTTPMiddleware records request count, latency and error kinds. It must be
// the innermost middleware so it sees the handler error before it is written.
func HTTPMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			start := time.Now()
			method := c.Request().Method
			path := normalizePath(c.Path())

			err := next(c)
			if err != nil {
				// let echo write the error response so the status is final
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			httpRequestsTotal.WithLabelValues(method, path, status).Inc()
			httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

			if err != nil {
				httpErrorsTotal.WithLabelValues(method, path, status, errorKind(err)).Inc()
			}
			return nil
		}
	}
}

func errorKind(err error) string {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return "bad_request"
	}
	return swapper.KindOf(err).String()
}

// normalizePath keeps label cardinality bounded. Echo already reports the
// route pattern (e.g. "/v1/swap/status/:provider/:chain/:hash").
func normalizePath(path string) string {
	if path == "" {
		return "unknown"
	}
	return path
}
