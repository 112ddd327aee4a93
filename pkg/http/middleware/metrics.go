package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	applogger "OpenFOF/pkg/logger"
)

var (
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	httpInFlight     prometheus.Gauge
	httpResponseSize *prometheus.HistogramVec
	httpMetricsOnce  sync.Once
)

func initHTTPMetrics() {
	httpMetricsOnce.Do(func() {
		httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "openfof_http_requests_total",
			Help: "HTTP requests by route template, method and status",
		}, []string{"route", "method", "status"})
		httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "openfof_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"route", "method", "class"})
		httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "openfof_http_in_flight_requests",
			Help: "Requests currently being served",
		})
		httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "openfof_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"route", "class"})
	})
}

// Metrics records request metrics labelled by echo route template, so path
// parameters never become label values. Requests slower than slowThreshold
// are logged at warn.
func Metrics(l *applogger.Logger, slowThreshold time.Duration) echo.MiddlewareFunc {
	initHTTPMetrics()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			elapsed := time.Since(start)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			res := c.Response()
			class := statusClass(res.Status)

			httpRequests.WithLabelValues(route, method, strconv.Itoa(res.Status)).Inc()
			httpDuration.WithLabelValues(route, method, class).Observe(elapsed.Seconds())
			httpResponseSize.WithLabelValues(route, class).Observe(float64(res.Size))

			if l != nil && slowThreshold > 0 && elapsed >= slowThreshold {
				l.Warn("http request slow",
					applogger.String("route", route),
					applogger.String("method", method),
					applogger.Int("status", res.Status),
					applogger.Duration("duration_ms", elapsed),
				)
			}
			return nil
		}
	}
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "other"
	}
	return strconv.Itoa(code/100) + "xx"
}
