// Package metrics provides Prometheus instrumentation for the crash engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActiveSessions tracks connected WebSocket sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crash_active_sessions",
		Help: "Number of connected player sessions",
	})

	// BetsPlaced counts successful bet placements, partitioned by asset.
	BetsPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crash_bets_placed_total",
		Help: "Total number of bets placed",
	}, []string{"asset"})

	// Cashouts counts successful cash-outs, partitioned by asset.
	Cashouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crash_cashouts_total",
		Help: "Total number of cash-outs",
	}, []string{"asset"})

	// PriceTicks counts valuation ticks emitted to clients.
	PriceTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crash_price_ticks_total",
		Help: "Total price/valuation updates emitted",
	})

	// ProtocolErrors counts non-fatal error messages sent to clients.
	ProtocolErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crash_protocol_errors_total",
		Help: "Total protocol error messages emitted",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crash_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crash_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the raw path for the label; the route surface is small
		// enough that cardinality is not a concern.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
