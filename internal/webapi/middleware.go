package webapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Log attribute names used for request logging.
const (
	LogRequestID = "request_id"
	LogMethod    = "method"
	LogURI       = "uri"
	LogRespCode  = "code"
	LogElapsed   = "elapsed"
)

// RequestIDHeader carries the request id back to the client.
const RequestIDHeader = "X-Request-Id"

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// RequestLogger logs every request at info level with a request id. An
// incoming X-Request-Id header is reused, otherwise a new UUID is assigned.
func RequestLogger(next http.Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info("request",
			LogRequestID, id,
			LogMethod, r.Method,
			LogURI, r.URL.RequestURI(),
			LogRespCode, rec.status,
			LogElapsed, time.Since(start))
	})
}

// Metrics holds the Prometheus collectors of the web layer.
type Metrics struct {
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	aggregateDuration prometheus.Histogram
	aggregateTasks    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "benchboard_http_requests_total",
				Help: "HTTP requests served, by route pattern and status code.",
			},
			[]string{"route", "code"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "benchboard_http_request_duration_seconds",
				Help:    "HTTP request latency by route pattern.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		aggregateDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "benchboard_aggregate_duration_seconds",
				Help:    "Time spent building aggregate leaderboards.",
				Buckets: prometheus.DefBuckets,
			},
		),
		aggregateTasks: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "benchboard_aggregate_tasks",
				Help:    "Number of tasks selected per aggregate leaderboard.",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
			},
		),
	}
}

// Middleware records request counts and latencies. The route label is the
// matched mux pattern so that task ids do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) observeAggregate(tasks int, d time.Duration) {
	if m == nil {
		return
	}
	m.aggregateDuration.Observe(d.Seconds())
	m.aggregateTasks.Observe(float64(tasks))
}
