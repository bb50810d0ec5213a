// Package monitoring handles Prometheus metrics collection
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitforge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitforge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	planGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitforge_plan_generations_total",
			Help: "Total number of plan generation attempts by domain and outcome",
		},
		[]string{"domain", "outcome"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitforge_ai_request_duration_seconds",
			Help:    "AI completion request duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"provider"},
	)
	usersRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitforge_users_registered_total",
			Help: "Total number of registered users",
		},
	)
)

// RecordPlanGeneration counts one generation attempt for a coaching domain
func RecordPlanGeneration(domain, outcome string) {
	planGenerationsTotal.WithLabelValues(domain, outcome).Inc()
}

// RecordAIRequest observes the duration of one completion round trip
func RecordAIRequest(provider string, duration time.Duration) {
	aiRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordUserRegistered counts one successful registration
func RecordUserRegistered() {
	usersRegisteredTotal.Inc()
}

// Handler exposes the Prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// HTTPMetrics records request counts and latency for every route
func HTTPMetrics() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrapped.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
