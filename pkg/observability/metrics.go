package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authentication outcomes, used as the outcome label
const (
	OutcomeIssued           = "issued"
	OutcomeConfigError      = "config_error"
	OutcomeValidationError  = "validation_error"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeMissingUser      = "missing_user"
	OutcomeTimeout          = "timeout"
	OutcomeInternalError    = "internal_error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsTotal *prometheus.CounterVec
	AuthStageDuration *prometheus.HistogramVec
	TokensIssuedTotal prometheus.Counter
	SecretsConfigured prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchgate_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchgate_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchgate_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchgate_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			},
			[]string{"method", "path"},
		),

		AuthAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchgate_auth_attempts_total",
				Help: "Total number of token requests by outcome",
			},
			[]string{"outcome"},
		),
		AuthStageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchgate_auth_stage_duration_seconds",
				Help:    "Duration of each authentication stage in seconds",
				Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05},
			},
			[]string{"stage"},
		),
		TokensIssuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "launchgate_tokens_issued_total",
				Help: "Total number of bearer tokens issued",
			},
		),
		SecretsConfigured: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "launchgate_secrets_configured",
				Help: "1 when both the bot token and the signing secret are configured",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestSize,
		m.HTTPResponseSize,
		m.AuthAttemptsTotal,
		m.AuthStageDuration,
		m.TokensIssuedTotal,
		m.SecretsConfigured,
	)

	return m
}

// RecordOutcome counts a finished token request
func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.AuthAttemptsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeIssued {
		m.TokensIssuedTotal.Inc()
	}
}

// ObserveStage records how long an authentication stage took
func (m *Metrics) ObserveStage(stage string, started time.Time) {
	if m == nil {
		return
	}
	m.AuthStageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}

// SetSecretsConfigured reports whether the process can issue tokens
func (m *Metrics) SetSecretsConfigured(configured bool) {
	if m == nil {
		return
	}
	if configured {
		m.SecretsConfigured.Set(1)
	} else {
		m.SecretsConfigured.Set(0)
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// Label values for requests outside the known routes and methods
const (
	UnmatchedRoute = "unmatched"
	OtherMethod    = "OTHER"
)

// RouteFunc names the route template a request matches
type RouteFunc func(r *http.Request) string

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// The path label comes from route, never the raw URL, so arbitrary paths and
// methods from clients collapse into a bounded set of series. A nil route
// labels every request as UnmatchedRoute.
func HTTPMetricsMiddleware(metrics *Metrics, route RouteFunc) func(http.Handler) http.Handler {
	if route == nil {
		route = func(*http.Request) string { return UnmatchedRoute }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			method, path := MethodLabel(r.Method), route(r)

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			if r.ContentLength > 0 {
				metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(float64(r.ContentLength))
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(rw.bytesWritten))
		})
	}
}

// MethodLabel returns method for standard HTTP methods and OtherMethod for
// anything else
func MethodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return method
	default:
		return OtherMethod
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, gatherer prometheus.Gatherer) {
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
