package telemetry

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
)

// HTTPMetrics counts requests and measures latency per route template.
type HTTPMetrics struct {
	requests api.Int64Counter
	duration api.Float64Histogram
}

// NewHTTPMetrics registers the HTTP instruments on the given meter.
func NewHTTPMetrics(meter api.Meter) (*HTTPMetrics, error) {
	requests, err := meter.Int64Counter("http_requests_total",
		api.WithDescription("HTTP requests, by route, method and status"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("http_request_duration_seconds",
		api.WithDescription("HTTP request latency, by route and method"),
		api.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{requests: requests, duration: duration}, nil
}

// Middleware returns a mux middleware recording one measurement per request.
func (m *HTTPMetrics) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if template, err := current.GetPathTemplate(); err == nil {
					route = template
				}
			}

			attrs := api.WithAttributes(
				attribute.String("route", route),
				attribute.String("method", r.Method),
				attribute.Int("status", recorder.status),
			)
			m.requests.Add(r.Context(), 1, attrs)
			m.duration.Record(r.Context(), time.Since(start).Seconds(), api.WithAttributes(
				attribute.String("route", route),
				attribute.String("method", r.Method),
			))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
