package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var requestLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2}

// HTTPInstrumentation records request count and latency per route for the
// daemon's own API surface.
type HTTPInstrumentation struct {
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewHTTPInstrumentation registers the request families on reg.
func NewHTTPInstrumentation(reg *prometheus.Registry) *HTTPInstrumentation {
	inst := &HTTPInstrumentation{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tapetail",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tapetail",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   requestLatencyBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(inst.requestTotal, inst.requestLatency)
	return inst
}

// Wrap instruments next under the given route label.
func (i *HTTPInstrumentation) Wrap(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(recorder.status),
		}
		i.requestTotal.With(labels).Inc()
		i.requestLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wrote {
		r.status = status
		r.wrote = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.ResponseWriter.Write(b)
}
