package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tapetail/internal/logging"
	"tapetail/internal/telemetry"
)

// batchLatencyBuckets follow the producer's batch timing profile:
// sub-millisecond batches in the happy path, multi-second outliers when the
// downstream stalls.
var batchLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5}

// PrometheusSink maps the generic sink contract onto concrete Prometheus
// collectors. Measurements with names it does not recognize are dropped
// with a debug log; the sink never fails.
type PrometheusSink struct {
	registry *prometheus.Registry
	logger   *slog.Logger

	labeledCounters map[string]*prometheus.CounterVec
	counters        map[string]prometheus.Counter
	gauges          map[string]prometheus.Gauge
	histograms      map[string]prometheus.Histogram
}

// NewPrometheusSink builds a sink with every family the collector emits
// pre-registered on a private registry.
func NewPrometheusSink(logger *slog.Logger) *PrometheusSink {
	s := &PrometheusSink{
		registry:        prometheus.NewRegistry(),
		logger:          logging.NewComponentLogger(logger, "metrics"),
		labeledCounters: make(map[string]*prometheus.CounterVec),
		counters:        make(map[string]prometheus.Counter),
		gauges:          make(map[string]prometheus.Gauge),
		histograms:      make(map[string]prometheus.Histogram),
	}

	s.labeledCounter(telemetry.MetricOrdersProduced, "Total number of orders produced", "producer_id")
	s.labeledCounter(telemetry.MetricOrdersConsumed, "Total number of orders consumed", "consumer_id")
	s.counter(telemetry.MetricOrdersDropped, "Total number of orders dropped by the pipeline")
	s.counter(telemetry.MetricNetworkErrors, "Total network errors reported by the producer")
	s.counter(telemetry.MetricBatchesSent, "Total number of batches sent")
	s.counter(telemetry.MetricLinesSkipped, "Telemetry lines rejected by the parser")
	s.counter(telemetry.MetricPollCycles, "Completed collector poll cycles")
	s.counter(telemetry.MetricCounterResets, "Cumulative counter regressions absorbed by re-anchoring")

	s.gauge(telemetry.MetricThroughput, "Current throughput in orders per second")
	s.gauge(telemetry.MetricBufferUtilization, "Ring buffer utilization percentage")
	s.gauge(telemetry.MetricBufferSize, "Current ring buffer occupancy")
	s.gauge(telemetry.MetricAvgLatency, "Average order latency in nanoseconds")
	s.gauge(telemetry.MetricP95Latency, "95th percentile order latency in nanoseconds")
	s.gauge(telemetry.MetricP99Latency, "99th percentile order latency in nanoseconds")

	s.histogram(telemetry.MetricBatchLatency, "Batch processing latency in seconds", batchLatencyBuckets)

	return s
}

func (s *PrometheusSink) labeledCounter(name, help string, labels ...string) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	s.registry.MustRegister(vec)
	s.labeledCounters[name] = vec
}

func (s *PrometheusSink) counter(name, help string) {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	s.registry.MustRegister(c)
	s.counters[name] = c
}

func (s *PrometheusSink) gauge(name, help string) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	s.registry.MustRegister(g)
	s.gauges[name] = g
}

func (s *PrometheusSink) histogram(name, help string, buckets []float64) {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets})
	s.registry.MustRegister(h)
	s.histograms[name] = h
}

// IncrementCounter adds amount to the named counter family. Negative
// amounts are dropped; counters only move forward.
func (s *PrometheusSink) IncrementCounter(name string, labels map[string]string, amount float64) {
	if amount < 0 {
		return
	}
	if vec, ok := s.labeledCounters[name]; ok {
		vec.With(prometheus.Labels(labels)).Add(amount)
		return
	}
	if c, ok := s.counters[name]; ok {
		c.Add(amount)
		return
	}
	s.logger.Debug("unknown counter dropped", logging.String("metric", name))
}

// SetGauge sets the named gauge family to value.
func (s *PrometheusSink) SetGauge(name string, value float64) {
	if g, ok := s.gauges[name]; ok {
		g.Set(value)
		return
	}
	s.logger.Debug("unknown gauge dropped", logging.String("metric", name))
}

// ObserveHistogram records one observation, in seconds, on the named
// histogram family.
func (s *PrometheusSink) ObserveHistogram(name string, seconds float64) {
	if h, ok := s.histograms[name]; ok {
		h.Observe(seconds)
		return
	}
	s.logger.Debug("unknown histogram dropped", logging.String("metric", name))
}

// Handler returns the exposition handler for the sink's registry.
func (s *PrometheusSink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Registry exposes the private registry for HTTP instrumentation.
func (s *PrometheusSink) Registry() *prometheus.Registry {
	return s.registry
}

var _ telemetry.Sink = (*PrometheusSink)(nil)
