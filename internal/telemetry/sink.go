package telemetry

// Metric family names the collector emits. The exporter registers matching
// Prometheus collectors for each of them.
const (
	MetricOrdersProduced    = "orders_produced_total"
	MetricOrdersConsumed    = "orders_consumed_total"
	MetricOrdersDropped     = "orders_dropped_total"
	MetricNetworkErrors     = "network_errors_total"
	MetricBatchesSent       = "batches_sent_total"
	MetricBatchLatency      = "batch_latency_seconds"
	MetricThroughput        = "throughput_orders_per_second"
	MetricBufferUtilization = "buffer_utilization_percent"
	MetricBufferSize        = "buffer_size"
	MetricAvgLatency        = "avg_latency_nanoseconds"
	MetricP95Latency        = "p95_latency_nanoseconds"
	MetricP99Latency        = "p99_latency_nanoseconds"

	MetricLinesSkipped  = "tapetail_lines_skipped_total"
	MetricPollCycles    = "tapetail_poll_cycles_total"
	MetricCounterResets = "tapetail_counter_resets_total"
)

// Sink receives the measurements the pipeline produces. Implementations
// must be safe for calls from the collector goroutine and must never fail;
// a measurement that cannot be recorded is dropped, not surfaced.
type Sink interface {
	IncrementCounter(name string, labels map[string]string, amount float64)
	SetGauge(name string, value float64)
	ObserveHistogram(name string, seconds float64)
}

// The producer side does not distinguish individual workers in the log, so
// labeled families carry the aggregate identity.
var (
	producerLabels = map[string]string{"producer_id": "all"}
	consumerLabels = map[string]string{"consumer_id": "all"}
)
