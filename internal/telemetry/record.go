package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// recordFieldCount is the number of comma separated fields one telemetry
// line must carry. Extra trailing fields are tolerated and ignored.
const recordFieldCount = 12

// ErrFieldCount reports a line with fewer fields than the schema requires.
var ErrFieldCount = errors.New("telemetry line has too few fields")

// Record is one parsed telemetry sample. Counter fields are cumulative
// totals as reported by the producer; the remaining fields are
// instantaneous gauges. Records are immutable once parsed.
type Record struct {
	TimestampNS    int64
	OrdersProduced int64
	OrdersConsumed int64
	OrdersDropped  int64
	BufferSize     int64
	BufferCapacity int64
	ThroughputOPS  float64
	AvgLatencyNS   float64
	P95LatencyNS   float64
	P99LatencyNS   float64
	NetworkErrors  int64
	BatchCount     int64
}

// ParseRecord parses one log line in the fixed schema
// timestamp_ns,orders_produced,orders_consumed,orders_dropped,buffer_size,
// buffer_capacity,throughput_ops_per_sec,avg_latency_ns,p95_latency_ns,
// p99_latency_ns,network_errors,batch_count. A short line or any field that
// fails numeric conversion rejects the whole line; no partial record is
// ever returned.
func ParseRecord(line string) (Record, error) {
	fields := strings.Split(line, ",")
	if len(fields) < recordFieldCount {
		return Record{}, fmt.Errorf("%w: %d of %d", ErrFieldCount, len(fields), recordFieldCount)
	}

	p := fieldParser{fields: fields}
	rec := Record{
		TimestampNS:    p.integer(0, "timestamp_ns"),
		OrdersProduced: p.integer(1, "orders_produced"),
		OrdersConsumed: p.integer(2, "orders_consumed"),
		OrdersDropped:  p.integer(3, "orders_dropped"),
		BufferSize:     p.integer(4, "buffer_size"),
		BufferCapacity: p.integer(5, "buffer_capacity"),
		ThroughputOPS:  p.float(6, "throughput_ops_per_sec"),
		AvgLatencyNS:   p.float(7, "avg_latency_ns"),
		P95LatencyNS:   p.float(8, "p95_latency_ns"),
		P99LatencyNS:   p.float(9, "p99_latency_ns"),
		NetworkErrors:  p.integer(10, "network_errors"),
		BatchCount:     p.integer(11, "batch_count"),
	}
	if p.err != nil {
		return Record{}, p.err
	}
	return rec, nil
}

// fieldParser converts positional fields and keeps the first failure so
// ParseRecord can assemble the record in one expression.
type fieldParser struct {
	fields []string
	err    error
}

func (p *fieldParser) integer(idx int, name string) int64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(p.fields[idx]), 10, 64)
	if err != nil {
		p.err = fmt.Errorf("field %s: %w", name, err)
		return 0
	}
	return v
}

func (p *fieldParser) float(idx int, name string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(p.fields[idx]), 64)
	if err != nil {
		p.err = fmt.Errorf("field %s: %w", name, err)
		return 0
	}
	return v
}
