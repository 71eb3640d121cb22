package telemetry_test

import (
	"errors"
	"strings"
	"testing"

	"tapetail/internal/telemetry"
)

func TestParseRecord(t *testing.T) {
	line := "1000000000,10,8,2,50,100,500.0,1000.0,2000.0,3000.0,0,1"

	rec, err := telemetry.ParseRecord(line)
	if err != nil {
		t.Fatalf("parse record: %v", err)
	}
	if rec.TimestampNS != 1000000000 {
		t.Fatalf("unexpected timestamp: %d", rec.TimestampNS)
	}
	if rec.OrdersProduced != 10 || rec.OrdersConsumed != 8 || rec.OrdersDropped != 2 {
		t.Fatalf("unexpected order counters: %+v", rec)
	}
	if rec.BufferSize != 50 || rec.BufferCapacity != 100 {
		t.Fatalf("unexpected buffer fields: %+v", rec)
	}
	if rec.ThroughputOPS != 500.0 || rec.AvgLatencyNS != 1000.0 {
		t.Fatalf("unexpected gauge fields: %+v", rec)
	}
	if rec.P95LatencyNS != 2000.0 || rec.P99LatencyNS != 3000.0 {
		t.Fatalf("unexpected latency percentiles: %+v", rec)
	}
	if rec.NetworkErrors != 0 || rec.BatchCount != 1 {
		t.Fatalf("unexpected trailing counters: %+v", rec)
	}
}

func TestParseRecordShortLine(t *testing.T) {
	line := "1000000000,10,8,2,50,100,500.0,1000.0,2000.0,3000.0,0"

	if _, err := telemetry.ParseRecord(line); !errors.Is(err, telemetry.ErrFieldCount) {
		t.Fatalf("expected field count error, got %v", err)
	}
}

func TestParseRecordRejectsNonNumericInteger(t *testing.T) {
	line := "1000000000,bad,8,2,50,100,500.0,1000.0,2000.0,3000.0,0,1"

	_, err := telemetry.ParseRecord(line)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "orders_produced") {
		t.Fatalf("error should name the field: %v", err)
	}
}

func TestParseRecordRejectsFloatInIntegerField(t *testing.T) {
	line := "1000000000,10.5,8,2,50,100,500.0,1000.0,2000.0,3000.0,0,1"

	if _, err := telemetry.ParseRecord(line); err == nil {
		t.Fatal("expected parse error for decimal in integer field")
	}
}

func TestParseRecordAcceptsIntegerInFloatField(t *testing.T) {
	line := "1000000000,10,8,2,50,100,500,1000,2000,3000,0,1"

	rec, err := telemetry.ParseRecord(line)
	if err != nil {
		t.Fatalf("parse record: %v", err)
	}
	if rec.ThroughputOPS != 500 || rec.P99LatencyNS != 3000 {
		t.Fatalf("unexpected float fields: %+v", rec)
	}
}

func TestParseRecordIgnoresExtraFields(t *testing.T) {
	line := "1000000000,10,8,2,50,100,500.0,1000.0,2000.0,3000.0,0,1,999,extra"

	rec, err := telemetry.ParseRecord(line)
	if err != nil {
		t.Fatalf("parse record: %v", err)
	}
	if rec.BatchCount != 1 {
		t.Fatalf("unexpected batch count: %d", rec.BatchCount)
	}
}

func TestParseRecordTrimsFieldWhitespace(t *testing.T) {
	line := "1000000000, 10 ,8,2,50,100, 500.0 ,1000.0,2000.0,3000.0,0,1"

	rec, err := telemetry.ParseRecord(line)
	if err != nil {
		t.Fatalf("parse record: %v", err)
	}
	if rec.OrdersProduced != 10 || rec.ThroughputOPS != 500.0 {
		t.Fatalf("whitespace should not break conversion: %+v", rec)
	}
}
