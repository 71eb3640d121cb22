package telemetry_test

import (
	"testing"

	"tapetail/internal/telemetry"
)

func TestApplyPrimesBaselineFromZero(t *testing.T) {
	var bank telemetry.CounterBank

	d := bank.Apply(telemetry.Record{
		OrdersProduced: 10,
		OrdersConsumed: 8,
		OrdersDropped:  2,
		NetworkErrors:  0,
		BatchCount:     1,
	})
	if d.OrdersProduced != 10 || d.OrdersConsumed != 8 || d.OrdersDropped != 2 || d.BatchCount != 1 {
		t.Fatalf("first record should count in full: %+v", d)
	}
	if d.Regressions != 0 {
		t.Fatalf("unexpected regressions: %d", d.Regressions)
	}
}

func TestApplyDeltaSumsMatchTotals(t *testing.T) {
	var bank telemetry.CounterBank
	records := []telemetry.Record{
		{OrdersProduced: 10, OrdersConsumed: 8, BatchCount: 1},
		{OrdersProduced: 25, OrdersConsumed: 20, BatchCount: 2},
		{OrdersProduced: 25, OrdersConsumed: 25, BatchCount: 2},
		{OrdersProduced: 90, OrdersConsumed: 70, BatchCount: 9},
	}

	var produced, consumed, batches int64
	for _, rec := range records {
		d := bank.Apply(rec)
		produced += d.OrdersProduced
		consumed += d.OrdersConsumed
		batches += d.BatchCount
	}

	final := records[len(records)-1]
	if produced != final.OrdersProduced {
		t.Fatalf("produced deltas sum to %d, want %d", produced, final.OrdersProduced)
	}
	if consumed != final.OrdersConsumed {
		t.Fatalf("consumed deltas sum to %d, want %d", consumed, final.OrdersConsumed)
	}
	if batches != final.BatchCount {
		t.Fatalf("batch deltas sum to %d, want %d", batches, final.BatchCount)
	}
}

func TestApplyReanchorsOnRegression(t *testing.T) {
	var bank telemetry.CounterBank

	bank.Apply(telemetry.Record{OrdersProduced: 100})

	d := bank.Apply(telemetry.Record{OrdersProduced: 40})
	if d.OrdersProduced != 0 {
		t.Fatalf("regressed counter must report zero delta, got %d", d.OrdersProduced)
	}
	if d.Regressions != 1 {
		t.Fatalf("expected one regression, got %d", d.Regressions)
	}

	d = bank.Apply(telemetry.Record{OrdersProduced: 50})
	if d.OrdersProduced != 10 {
		t.Fatalf("delta after re-anchor should be relative to the lower value, got %d", d.OrdersProduced)
	}
	if d.Regressions != 0 {
		t.Fatalf("unexpected regressions after recovery: %d", d.Regressions)
	}
}

func TestApplyCountsEachRegressedField(t *testing.T) {
	var bank telemetry.CounterBank

	bank.Apply(telemetry.Record{OrdersProduced: 100, OrdersConsumed: 90, BatchCount: 10})

	d := bank.Apply(telemetry.Record{OrdersProduced: 5, OrdersConsumed: 3, BatchCount: 11})
	if d.Regressions != 2 {
		t.Fatalf("expected two regressed fields, got %d", d.Regressions)
	}
	if d.BatchCount != 1 {
		t.Fatalf("non-regressed field should still report its delta, got %d", d.BatchCount)
	}
}
