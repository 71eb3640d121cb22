package telemetry

// Deltas holds one interval's change for every cumulative field, plus how
// many of those fields moved backwards and were re-anchored.
type Deltas struct {
	OrdersProduced int64
	OrdersConsumed int64
	OrdersDropped  int64
	NetworkErrors  int64
	BatchCount     int64
	Regressions    int
}

// CounterBank converts absolute cumulative counters into per-interval
// deltas. It owns the baseline of last-seen values; the baseline starts at
// zero so the first record's totals count in full. Counters normally only
// grow. A value below its baseline means the producer restarted, so that
// field reports a zero delta for the interval and the baseline re-anchors
// at the lower value instead of ever producing a negative number.
//
// The bank is mutated only by the collector goroutine and needs no locking.
type CounterBank struct {
	ordersProduced int64
	ordersConsumed int64
	ordersDropped  int64
	networkErrors  int64
	batchCount     int64
}

// Apply computes the deltas for rec against the stored baseline and then
// unconditionally replaces the baseline with rec's values. This is the only
// place counter math happens; gauge fields never pass through here.
func (b *CounterBank) Apply(rec Record) Deltas {
	var d Deltas
	d.OrdersProduced = step(&b.ordersProduced, rec.OrdersProduced, &d.Regressions)
	d.OrdersConsumed = step(&b.ordersConsumed, rec.OrdersConsumed, &d.Regressions)
	d.OrdersDropped = step(&b.ordersDropped, rec.OrdersDropped, &d.Regressions)
	d.NetworkErrors = step(&b.networkErrors, rec.NetworkErrors, &d.Regressions)
	d.BatchCount = step(&b.batchCount, rec.BatchCount, &d.Regressions)
	return d
}

func step(baseline *int64, value int64, regressions *int) int64 {
	delta := value - *baseline
	*baseline = value
	if delta < 0 {
		*regressions++
		return 0
	}
	return delta
}
