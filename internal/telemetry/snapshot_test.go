package telemetry_test

import (
	"sync"
	"testing"

	"tapetail/internal/telemetry"
)

func TestCurrentBeforeFirstPublish(t *testing.T) {
	var pub telemetry.Publisher

	if snap, ok := pub.Current(); ok || snap != nil {
		t.Fatalf("expected no data before first publish, got %+v", snap)
	}
}

func TestPublishReplacesSnapshot(t *testing.T) {
	var pub telemetry.Publisher

	pub.Publish(&telemetry.Snapshot{Sequence: 1})
	pub.Publish(&telemetry.Snapshot{Sequence: 2})

	snap, ok := pub.Current()
	if !ok {
		t.Fatal("expected a published snapshot")
	}
	if snap.Sequence != 2 {
		t.Fatalf("expected newest snapshot, got sequence %d", snap.Sequence)
	}
}

// Every snapshot the writer publishes derives all fields from one source
// value, so any torn read would show fields that disagree with each other.
func TestConcurrentReadersNeverSeeTornSnapshot(t *testing.T) {
	var pub telemetry.Publisher

	const (
		readers   = 4
		publishes = 100000
	)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap, ok := pub.Current()
				if !ok {
					continue
				}
				base := snap.TimestampNS
				if snap.OrdersProduced != base*2 || snap.OrdersConsumed != base*3 || snap.BatchCount != base*5 {
					t.Errorf("torn snapshot: %+v", snap)
					return
				}
			}
		}()
	}

	for i := int64(1); i <= publishes; i++ {
		pub.Publish(&telemetry.Snapshot{
			TimestampNS:    i,
			OrdersProduced: i * 2,
			OrdersConsumed: i * 3,
			BatchCount:     i * 5,
		})
	}
	close(stop)
	wg.Wait()
}
