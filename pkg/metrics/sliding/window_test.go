package sliding

import (
	"math"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestWindowStats(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	w, err := newWindow(&WindowConfig{WindowSize: 10 * time.Second, BucketCount: 10}, clock.Now)
	if err != nil {
		t.Fatalf("newWindow() error = %v", err)
	}

	w.Record(0.1, true)
	w.Record(0.3, true)
	w.Record(0.2, false)

	stats := w.GetStats()
	if stats.TotalCount != 3 || stats.SuccessCount != 2 || stats.FailureCount != 1 {
		t.Errorf("GetStats() counts = %+v, want 3/2/1", stats)
	}
	if math.Abs(stats.AvgLatency-0.2) > 1e-9 {
		t.Errorf("AvgLatency = %v, want 0.2", stats.AvgLatency)
	}
	if stats.MinLatency != 0.1 || stats.MaxLatency != 0.3 {
		t.Errorf("Min/Max = %v/%v, want 0.1/0.3", stats.MinLatency, stats.MaxLatency)
	}
	if math.Abs(stats.QPS-0.3) > 1e-9 {
		t.Errorf("QPS = %v, want 0.3", stats.QPS)
	}
}

func TestWindowExpiresOldBuckets(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	w, err := newWindow(&WindowConfig{WindowSize: 2 * time.Second, BucketCount: 2}, clock.Now)
	if err != nil {
		t.Fatalf("newWindow() error = %v", err)
	}

	w.Record(1, true)
	clock.t = clock.t.Add(5 * time.Second)

	if got := w.GetStats().TotalCount; got != 0 {
		t.Errorf("TotalCount = %d, want 0 after the window passed", got)
	}
}

func TestWindowEmpty(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	w, err := newWindow(nil, clock.Now)
	if err != nil {
		t.Fatalf("newWindow() error = %v", err)
	}
	stats := w.GetStats()
	if stats.SuccessRate != 0 || stats.AvgLatency != 0 {
		t.Errorf("GetStats() on empty window = %+v, want zeros", stats)
	}
}

func TestWindowStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWindow(&WindowConfig{WindowSize: time.Second, BucketCount: 10})
	if err != nil {
		t.Fatalf("NewWindow() error = %v", err)
	}
	w.Record(0.01, true)
	w.Stop()
	w.Stop()
}
