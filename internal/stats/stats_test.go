package stats

import (
	"testing"
	"time"
)

func TestParseStatsSnapshotPercentiles(t *testing.T) {
	stats := NewParseStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms)*time.Millisecond, 4, 3)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
	if snap.Pages != 20 || snap.Links != 15 {
		t.Fatalf("expected pages=20 links=15, got pages=%d links=%d", snap.Pages, snap.Links)
	}
	if snap.Window != "1h0m0s" {
		t.Fatalf("expected window=1h0m0s, got %q", snap.Window)
	}
}

func TestParseStatsCountsFailures(t *testing.T) {
	stats := NewParseStats(time.Hour)
	stats.Record(10*time.Millisecond, 1, 0)
	stats.RecordFailure(5 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 2 || snap.Failed != 1 {
		t.Fatalf("expected count=2 failed=1, got count=%d failed=%d", snap.Count, snap.Failed)
	}
	if snap.MinMs != 5 {
		t.Fatalf("expected failed latency in min, got %d", snap.MinMs)
	}
}

func TestParseStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewParseStats(10 * time.Millisecond)
	stats.Record(100*time.Millisecond, 1, 1)
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200*time.Millisecond, 1, 1)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestParseStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewParseStats(time.Hour)
	stats.Record(-10*time.Millisecond, 0, 0)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestPercentileEdges(t *testing.T) {
	values := []int64{1, 2, 3}
	if got := percentile(values, 0); got != 1 {
		t.Errorf("expected p0=1, got %f", got)
	}
	if got := percentile(values, 100); got != 3 {
		t.Errorf("expected p100=3, got %f", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("expected 0 for empty input, got %f", got)
	}
}
