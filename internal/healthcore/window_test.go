package healthcore

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func TestRollingWindowBasicIngest(t *testing.T) {
	w := NewRollingWindow()
	m := Metrics{RTTMs: 100, ThroughputMbps: 50, LossPct: 1, JitterMs: 10}
	if !w.Ingest(1000, m) {
		t.Fatal("expected ingest to be accepted")
	}

	s := w.Summary()
	if s.NewestTs != 1000 || s.OldestTs != 1000-44 {
		t.Errorf("newest/oldest = %d/%d, want 1000/%d", s.NewestTs, s.OldestTs, 1000-44)
	}
	if s.Count != 1 {
		t.Errorf("count = %d, want 1", s.Count)
	}
	if !almostEqual(s.AvgRTTMs, 100) || !almostEqual(s.AvgTP, 50) || !almostEqual(s.AvgLossPct, 1) || !almostEqual(s.AvgJitterMs, 10) {
		t.Errorf("unexpected averages: %+v", s)
	}
}

func TestRollingWindowPartialFillMeans(t *testing.T) {
	w := NewRollingWindow()
	for i := 0; i < 10; i++ {
		w.Ingest(2000+int64(i), Metrics{RTTMs: 100 + float64(i)})
	}
	s := w.Summary()
	if s.Count != 10 {
		t.Fatalf("count = %d, want 10", s.Count)
	}
	if !almostEqual(s.AvgRTTMs, 104.5) {
		t.Errorf("avg_rtt = %v, want 104.5", s.AvgRTTMs)
	}
}

func TestRollingWindowRingOverwrite(t *testing.T) {
	w := NewRollingWindow()
	w.Ingest(3000, Metrics{RTTMs: 10})
	w.Ingest(3045, Metrics{RTTMs: 110}) // same ring index (W=45), later ts

	s := w.Summary()
	if s.NewestTs != 3045 {
		t.Errorf("newest_ts = %d, want 3045", s.NewestTs)
	}
	if w.HasSample(3000) {
		t.Error("has_sample(3000) should be false after overwrite+slide")
	}
	if !w.HasSample(3045) {
		t.Error("has_sample(3045) should be true")
	}
	if s.Count != 1 || !almostEqual(s.AvgRTTMs, 110) {
		t.Errorf("summary = %+v, want count=1 avg_rtt=110", s)
	}
}

func TestRollingWindowSameTsCorrection(t *testing.T) {
	w := NewRollingWindow()
	w.Ingest(4000, Metrics{RTTMs: 50})
	w.Ingest(4000, Metrics{RTTMs: 70})

	s := w.Summary()
	if s.Count != 1 {
		t.Fatalf("count = %d, want 1", s.Count)
	}
	if !almostEqual(s.AvgRTTMs, 70) {
		t.Errorf("avg_rtt = %v, want 70", s.AvgRTTMs)
	}
	got, ok := w.Get(4000)
	if !ok || !almostEqual(got.RTTMs, 70) {
		t.Errorf("get(4000) = %+v, ok=%v, want rtt=70", got, ok)
	}
}

func TestRollingWindowOutOfOrderAccepted(t *testing.T) {
	w := NewRollingWindow()
	w.Ingest(5000, Metrics{RTTMs: 10})
	w.Ingest(5002, Metrics{RTTMs: 30})
	w.Ingest(5001, Metrics{RTTMs: 20}) // late, but in-window

	s := w.Summary()
	if s.Count != 3 {
		t.Fatalf("count = %d, want 3", s.Count)
	}
	if !almostEqual(s.AvgRTTMs, 20) {
		t.Errorf("avg_rtt = %v, want 20", s.AvgRTTMs)
	}
}

func TestRollingWindowTooOldRejected(t *testing.T) {
	w := NewRollingWindow()
	w.Ingest(6000, Metrics{RTTMs: 1})
	w.NoteTime(6100)

	before := w.Summary()
	if w.Ingest(6000, Metrics{RTTMs: 999}) {
		t.Fatal("expected too-old ingest to be rejected")
	}
	after := w.Summary()
	if before != after {
		t.Errorf("summary changed after rejected ingest: %+v -> %+v", before, after)
	}
}

func TestRollingWindowEmptySummary(t *testing.T) {
	w := NewRollingWindow()
	s := w.Summary()
	if s.Count != 0 || s.Confidence != 0 || s.MissingRate != 1 {
		t.Errorf("empty summary = %+v, want count=0 confidence=0 missing_rate=1", s)
	}
	if s.AvgRTTMs != 0 || s.AvgTP != 0 || s.AvgLossPct != 0 || s.AvgJitterMs != 0 {
		t.Errorf("empty summary averages should default to 0, got %+v", s)
	}
}

func TestRollingWindowIdempotentCorrection(t *testing.T) {
	m := Metrics{RTTMs: 42, ThroughputMbps: 10, LossPct: 2, JitterMs: 3}

	single := NewRollingWindow()
	single.Ingest(100, m)

	twice := NewRollingWindow()
	twice.Ingest(100, m)
	twice.Ingest(100, m)

	if single.Summary() != twice.Summary() {
		t.Errorf("repeated identical ingest changed summary: %+v vs %+v", single.Summary(), twice.Summary())
	}
}

func TestRollingWindowReorderingWithinWindowIsOrderIndependent(t *testing.T) {
	type sample struct {
		ts int64
		m  Metrics
	}
	samples := []sample{
		{ts: 1000, m: Metrics{RTTMs: 10, ThroughputMbps: 1}},
		{ts: 1010, m: Metrics{RTTMs: 20, ThroughputMbps: 2}},
		{ts: 1020, m: Metrics{RTTMs: 30, ThroughputMbps: 3}},
		{ts: 1030, m: Metrics{RTTMs: 40, ThroughputMbps: 4}},
	}

	forward := NewRollingWindow()
	for _, s := range samples {
		forward.Ingest(s.ts, s.m)
	}

	reversed := NewRollingWindow()
	for i := len(samples) - 1; i >= 0; i-- {
		reversed.Ingest(samples[i].ts, samples[i].m)
	}

	if forward.Summary() != reversed.Summary() {
		t.Errorf("order dependent: forward=%+v reversed=%+v", forward.Summary(), reversed.Summary())
	}
}

func TestRollingWindowNegativeTimestampModulo(t *testing.T) {
	w := NewRollingWindow()
	if !w.Ingest(-10, Metrics{RTTMs: 5}) {
		t.Fatal("expected negative timestamp to be accepted on an empty window")
	}
	if !w.HasSample(-10) {
		t.Error("has_sample(-10) should be true")
	}
}

func TestRollingWindowSummaryCountNeverExceedsWindow(t *testing.T) {
	w := NewRollingWindow()
	for ts := int64(0); ts < 1000; ts++ {
		w.Ingest(ts, Metrics{RTTMs: float64(ts)})
		if s := w.Summary(); s.Count > Window {
			t.Fatalf("at ts=%d count=%d exceeds window %d", ts, s.Count, Window)
		}
	}
}
