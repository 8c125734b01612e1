package healthcore

import "testing"

func TestTrackerIngestRejectedHasNoSideEffects(t *testing.T) {
	tr := NewTracker("eth0", DefaultTrackerConfig())
	tr.NoteTime(1000)
	before := tr.Snapshot()

	if tr.Ingest(1000-Window, Metrics{RTTMs: 5}) {
		t.Fatal("expected too-old ingest to be rejected")
	}
	after := tr.Snapshot()
	if before != after {
		t.Errorf("snapshot changed after rejected ingest: %+v -> %+v", before, after)
	}
	if tr.DroppedCount() != 1 {
		t.Errorf("DroppedCount() = %d, want 1", tr.DroppedCount())
	}
}

func TestTrackerNoSamplesStaysDegraded(t *testing.T) {
	tr := NewTracker("wifi0", DefaultTrackerConfig())
	for ts := int64(0); ts < 100; ts++ {
		tr.NoteTime(ts)
	}
	s := tr.Snapshot()
	if s.Status != Degraded {
		t.Errorf("status = %v, want Degraded with no samples ever", s.Status)
	}
	if s.ScoreUsed != 0 {
		t.Errorf("score_used = %v, want 0 with no samples", s.ScoreUsed)
	}
	if _, transitioned := tr.DrainTransition(); transitioned {
		t.Error("expected no transition to ever fire with no data")
	}
}

func TestTrackerSteadyGoodPromotesOnceAndStays(t *testing.T) {
	tr := NewTracker("eth0", DefaultTrackerConfig())
	good := Metrics{RTTMs: 20, ThroughputMbps: 180, LossPct: 0.1, JitterMs: 3}

	transitions := 0
	for ts := int64(0); ts < 90; ts++ {
		tr.NoteTime(ts)
		tr.Ingest(ts, good)
		if _, ok := tr.DrainTransition(); ok {
			transitions++
		}
	}

	if transitions != 1 {
		t.Errorf("expected exactly 1 transition for steady-good, got %d", transitions)
	}
	s := tr.Snapshot()
	if s.Status != Healthy {
		t.Errorf("final status = %v, want Healthy", s.Status)
	}
	if s.ScoreUsed <= 0.72 {
		t.Errorf("score_used = %v, want > 0.72 once promoted", s.ScoreUsed)
	}
}

func TestTrackerMisleadingThroughputStaysNotHealthy(t *testing.T) {
	tr := NewTracker("lte0", DefaultTrackerConfig())
	bad := Metrics{RTTMs: 95, ThroughputMbps: 160, LossPct: 10, JitterMs: 70}

	for ts := int64(0); ts < 90; ts++ {
		tr.NoteTime(ts)
		tr.Ingest(ts, bad)
	}
	s := tr.Snapshot()
	if s.Status == Healthy {
		t.Errorf("misleading-throughput interface ended Healthy, want Degraded or Down")
	}
}

func TestTrackerSnapshotInvariants(t *testing.T) {
	tr := NewTracker("sat0", DefaultTrackerConfig())
	for ts := int64(0); ts < 200; ts++ {
		tr.NoteTime(ts)
		if ts%3 != 0 { // some missing samples
			tr.Ingest(ts, Metrics{RTTMs: 50, ThroughputMbps: 100, LossPct: 1, JitterMs: 5})
		}
		s := tr.Snapshot()
		if s.ScoreRaw < 0 || s.ScoreRaw > 1 {
			t.Fatalf("t=%d score_raw out of range: %v", ts, s.ScoreRaw)
		}
		if s.ScoreUsed < 0 || s.ScoreUsed > 1 {
			t.Fatalf("t=%d score_used out of range: %v", ts, s.ScoreUsed)
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			t.Fatalf("t=%d confidence out of range: %v", ts, s.Confidence)
		}
		if !almostEqual(s.Confidence+s.MissingRate, 1) {
			t.Fatalf("t=%d confidence+missing_rate = %v, want 1", ts, s.Confidence+s.MissingRate)
		}
	}
}
