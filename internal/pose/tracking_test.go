package pose

import (
	"testing"
	"time"

	"github.com/louisbranch/tangram.space/internal/geometry"
)

func TestTrackingSourceStaleness(t *testing.T) {
	s := NewTrackingSource()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	now := base
	s.setClock(func() time.Time { return now })

	s.Observe("a", geometry.Pose{X: 1}, 0.9, base)
	if snap := s.Snapshot(); len(snap) != 1 {
		t.Fatalf("snapshot = %v, want one piece", snap)
	}

	now = base.Add(time.Second)
	if snap := s.Snapshot(); len(snap) != 0 {
		t.Fatalf("stale snapshot = %v, want empty", snap)
	}
	if c := s.Confidence("a"); c != 0 {
		t.Fatalf("stale confidence = %v, want 0", c)
	}
	if _, ok := s.VisibleSince("a"); ok {
		t.Fatal("stale piece reported visible")
	}
}

func TestTrackingSourceVisibilityRestartsAfterGap(t *testing.T) {
	s := NewTrackingSource()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	now := base
	s.setClock(func() time.Time { return now })

	s.Observe("a", geometry.Pose{}, 0.8, base)
	s.Observe("a", geometry.Pose{}, 0.8, base.Add(100*time.Millisecond))

	now = base.Add(150 * time.Millisecond)
	since, ok := s.VisibleSince("a")
	if !ok || !since.Equal(base) {
		t.Fatalf("visible since = %v (%v), want %v", since, ok, base)
	}

	// A gap longer than the staleness window restarts visibility.
	reappear := base.Add(2 * time.Second)
	s.Observe("a", geometry.Pose{}, 0.8, reappear)
	now = reappear
	since, ok = s.VisibleSince("a")
	if !ok || !since.Equal(reappear) {
		t.Fatalf("visible since after gap = %v (%v), want %v", since, ok, reappear)
	}
}

func TestTrackingSourceSuggestedAnchor(t *testing.T) {
	s := NewTrackingSource()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	now := base.Add(50 * time.Millisecond)
	s.setClock(func() time.Time { return now })

	s.Observe("low", geometry.Pose{}, 0.4, base)
	s.Observe("high", geometry.Pose{}, 0.9, base.Add(10*time.Millisecond))
	if id, ok := s.SuggestedAnchor(); !ok || id != "high" {
		t.Fatalf("suggested anchor = %q (%v), want high-confidence piece", id, ok)
	}

	// Equal confidence: earliest continuous visibility wins.
	s.Observe("low", geometry.Pose{}, 0.9, base.Add(20*time.Millisecond))
	if id, ok := s.SuggestedAnchor(); !ok || id != "low" {
		t.Fatalf("suggested anchor = %q (%v), want longest-visible piece", id, ok)
	}
}

func TestTrackingSourceClampsConfidence(t *testing.T) {
	s := NewTrackingSource()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	s.setClock(func() time.Time { return base })

	s.Observe("a", geometry.Pose{}, 1.7, base)
	if c := s.Confidence("a"); c != 1 {
		t.Fatalf("confidence = %v, want clamped to 1", c)
	}
	s.Observe("b", geometry.Pose{}, -0.3, base)
	if c := s.Confidence("b"); c != 0 {
		t.Fatalf("confidence = %v, want clamped to 0", c)
	}
}
