package pose

import (
	"sync"
	"time"

	"github.com/louisbranch/tangram.space/internal/geometry"
)

// defaultStaleAfter is how long an unobserved piece stays in tracking
// snapshots before it counts as lost.
const defaultStaleAfter = 250 * time.Millisecond

// TrackingSource tracks poses fed by a continuous optical-tracking pipeline.
// Observations carry a confidence in [0, 1]; pieces drop out of snapshots
// when they have not been observed within the staleness window.
//
// TrackingSource is safe for concurrent use: the feed goroutine observes
// while evaluations snapshot.
type TrackingSource struct {
	mu         sync.Mutex
	tracked    map[string]observation
	staleAfter time.Duration
	clock      func() time.Time
}

type observation struct {
	pose       geometry.Pose
	confidence float64
	firstSeen  time.Time
	lastSeen   time.Time
}

// NewTrackingSource returns an empty tracking source with the default
// staleness window.
func NewTrackingSource() *TrackingSource {
	return &TrackingSource{
		tracked:    make(map[string]observation),
		staleAfter: defaultStaleAfter,
		clock:      time.Now,
	}
}

// SetStaleAfter overrides the staleness window. Zero or negative durations
// keep the default.
func (s *TrackingSource) SetStaleAfter(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staleAfter = d
}

// Observe records one tracker measurement for a piece. Confidence is
// clamped to [0, 1]. Continuous visibility restarts when a piece reappears
// after going stale.
func (s *TrackingSource) Observe(id string, p geometry.Pose, confidence float64, at time.Time) {
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	obs, exists := s.tracked[id]
	if !exists || at.Sub(obs.lastSeen) > s.staleAfter {
		obs.firstSeen = at
	}
	obs.pose = p
	obs.confidence = confidence
	obs.lastSeen = at
	s.tracked[id] = obs
}

// Snapshot implements Source, returning every piece observed within the
// staleness window.
func (s *TrackingSource) Snapshot() map[string]geometry.Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	out := make(map[string]geometry.Pose, len(s.tracked))
	for id, obs := range s.tracked {
		if now.Sub(obs.lastSeen) > s.staleAfter {
			continue
		}
		out[id] = obs.pose
	}
	return out
}

// SuggestedAnchor implements Source: the visible piece with the highest
// confidence, ties broken by longest continuous visibility.
func (s *TrackingSource) SuggestedAnchor() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	best := ""
	var bestObs observation
	for id, obs := range s.tracked {
		if now.Sub(obs.lastSeen) > s.staleAfter {
			continue
		}
		if best == "" ||
			obs.confidence > bestObs.confidence ||
			(obs.confidence == bestObs.confidence && obs.firstSeen.Before(bestObs.firstSeen)) {
			best = id
			bestObs = obs
		}
	}
	return best, best != ""
}

// Confidence returns the piece's latest confidence, zero when the piece is
// stale or unknown.
func (s *TrackingSource) Confidence(id string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	obs, ok := s.tracked[id]
	if !ok || s.clock().Sub(obs.lastSeen) > s.staleAfter {
		return 0
	}
	return obs.confidence
}

// VisibleSince returns when the piece's current continuous visibility
// started. It reports false for stale or unknown pieces.
func (s *TrackingSource) VisibleSince(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obs, ok := s.tracked[id]
	if !ok || s.clock().Sub(obs.lastSeen) > s.staleAfter {
		return time.Time{}, false
	}
	return obs.firstSeen, true
}

// setClock is a test hook.
func (s *TrackingSource) setClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}
