package anchor

import (
	"sort"
	"time"

	"github.com/louisbranch/tangram.space/internal/geometry"
	"github.com/louisbranch/tangram.space/internal/pose"
)

// ManualPolicy keeps the anchor sticky under direct manipulation: the
// current anchor stays anchor while it remains present, no matter how other
// pieces move. When the anchor is removed, the source's suggestion (the
// user-designated piece or the earliest placed one) is promoted.
type ManualPolicy struct{}

// Select implements Policy.
func (ManualPolicy) Select(current string, world map[string]geometry.Pose, source pose.Source, _ time.Time) string {
	if _, present := world[current]; current != "" && present {
		return current
	}
	if suggested, ok := source.SuggestedAnchor(); ok {
		if _, present := world[suggested]; present {
			return suggested
		}
	}
	return lowestID(world)
}

// Hysteresis defaults for tracking-mode anchor switching. Both are tunables
// on TrackingPolicy, not contract constants.
const (
	DefaultStableWindow     = 500 * time.Millisecond
	DefaultConfidenceMargin = 0.15
)

// TrackingStats exposes the tracking source measurements the hysteresis
// policy needs. *pose.TrackingSource implements it.
type TrackingStats interface {
	Confidence(id string) float64
	VisibleSince(id string) (time.Time, bool)
}

// TrackingPolicy prefers the piece with the highest confidence and longest
// continuous visibility, but re-anchors only after a challenger has held a
// confidence margin over the current anchor for a minimum stable duration.
// Without the hysteresis window the anchor would flap whenever two pieces'
// confidences fluctuate around each other.
type TrackingPolicy struct {
	Stats TrackingStats
	// StableWindow is the minimum duration a challenger must stay ahead
	// before it takes over. Zero means DefaultStableWindow.
	StableWindow time.Duration
	// ConfidenceMargin is how far a challenger's confidence must exceed the
	// current anchor's. Zero means DefaultConfidenceMargin.
	ConfidenceMargin float64

	challenger      string
	challengerSince time.Time
}

// Select implements Policy.
func (p *TrackingPolicy) Select(current string, world map[string]geometry.Pose, source pose.Source, now time.Time) string {
	if _, present := world[current]; current == "" || !present {
		// No anchor to defend: adopt the best piece immediately.
		p.resetChallenge()
		return p.bestPiece(world, source)
	}

	best := p.bestPiece(world, source)
	if best == current {
		p.resetChallenge()
		return current
	}

	margin := p.ConfidenceMargin
	if margin == 0 {
		margin = DefaultConfidenceMargin
	}
	if p.Stats == nil || p.Stats.Confidence(best) < p.Stats.Confidence(current)+margin {
		// Not convincingly better; stay put.
		p.resetChallenge()
		return current
	}

	if p.challenger != best {
		p.challenger = best
		p.challengerSince = now
		return current
	}

	window := p.StableWindow
	if window == 0 {
		window = DefaultStableWindow
	}
	if now.Sub(p.challengerSince) < window {
		return current
	}
	if since, ok := p.Stats.VisibleSince(best); !ok || now.Sub(since) < window {
		return current
	}

	p.resetChallenge()
	return best
}

func (p *TrackingPolicy) resetChallenge() {
	p.challenger = ""
	p.challengerSince = time.Time{}
}

// bestPiece returns the source's suggestion when present, otherwise the
// highest-confidence present piece, otherwise the lowest id for
// determinism.
func (p *TrackingPolicy) bestPiece(world map[string]geometry.Pose, source pose.Source) string {
	if suggested, ok := source.SuggestedAnchor(); ok {
		if _, present := world[suggested]; present {
			return suggested
		}
	}
	if p.Stats != nil {
		best := ""
		bestConfidence := -1.0
		for _, id := range sortedIDs(world) {
			if c := p.Stats.Confidence(id); c > bestConfidence {
				best = id
				bestConfidence = c
			}
		}
		if best != "" {
			return best
		}
	}
	return lowestID(world)
}

func sortedIDs(world map[string]geometry.Pose) []string {
	ids := make([]string, 0, len(world))
	for id := range world {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func lowestID(world map[string]geometry.Pose) string {
	ids := sortedIDs(world)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
