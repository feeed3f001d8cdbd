package anchor

import (
	"time"

	"github.com/louisbranch/tangram.space/internal/geometry"
	"github.com/louisbranch/tangram.space/internal/pose"
)

// Frame is the product of one anchor resolution: the chosen anchor, the
// world snapshot it was derived from, and every present piece's pose
// relative to the anchor. The anchor's own relative pose is the identity.
type Frame struct {
	AnchorID string
	World    map[string]geometry.Pose
	Relative map[string]geometry.Pose
}

// Policy chooses the anchor piece for one evaluation. current is the
// previous anchor ("" on the first call); world holds the present pieces.
// Policies may keep history between calls, so a policy instance belongs to
// exactly one manager.
type Policy interface {
	Select(current string, world map[string]geometry.Pose, source pose.Source, now time.Time) string
}

// Manager owns anchor selection for one active arrangement.
type Manager struct {
	policy  Policy
	current string
}

// NewManager creates a manager with the given selection policy.
func NewManager(policy Policy) *Manager {
	return &Manager{policy: policy}
}

// Current returns the anchor chosen by the last Resolve call.
func (m *Manager) Current() string { return m.current }

// Resolve takes a fresh snapshot from the source, selects the anchor, and
// computes anchor-relative poses. It reports false when no pieces are
// present; the arrangement is not yet evaluable, which is not a validation
// failure. A lost anchor triggers reselection before any relative pose is
// computed; a stale anchor is never used.
func (m *Manager) Resolve(source pose.Source, now time.Time) (Frame, bool) {
	world := source.Snapshot()
	if len(world) == 0 {
		m.current = ""
		return Frame{}, false
	}

	m.current = m.policy.Select(m.current, world, source, now)
	if _, present := world[m.current]; !present {
		// Policies must return a present piece; guard against a broken one
		// rather than validate against a stale frame.
		m.current = ""
		return Frame{}, false
	}

	inverse := world[m.current].Invert()
	relative := make(map[string]geometry.Pose, len(world))
	for id, worldPose := range world {
		relative[id] = inverse.Compose(worldPose)
	}
	return Frame{AnchorID: m.current, World: world, Relative: relative}, true
}
