package pose

import "github.com/louisbranch/tangram.space/internal/geometry"

// Source yields piece poses in a shared world frame.
type Source interface {
	// Snapshot returns the current world pose of every tracked piece. The
	// returned map is owned by the caller; implementations must not retain
	// or mutate it after returning. It never contains placeholder entries
	// for absent pieces.
	Snapshot() map[string]geometry.Pose

	// SuggestedAnchor returns an advisory anchor piece id. It is a hint for
	// anchor selection, never authoritative, and reports false when the
	// source has no preference.
	SuggestedAnchor() (string, bool)
}
