package pose

import (
	"sync"

	"github.com/louisbranch/tangram.space/internal/geometry"
)

// ManualSource tracks poses driven by direct manipulation: the authoring
// tool or touch input places, moves, and removes pieces explicitly. It
// remembers placement order so anchor selection can prefer the piece placed
// first, and lets the user designate an anchor outright.
//
// ManualSource is safe for concurrent use.
type ManualSource struct {
	mu         sync.Mutex
	poses      map[string]geometry.Pose
	order      []string // placement order, oldest first
	designated string
}

// NewManualSource returns an empty manual source.
func NewManualSource() *ManualSource {
	return &ManualSource{poses: make(map[string]geometry.Pose)}
}

// SetPose places a piece or moves an already placed one. First placement
// records the piece at the end of the placement order.
func (s *ManualSource) SetPose(id string, p geometry.Pose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.poses[id]; !exists {
		s.order = append(s.order, id)
	}
	s.poses[id] = p
}

// Remove takes a piece off the surface. Removing the designated anchor
// clears the designation.
func (s *ManualSource) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.poses[id]; !exists {
		return
	}
	delete(s.poses, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.designated == id {
		s.designated = ""
	}
}

// Designate marks a piece as the user's preferred anchor. An empty id
// clears the designation.
func (s *ManualSource) Designate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.designated = id
}

// Snapshot implements Source.
func (s *ManualSource) Snapshot() map[string]geometry.Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]geometry.Pose, len(s.poses))
	for id, p := range s.poses {
		out[id] = p
	}
	return out
}

// SuggestedAnchor implements Source: the designated piece if one is placed,
// otherwise the earliest placed piece still present.
func (s *ManualSource) SuggestedAnchor() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.designated != "" {
		if _, present := s.poses[s.designated]; present {
			return s.designated, true
		}
	}
	if len(s.order) == 0 {
		return "", false
	}
	return s.order[0], true
}
