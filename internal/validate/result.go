package validate

import "github.com/louisbranch/tangram.space/internal/lattice"

// ReasonCode classifies a validation failure. Codes are stable identifiers
// for hosts to key UI feedback on; the engine never formats human-readable
// messages.
type ReasonCode string

const (
	// ReasonPieceMissing marks a constraint whose piece is absent from the
	// pose snapshot. Missing pieces are "not yet satisfiable", not errors.
	ReasonPieceMissing ReasonCode = "piece-missing"
	// ReasonCornerMismatch marks two corners farther apart than the
	// position tolerance.
	ReasonCornerMismatch ReasonCode = "corner-mismatch"
	// ReasonGapMismatch marks a corner pair whose distance differs from the
	// required gap by more than the position tolerance.
	ReasonGapMismatch ReasonCode = "gap-mismatch"
	// ReasonEdgeNotCollinear marks two edges outside the edge alignment
	// tolerance of a shared line.
	ReasonEdgeNotCollinear ReasonCode = "edge-not-collinear"
	// ReasonEdgeOrientation marks edge directions that violate the
	// constraint's same/opposite requirement.
	ReasonEdgeOrientation ReasonCode = "edge-orientation"
	// ReasonEdgeOverlapRatio marks projected edge segments overlapping by
	// less than the required fraction of the shorter edge.
	ReasonEdgeOverlapRatio ReasonCode = "edge-overlap-ratio"
	// ReasonEdgeEndpointsApart marks an edge constraint without an overlap
	// ratio whose endpoint pairs all miss the position tolerance.
	ReasonEdgeEndpointsApart ReasonCode = "edge-endpoints-apart"
	// ReasonRotationDelta marks a rotation index difference that does not
	// equal the constraint's delta modulo the rotation step.
	ReasonRotationDelta ReasonCode = "rotation-delta"
	// ReasonRotationUnresolved marks a piece whose continuous angle is
	// outside tolerance of every discrete step.
	ReasonRotationUnresolved ReasonCode = "rotation-unresolved"
	// ReasonGlobalRotationUnresolved marks an anchor angle outside
	// tolerance of every discrete step; no constraint is checked.
	ReasonGlobalRotationUnresolved ReasonCode = "global-rotation-unresolved"
	// ReasonGlobalRotationNotAllowed marks a resolved global rotation index
	// absent from the arrangement's allowed set.
	ReasonGlobalRotationNotAllowed ReasonCode = "global-rotation-not-allowed"
)

// ConstraintViolation records one failed constraint.
type ConstraintViolation struct {
	ConstraintID string     `json:"constraint_id"`
	Reason       ReasonCode `json:"reason"`
}

// Overlap records a pair of pieces with positive intersection area in the
// anchor frame.
type Overlap struct {
	PieceA string  `json:"piece_a"`
	PieceB string  `json:"piece_b"`
	Area   float64 `json:"area"`
}

// Hint is a near-miss diagnostic: a failed coincidence whose remaining
// distance is within a small multiple of the position tolerance. Hosts may
// use hints to nudge the player; hints never affect Passed.
type Hint struct {
	ConstraintID string  `json:"constraint_id"`
	Distance     float64 `json:"distance"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Passed   bool   `json:"passed"`
	AnchorID string `json:"anchor_id,omitempty"`

	// GlobalReason is set when validation fails before any constraint is
	// checked: an unresolved or disallowed global rotation.
	GlobalReason ReasonCode `json:"global_reason,omitempty"`
	// GlobalRotationIndex is the resolved global rotation, -1 when the
	// arrangement has no rotation step or resolution failed.
	GlobalRotationIndex int  `json:"global_rotation_index"`
	RotationResolved    bool `json:"rotation_resolved"`

	// MissingPieces lists arrangement elements absent from the snapshot,
	// for diagnostics. Absence fails only constraints that reference the
	// piece.
	MissingPieces []string `json:"missing_pieces,omitempty"`

	Violated []ConstraintViolation `json:"violated,omitempty"`
	Overlaps []Overlap             `json:"overlaps,omitempty"`
	Hints    []Hint                `json:"hints,omitempty"`

	// LatticeViolations is populated in lattice mode only.
	LatticeViolations []lattice.Violation `json:"lattice_violations,omitempty"`
}

func (r *Result) violate(constraintID string, reason ReasonCode) {
	r.Violated = append(r.Violated, ConstraintViolation{ConstraintID: constraintID, Reason: reason})
}
