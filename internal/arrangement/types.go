package arrangement

// Mode selects how an arrangement is evaluated.
type Mode string

const (
	// ModeFreeform validates geometrically, invariant to the figure's
	// absolute position and global rotation.
	ModeFreeform Mode = "freeform"
	// ModeLattice validates discrete cell placements with no transform
	// invariance.
	ModeLattice Mode = "lattice"
)

// ConstraintKind distinguishes the two relation types.
type ConstraintKind string

const (
	KindCornerToCorner ConstraintKind = "corner-to-corner"
	KindEdgeToEdge     ConstraintKind = "edge-to-edge"
)

// EdgeOrientation constrains the relative direction of two related edges.
type EdgeOrientation string

const (
	OrientationAny      EdgeOrientation = ""
	OrientationSame     EdgeOrientation = "same"
	OrientationOpposite EdgeOrientation = "opposite"
)

// Tolerances bound the floating-point noise an arrangement accepts.
type Tolerances struct {
	// Position is the unit-space distance within which points coincide.
	Position float64 `json:"position"`
	// AngleDegrees is the angular slack for discrete rotation resolution
	// and edge direction checks.
	AngleDegrees float64 `json:"angle_degrees"`
	// EdgeAlignment is the unit-space perpendicular distance within which
	// two edges count as collinear.
	EdgeAlignment float64 `json:"edge_alignment"`
}

// Metadata carries arrangement-wide evaluation settings.
type Metadata struct {
	Mode Mode `json:"mode"`
	// RotationStep is the count of valid discrete rotations; zero means
	// continuous rotation with no index semantics.
	RotationStep int `json:"rotation_step,omitempty"`
	// AllowedGlobalRotations lists the global rotation indices a figure may
	// assemble at. Empty means every index is allowed.
	AllowedGlobalRotations []int `json:"allowed_global_rotations,omitempty"`
	AllowGlobalMirror bool       `json:"allow_global_mirror,omitempty"`
	Tolerances        Tolerances `json:"tolerances"`
}

// Cell addresses one lattice position.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// PlacedElement is an authoring-time piece record. AuthorX and AuthorY are
// preview coordinates for the editor only; runtime validation never reads
// them.
type PlacedElement struct {
	ID            string  `json:"id"`
	Shape         string  `json:"shape"`
	RotationIndex int     `json:"rotation_index"`
	Mirrored      bool    `json:"mirrored,omitempty"`
	AuthorX       float64 `json:"author_x,omitempty"`
	AuthorY       float64 `json:"author_y,omitempty"`
	// Cell is set in lattice mode only.
	Cell *Cell `json:"cell,omitempty"`
}

// RelationConstraint is one edge of the relation graph, tying a named
// feature of piece A to a named feature of piece B.
type RelationConstraint struct {
	ID       string         `json:"id"`
	Kind     ConstraintKind `json:"kind"`
	PieceA   string         `json:"piece_a"`
	FeatureA string         `json:"feature_a"`
	PieceB   string         `json:"piece_b"`
	FeatureB string         `json:"feature_b"`
	// Orientation applies to edge-to-edge constraints.
	Orientation EdgeOrientation `json:"orientation,omitempty"`
	// Gap, when set, requires the corner distance to equal it instead of
	// zero. Corner-to-corner only.
	Gap *float64 `json:"gap,omitempty"`
	// MirrorAware constraints resolve features through the chirality
	// mapping when a piece is mirrored.
	MirrorAware bool `json:"mirror_aware,omitempty"`
	// RotationIndexDelta, when set, requires the pieces' discrete rotation
	// difference (modulo the rotation step) to equal it.
	RotationIndexDelta *int `json:"rotation_index_delta,omitempty"`
	// OverlapRatioMin, when set, requires the projected edge segments to
	// overlap by at least this fraction of the shorter edge. Edge-to-edge
	// only; when absent, one endpoint pair must coincide.
	OverlapRatioMin *float64 `json:"overlap_ratio_min,omitempty"`
}

// GridArrangement is the aggregate puzzle definition. It is immutable
// during validation.
type GridArrangement struct {
	ID          string               `json:"id"`
	Name        string               `json:"name,omitempty"`
	Metadata    Metadata             `json:"metadata"`
	Elements    []PlacedElement      `json:"elements"`
	Constraints []RelationConstraint `json:"constraints,omitempty"`
	// LatticeRules holds the Lua source of externally supplied lattice
	// uniqueness/adjacency rules. Lattice mode only.
	LatticeRules string `json:"lattice_rules,omitempty"`
}

// Element returns the placed element with the given id.
func (a GridArrangement) Element(id string) (PlacedElement, bool) {
	for _, e := range a.Elements {
		if e.ID == id {
			return e, true
		}
	}
	return PlacedElement{}, false
}
