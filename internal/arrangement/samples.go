package arrangement

// Built-in example arrangements, used by the seed command and as test
// fixtures.

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

// TwoTriangleSquare returns the canonical freeform example: two small right
// triangles whose hypotenuses join to form a unit square. Piece B sits half
// a turn from piece A on an eighth-turn step.
func TwoTriangleSquare() GridArrangement {
	return GridArrangement{
		ID:   "two-triangle-square",
		Name: "Two-Triangle Square",
		Metadata: Metadata{
			Mode:         ModeFreeform,
			RotationStep: 8,
			Tolerances: Tolerances{
				Position:      0.05,
				AngleDegrees:  5,
				EdgeAlignment: 0.05,
			},
		},
		Elements: []PlacedElement{
			{ID: "tri-a", Shape: "small-triangle", RotationIndex: 0},
			{ID: "tri-b", Shape: "small-triangle", RotationIndex: 4, AuthorX: 1, AuthorY: 1},
		},
		Constraints: []RelationConstraint{
			{
				ID:                 "hypotenuse-join",
				Kind:               KindEdgeToEdge,
				PieceA:             "tri-a",
				FeatureA:           "hypotenuse",
				PieceB:             "tri-b",
				FeatureB:           "hypotenuse",
				Orientation:        OrientationOpposite,
				MirrorAware:        true,
				RotationIndexDelta: intPtr(4),
				OverlapRatioMin:    floatPtr(1),
			},
		},
	}
}

// AdjacentLatticeRow returns a lattice example: three squares on a row of
// cells, with an externally supplied Lua rule requiring every piece to be
// orthogonally adjacent to another.
func AdjacentLatticeRow() GridArrangement {
	return GridArrangement{
		ID:   "adjacent-lattice-row",
		Name: "Adjacent Lattice Row",
		Metadata: Metadata{
			Mode:         ModeLattice,
			RotationStep: 4,
		},
		Elements: []PlacedElement{
			{ID: "sq-a", Shape: "square", Cell: &Cell{Col: 0, Row: 0}},
			{ID: "sq-b", Shape: "square", Cell: &Cell{Col: 1, Row: 0}},
			{ID: "sq-c", Shape: "square", Cell: &Cell{Col: 2, Row: 0}},
		},
		LatticeRules: `function check(placements)
  local violations = {}
  for i, p in ipairs(placements) do
    local adjacent = false
    for j, q in ipairs(placements) do
      if i ~= j and math.abs(p.col - q.col) + math.abs(p.row - q.row) == 1 then
        adjacent = true
      end
    end
    if not adjacent and #placements > 1 then
      violations[#violations + 1] = { code = "isolated", pieces = { p.id } }
    end
  end
  return violations
end`,
	}
}

// Samples returns every built-in arrangement.
func Samples() []GridArrangement {
	return []GridArrangement{
		TwoTriangleSquare(),
		AdjacentLatticeRow(),
	}
}
