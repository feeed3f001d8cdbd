package arrangement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/tangram.space/internal/shape"
)

// Configuration errors reported by Validate. A failing arrangement must not
// be loaded; none of these occur at evaluation time.
var (
	ErrMissingID            = errors.New("arrangement id is required")
	ErrInvalidMode          = errors.New("invalid puzzle mode")
	ErrNoElements           = errors.New("arrangement has no elements")
	ErrDuplicateElement     = errors.New("duplicate element id")
	ErrDuplicateConstraint  = errors.New("duplicate constraint id")
	ErrUnknownPiece         = errors.New("constraint references unknown piece")
	ErrSelfConstraint       = errors.New("constraint relates a piece to itself")
	ErrInvalidKind          = errors.New("invalid constraint kind")
	ErrInvalidOrientation   = errors.New("invalid edge orientation")
	ErrOrientationOnCorner  = errors.New("orientation is only valid on edge-to-edge constraints")
	ErrNegativeGap          = errors.New("gap must be non-negative")
	ErrGapOnEdge            = errors.New("gap is only valid on corner-to-corner constraints")
	ErrInvalidOverlapRatio  = errors.New("overlap ratio must be in (0, 1]")
	ErrOverlapRatioOnCorner = errors.New("overlap ratio is only valid on edge-to-edge constraints")
	ErrInvalidRotationStep  = errors.New("rotation step must be non-negative")
	ErrRotationIndexRange   = errors.New("rotation index outside rotation step range")
	ErrRotationDeltaNoStep  = errors.New("rotation index delta requires a rotation step")
	ErrInvalidTolerance     = errors.New("tolerances must be positive")
	ErrMissingCell          = errors.New("lattice element has no cell")
	ErrMissingLatticeRules  = errors.New("lattice arrangement has no rules script")
)

// Validate checks the arrangement against the shape registry. It returns the
// first configuration error found; a nil result guarantees every piece,
// shape, and feature reference resolves and every constraint option
// combination is legal.
func (a GridArrangement) Validate(registry *shape.Registry) error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrMissingID
	}
	if a.Metadata.Mode != ModeFreeform && a.Metadata.Mode != ModeLattice {
		return fmt.Errorf("%w: %q", ErrInvalidMode, a.Metadata.Mode)
	}
	if len(a.Elements) == 0 {
		return ErrNoElements
	}
	if err := a.validateMetadata(); err != nil {
		return err
	}

	geometries := make(map[string]shape.Geometry, len(a.Elements))
	for _, el := range a.Elements {
		if _, dup := geometries[el.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateElement, el.ID)
		}
		typ, err := shape.ParseType(el.Shape)
		if err != nil {
			return fmt.Errorf("element %q: %w", el.ID, err)
		}
		g, ok := registry.Lookup(typ)
		if !ok {
			return fmt.Errorf("element %q: %w: %s", el.ID, shape.ErrUnknownType, typ)
		}
		if a.Metadata.RotationStep > 0 &&
			(el.RotationIndex < 0 || el.RotationIndex >= a.Metadata.RotationStep) {
			return fmt.Errorf("%w: element %q index %d", ErrRotationIndexRange, el.ID, el.RotationIndex)
		}
		if a.Metadata.Mode == ModeLattice && el.Cell == nil {
			return fmt.Errorf("%w: element %q", ErrMissingCell, el.ID)
		}
		geometries[el.ID] = g
	}

	if a.Metadata.Mode == ModeLattice {
		if strings.TrimSpace(a.LatticeRules) == "" {
			return ErrMissingLatticeRules
		}
		// Lattice mode ignores the relation graph; nothing further to check.
		return nil
	}

	constraintIDs := make(map[string]bool, len(a.Constraints))
	for _, c := range a.Constraints {
		if constraintIDs[c.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateConstraint, c.ID)
		}
		constraintIDs[c.ID] = true
		if err := a.validateConstraint(c, geometries); err != nil {
			return fmt.Errorf("constraint %q: %w", c.ID, err)
		}
	}
	return nil
}

func (a GridArrangement) validateMetadata() error {
	m := a.Metadata
	if m.RotationStep < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRotationStep, m.RotationStep)
	}
	for _, idx := range m.AllowedGlobalRotations {
		if m.RotationStep == 0 {
			return fmt.Errorf("%w: allowed global rotations require a rotation step", ErrInvalidRotationStep)
		}
		if idx < 0 || idx >= m.RotationStep {
			return fmt.Errorf("%w: allowed global rotation %d", ErrRotationIndexRange, idx)
		}
	}
	if a.Metadata.Mode == ModeLattice {
		return nil
	}
	t := m.Tolerances
	if t.Position <= 0 || t.AngleDegrees <= 0 || t.EdgeAlignment <= 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidTolerance, t)
	}
	return nil
}

func (a GridArrangement) validateConstraint(c RelationConstraint, geometries map[string]shape.Geometry) error {
	geomA, ok := geometries[c.PieceA]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPiece, c.PieceA)
	}
	geomB, ok := geometries[c.PieceB]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPiece, c.PieceB)
	}
	if c.PieceA == c.PieceB {
		return fmt.Errorf("%w: %q", ErrSelfConstraint, c.PieceA)
	}

	switch c.Kind {
	case KindCornerToCorner:
		if _, ok := geomA.Corner(c.FeatureA); !ok {
			return fmt.Errorf("%w: corner %q on %s", shape.ErrUnknownFeature, c.FeatureA, geomA.Type)
		}
		if _, ok := geomB.Corner(c.FeatureB); !ok {
			return fmt.Errorf("%w: corner %q on %s", shape.ErrUnknownFeature, c.FeatureB, geomB.Type)
		}
		if c.Orientation != OrientationAny {
			return ErrOrientationOnCorner
		}
		if c.OverlapRatioMin != nil {
			return ErrOverlapRatioOnCorner
		}
		if c.Gap != nil && *c.Gap < 0 {
			return fmt.Errorf("%w: %v", ErrNegativeGap, *c.Gap)
		}
	case KindEdgeToEdge:
		if _, ok := geomA.Edge(c.FeatureA); !ok {
			return fmt.Errorf("%w: edge %q on %s", shape.ErrUnknownFeature, c.FeatureA, geomA.Type)
		}
		if _, ok := geomB.Edge(c.FeatureB); !ok {
			return fmt.Errorf("%w: edge %q on %s", shape.ErrUnknownFeature, c.FeatureB, geomB.Type)
		}
		switch c.Orientation {
		case OrientationAny, OrientationSame, OrientationOpposite:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidOrientation, c.Orientation)
		}
		// Gap and overlap ratio can never apply to the same constraint:
		// gap is rejected here so the runtime tie-break stays undefined.
		if c.Gap != nil {
			return ErrGapOnEdge
		}
		if c.OverlapRatioMin != nil && (*c.OverlapRatioMin <= 0 || *c.OverlapRatioMin > 1) {
			return fmt.Errorf("%w: %v", ErrInvalidOverlapRatio, *c.OverlapRatioMin)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, c.Kind)
	}

	if c.RotationIndexDelta != nil && a.Metadata.RotationStep == 0 {
		return ErrRotationDeltaNoStep
	}
	return nil
}
