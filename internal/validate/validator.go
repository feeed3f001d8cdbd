package validate

import (
	"fmt"
	"math"

	"github.com/louisbranch/tangram.space/internal/anchor"
	"github.com/louisbranch/tangram.space/internal/arrangement"
	"github.com/louisbranch/tangram.space/internal/geometry"
	"github.com/louisbranch/tangram.space/internal/lattice"
	"github.com/louisbranch/tangram.space/internal/shape"
)

// nearMissFactor scales the position tolerance into the radius within which
// a failed coincidence still yields a hint.
const nearMissFactor = 3

// Options carries per-evaluation settings supplied by the caller.
type Options struct {
	// GlobalMirror marks the snapshot as observed through a mirrored world.
	// When the arrangement allows a global mirror the validator compensates
	// and evaluates as if the world were upright; otherwise every piece's
	// effective chirality flips and asymmetric constraints fail
	// geometrically.
	GlobalMirror bool
}

// Validator evaluates one immutable arrangement against pose frames.
type Validator struct {
	arr         arrangement.GridArrangement
	elements    map[string]arrangement.PlacedElement
	geometries  map[string]shape.Geometry
	constraints []compiledConstraint
	rules       *lattice.RuleSet
}

// compiledConstraint is a RelationConstraint with its features resolved to
// local-frame geometry for both chirality states, indexed by mirrorSide.
type compiledConstraint struct {
	spec    arrangement.RelationConstraint
	cornerA [2]geometry.Point
	cornerB [2]geometry.Point
	edgeA   [2][2]geometry.Point
	edgeB   [2][2]geometry.Point
}

func mirrorSide(mirrored bool) int {
	if mirrored {
		return 1
	}
	return 0
}

// New validates the arrangement against the registry and builds a
// validator for it. Feature resolution and lattice rule compilation happen
// here, once; Evaluate does no configuration work.
func New(arr arrangement.GridArrangement, registry *shape.Registry) (*Validator, error) {
	if err := arr.Validate(registry); err != nil {
		return nil, fmt.Errorf("arrangement %q: %w", arr.ID, err)
	}

	v := &Validator{
		arr:        arr,
		elements:   make(map[string]arrangement.PlacedElement, len(arr.Elements)),
		geometries: make(map[string]shape.Geometry, len(arr.Elements)),
	}
	for _, el := range arr.Elements {
		typ, err := shape.ParseType(el.Shape)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", el.ID, err)
		}
		g, ok := registry.Lookup(typ)
		if !ok {
			return nil, fmt.Errorf("element %q: %w: %s", el.ID, shape.ErrUnknownType, typ)
		}
		v.elements[el.ID] = el
		v.geometries[el.ID] = g
	}

	if arr.Metadata.Mode == arrangement.ModeLattice {
		rules, err := lattice.Compile(arr.LatticeRules)
		if err != nil {
			return nil, fmt.Errorf("arrangement %q: %w", arr.ID, err)
		}
		v.rules = rules
		return v, nil
	}

	for _, c := range arr.Constraints {
		cc, err := v.compileConstraint(c)
		if err != nil {
			return nil, fmt.Errorf("constraint %q: %w", c.ID, err)
		}
		v.constraints = append(v.constraints, cc)
	}
	return v, nil
}

// Arrangement returns the arrangement this validator was built for.
func (v *Validator) Arrangement() arrangement.GridArrangement { return v.arr }

func (v *Validator) compileConstraint(c arrangement.RelationConstraint) (compiledConstraint, error) {
	cc := compiledConstraint{spec: c}
	geomA := v.geometries[c.PieceA]
	geomB := v.geometries[c.PieceB]
	for _, mirrored := range []bool{false, true} {
		side := mirrorSide(mirrored)
		switch c.Kind {
		case arrangement.KindCornerToCorner:
			pa, err := cornerLocal(geomA, c.FeatureA, mirrored, c.MirrorAware)
			if err != nil {
				return cc, err
			}
			pb, err := cornerLocal(geomB, c.FeatureB, mirrored, c.MirrorAware)
			if err != nil {
				return cc, err
			}
			cc.cornerA[side], cc.cornerB[side] = pa, pb
		case arrangement.KindEdgeToEdge:
			start, end, err := edgeLocal(geomA, c.FeatureA, mirrored, c.MirrorAware)
			if err != nil {
				return cc, err
			}
			cc.edgeA[side] = [2]geometry.Point{start, end}
			start, end, err = edgeLocal(geomB, c.FeatureB, mirrored, c.MirrorAware)
			if err != nil {
				return cc, err
			}
			cc.edgeB[side] = [2]geometry.Point{start, end}
		}
	}
	return cc, nil
}

// cornerLocal returns the corner's local-frame position. Mirror-aware
// lookups route the id through the chirality mapping; unaware lookups keep
// the id and only reflect the position.
func cornerLocal(g shape.Geometry, id string, mirrored, aware bool) (geometry.Point, error) {
	if aware {
		return g.CornerPoint(id, mirrored)
	}
	corner, ok := g.Corner(id)
	if !ok {
		return geometry.Point{}, fmt.Errorf("%w: corner %q on %s", shape.ErrUnknownFeature, id, g.Type)
	}
	p := g.Vertices[corner.Vertex]
	if mirrored {
		p.X = -p.X
	}
	return p, nil
}

func edgeLocal(g shape.Geometry, id string, mirrored, aware bool) (start, end geometry.Point, err error) {
	if aware {
		return g.EdgeSegment(id, mirrored)
	}
	edge, ok := g.Edge(id)
	if !ok {
		return geometry.Point{}, geometry.Point{}, fmt.Errorf("%w: edge %q on %s", shape.ErrUnknownFeature, id, g.Type)
	}
	start, err = cornerLocal(g, edge.Start, mirrored, false)
	if err != nil {
		return geometry.Point{}, geometry.Point{}, err
	}
	end, err = cornerLocal(g, edge.End, mirrored, false)
	if err != nil {
		return geometry.Point{}, geometry.Point{}, err
	}
	return start, end, nil
}

// Evaluate produces the validation result for one anchor frame. Freeform
// evaluation cannot error; lattice evaluation surfaces rule script
// failures.
func (v *Validator) Evaluate(frame anchor.Frame, opts Options) (Result, error) {
	if v.arr.Metadata.Mode == arrangement.ModeLattice {
		return v.evaluateLattice()
	}
	return v.evaluateFreeform(frame, opts), nil
}

func (v *Validator) evaluateLattice() (Result, error) {
	placements := make([]lattice.Placement, 0, len(v.arr.Elements))
	for _, el := range v.arr.Elements {
		placements = append(placements, lattice.Placement{
			PieceID:       el.ID,
			Shape:         el.Shape,
			Col:           el.Cell.Col,
			Row:           el.Cell.Row,
			RotationIndex: el.RotationIndex,
		})
	}
	violations := lattice.CheckUnique(placements)
	fromRules, err := v.rules.Check(placements)
	if err != nil {
		return Result{}, err
	}
	violations = append(violations, fromRules...)
	return Result{
		Passed:              len(violations) == 0,
		GlobalRotationIndex: -1,
		LatticeViolations:   violations,
	}, nil
}

func (v *Validator) evaluateFreeform(frame anchor.Frame, opts Options) Result {
	res := Result{AnchorID: frame.AnchorID, GlobalRotationIndex: -1}

	world, rel := frame.World, frame.Relative
	compensate := opts.GlobalMirror && v.arr.Metadata.AllowGlobalMirror
	if compensate {
		world = mirrorPoses(world)
		rel = mirrorPoses(rel)
	}
	flip := opts.GlobalMirror && !compensate

	for _, el := range v.arr.Elements {
		if _, present := rel[el.ID]; !present {
			res.MissingPieces = append(res.MissingPieces, el.ID)
		}
	}

	if step := v.arr.Metadata.RotationStep; step > 0 {
		el, refPose, ok := v.rotationReference(frame.AnchorID, world)
		if !ok {
			res.GlobalReason = ReasonGlobalRotationUnresolved
			return res
		}
		idx, resolved := resolveIndex(refPose.Theta, step, v.angleTolerance())
		if !resolved {
			res.GlobalReason = ReasonGlobalRotationUnresolved
			return res
		}
		g := modStep(idx-el.RotationIndex, step)
		res.GlobalRotationIndex = g
		if !v.globalRotationAllowed(g) {
			res.GlobalReason = ReasonGlobalRotationNotAllowed
			return res
		}
		res.RotationResolved = true
	}

	for _, cc := range v.constraints {
		v.evaluateConstraint(cc, world, rel, flip, &res)
	}
	v.checkOverlaps(rel, flip, &res)

	res.Passed = res.GlobalReason == "" && len(res.Violated) == 0 && len(res.Overlaps) == 0
	return res
}

// rotationReference picks the piece whose authored rotation index anchors
// global rotation resolution: the anchor when it is an arrangement element,
// otherwise the first present element.
func (v *Validator) rotationReference(anchorID string, world map[string]geometry.Pose) (arrangement.PlacedElement, geometry.Pose, bool) {
	if el, ok := v.elements[anchorID]; ok {
		if p, present := world[anchorID]; present {
			return el, p, true
		}
	}
	for _, el := range v.arr.Elements {
		if p, present := world[el.ID]; present {
			return el, p, true
		}
	}
	return arrangement.PlacedElement{}, geometry.Pose{}, false
}

func (v *Validator) globalRotationAllowed(g int) bool {
	allowed := v.arr.Metadata.AllowedGlobalRotations
	if len(allowed) == 0 {
		return true
	}
	for _, idx := range allowed {
		if idx == g {
			return true
		}
	}
	return false
}

func (v *Validator) evaluateConstraint(cc compiledConstraint, world, rel map[string]geometry.Pose, flip bool, res *Result) {
	c := cc.spec
	poseA, presentA := rel[c.PieceA]
	poseB, presentB := rel[c.PieceB]
	if !presentA || !presentB {
		res.violate(c.ID, ReasonPieceMissing)
		return
	}
	mirA := v.elements[c.PieceA].Mirrored != flip
	mirB := v.elements[c.PieceB].Mirrored != flip

	switch c.Kind {
	case arrangement.KindCornerToCorner:
		v.evaluateCorner(cc, poseA, poseB, mirA, mirB, res)
	case arrangement.KindEdgeToEdge:
		v.evaluateEdge(cc, poseA, poseB, mirA, mirB, res)
	}

	// The rotation delta is an independent condition; a geometric failure
	// does not suppress it, so diagnostics stay complete.
	if c.RotationIndexDelta == nil {
		return
	}

	step := v.arr.Metadata.RotationStep
	idxA, okA := resolveIndex(world[c.PieceA].Theta, step, v.angleTolerance())
	idxB, okB := resolveIndex(world[c.PieceB].Theta, step, v.angleTolerance())
	switch {
	case !okA || !okB:
		res.violate(c.ID, ReasonRotationUnresolved)
	case modStep(idxB-idxA, step) != modStep(*c.RotationIndexDelta, step):
		res.violate(c.ID, ReasonRotationDelta)
	}
}

func (v *Validator) evaluateCorner(cc compiledConstraint, poseA, poseB geometry.Pose, mirA, mirB bool, res *Result) bool {
	c := cc.spec
	tol := v.arr.Metadata.Tolerances
	pa := poseA.Apply(cc.cornerA[mirrorSide(mirA)])
	pb := poseB.Apply(cc.cornerB[mirrorSide(mirB)])

	miss := pa.Dist(pb)
	reason := ReasonCornerMismatch
	if c.Gap != nil {
		miss = math.Abs(miss - *c.Gap)
		reason = ReasonGapMismatch
	}
	if miss > tol.Position {
		res.violate(c.ID, reason)
		if miss <= nearMissFactor*tol.Position {
			res.Hints = append(res.Hints, Hint{ConstraintID: c.ID, Distance: miss})
		}
		return false
	}
	return true
}

func (v *Validator) evaluateEdge(cc compiledConstraint, poseA, poseB geometry.Pose, mirA, mirB bool, res *Result) bool {
	c := cc.spec
	tol := v.arr.Metadata.Tolerances
	ea := cc.edgeA[mirrorSide(mirA)]
	eb := cc.edgeB[mirrorSide(mirB)]
	a0, a1 := poseA.Apply(ea[0]), poseA.Apply(ea[1])
	b0, b1 := poseB.Apply(eb[0]), poseB.Apply(eb[1])

	if geometry.DistanceToLine(b0, a0, a1) > tol.EdgeAlignment ||
		geometry.DistanceToLine(b1, a0, a1) > tol.EdgeAlignment ||
		geometry.DistanceToLine(a0, b0, b1) > tol.EdgeAlignment ||
		geometry.DistanceToLine(a1, b0, b1) > tol.EdgeAlignment {
		res.violate(c.ID, ReasonEdgeNotCollinear)
		return false
	}

	dirA := a1.Sub(a0).Unit()
	dirB := b1.Sub(b0).Unit()
	cosTol := math.Cos(v.angleTolerance())
	dot := dirA.Dot(dirB)
	switch c.Orientation {
	case arrangement.OrientationSame:
		if dot < cosTol {
			res.violate(c.ID, ReasonEdgeOrientation)
			return false
		}
	case arrangement.OrientationOpposite:
		if dot > -cosTol {
			res.violate(c.ID, ReasonEdgeOrientation)
			return false
		}
	}

	if c.OverlapRatioMin != nil {
		// Project both segments onto edge A's line and intersect the spans.
		tA := a1.Sub(a0).Dot(dirA)
		tB0 := b0.Sub(a0).Dot(dirA)
		tB1 := b1.Sub(a0).Dot(dirA)
		loA, hiA := math.Min(0, tA), math.Max(0, tA)
		loB, hiB := math.Min(tB0, tB1), math.Max(tB0, tB1)
		overlap := math.Min(hiA, hiB) - math.Max(loA, loB)
		minLen := math.Min(hiA-loA, hiB-loB)
		if overlap < *c.OverlapRatioMin*minLen-tol.Position {
			res.violate(c.ID, ReasonEdgeOverlapRatio)
			return false
		}
		return true
	}

	closest := math.Inf(1)
	for _, pa := range [2]geometry.Point{a0, a1} {
		for _, pb := range [2]geometry.Point{b0, b1} {
			closest = math.Min(closest, pa.Dist(pb))
		}
	}
	if closest > tol.Position {
		res.violate(c.ID, ReasonEdgeEndpointsApart)
		if closest <= nearMissFactor*tol.Position {
			res.Hints = append(res.Hints, Hint{ConstraintID: c.ID, Distance: closest})
		}
		return false
	}
	return true
}

// checkOverlaps intersects every present pair of pieces in the anchor
// frame. Shared edges and vertices produce zero area; the threshold only
// absorbs clipping noise commensurate with the position tolerance.
func (v *Validator) checkOverlaps(rel map[string]geometry.Pose, flip bool, res *Result) {
	areaEps := 0.25 * v.arr.Metadata.Tolerances.Position * v.arr.Metadata.Tolerances.Position

	type placed struct {
		id   string
		poly geometry.Polygon
	}
	pieces := make([]placed, 0, len(v.arr.Elements))
	for _, el := range v.arr.Elements {
		p, present := rel[el.ID]
		if !present {
			continue
		}
		poly := v.geometries[el.ID].LocalPolygon(el.Mirrored != flip).Transform(p)
		pieces = append(pieces, placed{id: el.ID, poly: poly})
	}
	for i := 0; i < len(pieces); i++ {
		for j := i + 1; j < len(pieces); j++ {
			area := geometry.IntersectionArea(pieces[i].poly, pieces[j].poly)
			if area > areaEps {
				res.Overlaps = append(res.Overlaps, Overlap{
					PieceA: pieces[i].id,
					PieceB: pieces[j].id,
					Area:   area,
				})
			}
		}
	}
}

func (v *Validator) angleTolerance() float64 {
	return v.arr.Metadata.Tolerances.AngleDegrees * math.Pi / 180
}

// resolveIndex maps a continuous angle to the discrete rotation index
// within the angle tolerance, reporting failure rather than snapping to the
// nearest step.
func resolveIndex(theta float64, step int, angleTol float64) (int, bool) {
	stepAngle := 2 * math.Pi / float64(step)
	for i := 0; i < step; i++ {
		if math.Abs(geometry.AngleDiff(float64(i)*stepAngle, theta)) <= angleTol {
			return i, true
		}
	}
	return 0, false
}

func modStep(a, step int) int {
	return ((a % step) + step) % step
}

func mirrorPoses(in map[string]geometry.Pose) map[string]geometry.Pose {
	out := make(map[string]geometry.Pose, len(in))
	for id, p := range in {
		out[id] = p.Mirror()
	}
	return out
}
