package geometry

import "math"

// epsilon bounds floating-point noise in polygon predicates. Distances and
// areas below it are treated as zero.
const epsilon = 1e-9

// Polygon is an ordered list of vertices. Shape polygons are simple, convex,
// and wound counter-clockwise; operations that rely on those invariants say
// so explicitly.
type Polygon []Point

// SignedArea returns the polygon's area via the shoelace formula, positive
// for counter-clockwise winding.
func (poly Polygon) SignedArea() float64 {
	if len(poly) < 3 {
		return 0
	}
	sum := 0.0
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		sum += p.Cross(q)
	}
	return sum / 2
}

// Area returns the absolute area of the polygon.
func (poly Polygon) Area() float64 {
	return math.Abs(poly.SignedArea())
}

// Centroid returns the area centroid of the polygon. Degenerate polygons
// fall back to the vertex average.
func (poly Polygon) Centroid() Point {
	area := poly.SignedArea()
	if math.Abs(area) < epsilon {
		var sum Point
		for _, p := range poly {
			sum = sum.Add(p)
		}
		if len(poly) == 0 {
			return Point{}
		}
		return sum.Scale(1 / float64(len(poly)))
	}
	var cx, cy float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		cross := p.Cross(q)
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
	}
	return Point{X: cx / (6 * area), Y: cy / (6 * area)}
}

// IsCounterClockwise reports whether the polygon is wound counter-clockwise.
func (poly Polygon) IsCounterClockwise() bool {
	return poly.SignedArea() > 0
}

// IsSimple reports whether no two non-adjacent edges intersect. It is
// quadratic and intended for registration-time validation only.
func (poly Polygon) IsSimple() bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a1 := poly[i]
		a2 := poly[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip edges sharing a vertex with edge i.
			if j == i || (j+1)%n == i || j == (i+1)%n {
				continue
			}
			b1 := poly[j]
			b2 := poly[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}

// IsConvex reports whether all turns share the same orientation. Collinear
// runs of vertices are tolerated.
func (poly Polygon) IsConvex() bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	sign := 0.0
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%n]
		c := poly[(i+2)%n]
		cross := b.Sub(a).Cross(c.Sub(b))
		if math.Abs(cross) < epsilon {
			continue
		}
		if sign == 0 {
			sign = cross
		} else if sign*cross < 0 {
			return false
		}
	}
	return true
}

// Transform returns the polygon with every vertex mapped through the pose.
func (poly Polygon) Transform(pose Pose) Polygon {
	out := make(Polygon, len(poly))
	for i, p := range poly {
		out[i] = pose.Apply(p)
	}
	return out
}

// Mirror reflects the polygon across the Y axis and reverses the vertex
// order so counter-clockwise winding is preserved.
func (poly Polygon) Mirror() Polygon {
	out := make(Polygon, len(poly))
	for i, p := range poly {
		out[len(poly)-1-i] = Point{X: -p.X, Y: p.Y}
	}
	return out
}

// Separated reports whether two convex polygons are disjoint or touch only
// at their boundaries, using the separating-axis test. A separating axis is
// accepted when the polygons overlap along it by no more than epsilon, so
// shared edges and vertices count as separated.
func Separated(a, b Polygon) bool {
	return hasSeparatingAxis(a, b) || hasSeparatingAxis(b, a)
}

func hasSeparatingAxis(edges, other Polygon) bool {
	n := len(edges)
	for i := 0; i < n; i++ {
		e := edges[(i+1)%n].Sub(edges[i])
		axis := Point{X: -e.Y, Y: e.X}
		if axis.Norm() < epsilon {
			continue
		}
		axis = axis.Unit()
		minA, maxA := project(edges, axis)
		minB, maxB := project(other, axis)
		if minA > maxB-epsilon || minB > maxA-epsilon {
			return true
		}
	}
	return false
}

func project(poly Polygon, axis Point) (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, p := range poly {
		d := p.Dot(axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// IntersectionArea returns the area of overlap between two convex
// counter-clockwise polygons. Contact along a shared edge or vertex yields
// zero. The subject polygon is clipped against each half-plane of the clip
// polygon (Sutherland–Hodgman).
func IntersectionArea(a, b Polygon) float64 {
	if len(a) < 3 || len(b) < 3 {
		return 0
	}
	if Separated(a, b) {
		return 0
	}
	clipped := clipConvex(a, b)
	if len(clipped) < 3 {
		return 0
	}
	return clipped.Area()
}

func clipConvex(subject, clip Polygon) Polygon {
	out := subject
	n := len(clip)
	for i := 0; i < n && len(out) > 0; i++ {
		edgeA := clip[i]
		edgeB := clip[(i+1)%n]
		out = clipAgainstEdge(out, edgeA, edgeB)
	}
	return out
}

// clipAgainstEdge keeps the part of the polygon on the left of the directed
// edge a→b, assuming the clip polygon is counter-clockwise.
func clipAgainstEdge(poly Polygon, a, b Point) Polygon {
	var out Polygon
	n := len(poly)
	for i := 0; i < n; i++ {
		cur := poly[i]
		next := poly[(i+1)%n]
		curIn := sideOf(a, b, cur) >= -epsilon
		nextIn := sideOf(a, b, next) >= -epsilon
		switch {
		case curIn && nextIn:
			out = append(out, next)
		case curIn && !nextIn:
			out = append(out, lineIntersection(a, b, cur, next))
		case !curIn && nextIn:
			out = append(out, lineIntersection(a, b, cur, next), next)
		}
	}
	return out
}

func sideOf(a, b, p Point) float64 {
	return b.Sub(a).Cross(p.Sub(a))
}

// lineIntersection returns the intersection of the infinite line through a,b
// with the segment p,q. Callers guarantee the segment crosses the line.
func lineIntersection(a, b, p, q Point) Point {
	dir := b.Sub(a)
	seg := q.Sub(p)
	denom := dir.Cross(seg)
	if math.Abs(denom) < epsilon {
		return p
	}
	t := dir.Cross(p.Sub(a)) / denom
	return p.Sub(seg.Scale(t))
}

func segmentsIntersect(a1, a2, b1, b2 Point) bool {
	d1 := sideOf(b1, b2, a1)
	d2 := sideOf(b1, b2, a2)
	d3 := sideOf(a1, a2, b1)
	d4 := sideOf(a1, a2, b2)
	if ((d1 > epsilon && d2 < -epsilon) || (d1 < -epsilon && d2 > epsilon)) &&
		((d3 > epsilon && d4 < -epsilon) || (d3 < -epsilon && d4 > epsilon)) {
		return true
	}
	if math.Abs(d1) <= epsilon && onSegment(b1, b2, a1) {
		return true
	}
	if math.Abs(d2) <= epsilon && onSegment(b1, b2, a2) {
		return true
	}
	if math.Abs(d3) <= epsilon && onSegment(a1, a2, b1) {
		return true
	}
	if math.Abs(d4) <= epsilon && onSegment(a1, a2, b2) {
		return true
	}
	return false
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X)-epsilon <= p.X && p.X <= math.Max(a.X, b.X)+epsilon &&
		math.Min(a.Y, b.Y)-epsilon <= p.Y && p.Y <= math.Max(a.Y, b.Y)+epsilon
}

// DistanceToLine returns the perpendicular distance from p to the infinite
// line through a and b. Degenerate lines fall back to point distance.
func DistanceToLine(p, a, b Point) float64 {
	dir := b.Sub(a)
	n := dir.Norm()
	if n < epsilon {
		return p.Dist(a)
	}
	return math.Abs(dir.Cross(p.Sub(a))) / n
}
