package shape

import (
	"errors"
	"fmt"

	"github.com/louisbranch/tangram.space/internal/geometry"
)

// Type identifies a piece shape. The set is closed: arrangements reference
// shapes by type and resolution happens once at load time.
type Type int

const (
	TypeUnspecified Type = iota
	TypeSmallTriangle
	TypeMediumTriangle
	TypeLargeTriangle
	TypeSquare
	TypeParallelogram
)

func (t Type) String() string {
	switch t {
	case TypeUnspecified:
		return "unspecified"
	case TypeSmallTriangle:
		return "small-triangle"
	case TypeMediumTriangle:
		return "medium-triangle"
	case TypeLargeTriangle:
		return "large-triangle"
	case TypeSquare:
		return "square"
	case TypeParallelogram:
		return "parallelogram"
	default:
		return "unknown"
	}
}

// ParseType converts an interchange-format shape name into a Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "small-triangle":
		return TypeSmallTriangle, nil
	case "medium-triangle":
		return TypeMediumTriangle, nil
	case "large-triangle":
		return TypeLargeTriangle, nil
	case "square":
		return TypeSquare, nil
	case "parallelogram":
		return TypeParallelogram, nil
	default:
		return TypeUnspecified, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
}

// ErrUnknownType indicates a shape name or type with no registered geometry.
var ErrUnknownType = errors.New("unknown shape type")

// ErrUnknownFeature indicates a corner or edge id absent from a geometry.
var ErrUnknownFeature = errors.New("unknown feature id")

// Corner is a named vertex of a shape polygon.
type Corner struct {
	ID            string
	Vertex        int     // index into the geometry's vertex list
	InteriorAngle float64 // radians
}

// Edge is a named, directed side of a shape polygon, running from the Start
// corner to the End corner.
type Edge struct {
	ID    string
	Start string
	End   string
}

// Chirality maps corner and edge ids to their counterparts on a mirrored
// piece. It must be a total involutive bijection over the shape's feature
// ids; ids it maps to themselves may be omitted.
type Chirality map[string]string

// resolve returns the mirrored counterpart of id, or id itself when the
// mapping has no entry.
func (c Chirality) resolve(id string) string {
	if mapped, ok := c[id]; ok {
		return mapped
	}
	return id
}

// Geometry is the immutable descriptor of one shape type. Vertices are in a
// canonical local frame (right angle or reference corner at the origin,
// zero orientation along the positive X axis), simple, convex, and wound
// counter-clockwise.
type Geometry struct {
	Type      Type
	Vertices  geometry.Polygon
	Corners   []Corner
	Edges     []Edge
	Center    geometry.Point
	Chirality Chirality
}

// Corner returns the named corner.
func (g Geometry) Corner(id string) (Corner, bool) {
	for _, c := range g.Corners {
		if c.ID == id {
			return c, true
		}
	}
	return Corner{}, false
}

// Edge returns the named edge.
func (g Geometry) Edge(id string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// FeatureID returns the feature id to use for a piece: the chirality
// counterpart when the piece is mirrored, the id unchanged otherwise.
func (g Geometry) FeatureID(id string, mirrored bool) string {
	if !mirrored {
		return id
	}
	return g.Chirality.resolve(id)
}

// CornerPoint returns the corner's position in the piece's local frame,
// reflected across the Y axis when the piece is mirrored.
func (g Geometry) CornerPoint(id string, mirrored bool) (geometry.Point, error) {
	corner, ok := g.Corner(g.FeatureID(id, mirrored))
	if !ok {
		return geometry.Point{}, fmt.Errorf("%w: corner %q on %s", ErrUnknownFeature, id, g.Type)
	}
	p := g.Vertices[corner.Vertex]
	if mirrored {
		p.X = -p.X
	}
	return p, nil
}

// EdgeSegment returns the edge's directed endpoints in the piece's local
// frame, reflected across the Y axis when the piece is mirrored.
func (g Geometry) EdgeSegment(id string, mirrored bool) (start, end geometry.Point, err error) {
	edge, ok := g.Edge(g.FeatureID(id, mirrored))
	if !ok {
		return geometry.Point{}, geometry.Point{}, fmt.Errorf("%w: edge %q on %s", ErrUnknownFeature, id, g.Type)
	}
	start, err = g.CornerPoint(edge.Start, false)
	if err != nil {
		return geometry.Point{}, geometry.Point{}, err
	}
	end, err = g.CornerPoint(edge.End, false)
	if err != nil {
		return geometry.Point{}, geometry.Point{}, err
	}
	if mirrored {
		start.X = -start.X
		end.X = -end.X
	}
	return start, end, nil
}

// EdgeLength returns the length of the named edge.
func (g Geometry) EdgeLength(id string) (float64, error) {
	start, end, err := g.EdgeSegment(id, false)
	if err != nil {
		return 0, err
	}
	return start.Dist(end), nil
}

// LocalPolygon returns the piece's polygon in its local frame, reflected
// across the Y axis when the piece is mirrored. Winding stays
// counter-clockwise either way.
func (g Geometry) LocalPolygon(mirrored bool) geometry.Polygon {
	if mirrored {
		return g.Vertices.Mirror()
	}
	return g.Vertices
}

// featureIDs lists every corner and edge id of the geometry.
func (g Geometry) featureIDs() []string {
	ids := make([]string, 0, len(g.Corners)+len(g.Edges))
	for _, c := range g.Corners {
		ids = append(ids, c.ID)
	}
	for _, e := range g.Edges {
		ids = append(ids, e.ID)
	}
	return ids
}
