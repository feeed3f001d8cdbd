package shape

import (
	"math"

	"github.com/louisbranch/tangram.space/internal/geometry"
)

// Tangram piece dimensions on the unit scale: the small triangle has legs of
// length 1, and the classic seven-piece square assembles at side 2.
const (
	smallLeg   = 1
	mediumLeg  = math.Sqrt2
	largeLeg   = 2
	squareSide = math.Sqrt2 / 2
)

// DefaultCatalog returns a registry holding the tangram piece set. The
// catalog is static; a registration failure is a programming error.
func DefaultCatalog() *Registry {
	r := NewRegistry()
	for _, g := range []Geometry{
		rightTriangle(TypeSmallTriangle, smallLeg),
		rightTriangle(TypeMediumTriangle, mediumLeg),
		rightTriangle(TypeLargeTriangle, largeLeg),
		squareGeometry(),
		parallelogramGeometry(),
	} {
		if err := r.Register(g); err != nil {
			panic("shape: invalid catalog geometry: " + err.Error())
		}
	}
	return r
}

// rightTriangle builds an isosceles right triangle with its right angle at
// the origin and legs along the positive axes. Mirroring swaps the legs and
// the acute corners; the shape is its own mirror image up to rotation.
func rightTriangle(t Type, leg float64) Geometry {
	vertices := geometry.Polygon{
		{X: 0, Y: 0},
		{X: leg, Y: 0},
		{X: 0, Y: leg},
	}
	return Geometry{
		Type:     t,
		Vertices: vertices,
		Corners: []Corner{
			{ID: "right", Vertex: 0, InteriorAngle: math.Pi / 2},
			{ID: "acute-a", Vertex: 1, InteriorAngle: math.Pi / 4},
			{ID: "acute-b", Vertex: 2, InteriorAngle: math.Pi / 4},
		},
		Edges: []Edge{
			{ID: "leg-a", Start: "right", End: "acute-a"},
			{ID: "hypotenuse", Start: "acute-a", End: "acute-b"},
			{ID: "leg-b", Start: "acute-b", End: "right"},
		},
		Center: vertices.Centroid(),
		Chirality: Chirality{
			"acute-a": "acute-b",
			"acute-b": "acute-a",
			"leg-a":   "leg-b",
			"leg-b":   "leg-a",
		},
	}
}

func squareGeometry() Geometry {
	vertices := geometry.Polygon{
		{X: 0, Y: 0},
		{X: squareSide, Y: 0},
		{X: squareSide, Y: squareSide},
		{X: 0, Y: squareSide},
	}
	return Geometry{
		Type:     TypeSquare,
		Vertices: vertices,
		Corners: []Corner{
			{ID: "sw", Vertex: 0, InteriorAngle: math.Pi / 2},
			{ID: "se", Vertex: 1, InteriorAngle: math.Pi / 2},
			{ID: "ne", Vertex: 2, InteriorAngle: math.Pi / 2},
			{ID: "nw", Vertex: 3, InteriorAngle: math.Pi / 2},
		},
		Edges: []Edge{
			{ID: "south", Start: "sw", End: "se"},
			{ID: "east", Start: "se", End: "ne"},
			{ID: "north", Start: "ne", End: "nw"},
			{ID: "west", Start: "nw", End: "sw"},
		},
		Center: vertices.Centroid(),
		Chirality: Chirality{
			"sw": "se", "se": "sw",
			"ne": "nw", "nw": "ne",
			"east": "west", "west": "east",
		},
	}
}

// parallelogramGeometry builds the one genuinely chiral tangram piece: a 45°
// parallelogram with sides 1 and √2/2. Its mirror image is not reachable by
// rotation, so flipped placements rely on the chirality mapping.
func parallelogramGeometry() Geometry {
	rise := squareSide * math.Sqrt2 / 2 // = 1/2
	vertices := geometry.Polygon{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 1 + rise, Y: rise},
		{X: rise, Y: rise},
	}
	return Geometry{
		Type:     TypeParallelogram,
		Vertices: vertices,
		Corners: []Corner{
			{ID: "acute-a", Vertex: 0, InteriorAngle: math.Pi / 4},
			{ID: "obtuse-b", Vertex: 1, InteriorAngle: 3 * math.Pi / 4},
			{ID: "acute-c", Vertex: 2, InteriorAngle: math.Pi / 4},
			{ID: "obtuse-d", Vertex: 3, InteriorAngle: 3 * math.Pi / 4},
		},
		Edges: []Edge{
			{ID: "south", Start: "acute-a", End: "obtuse-b"},
			{ID: "east", Start: "obtuse-b", End: "acute-c"},
			{ID: "north", Start: "acute-c", End: "obtuse-d"},
			{ID: "west", Start: "obtuse-d", End: "acute-a"},
		},
		Center: vertices.Centroid(),
		Chirality: Chirality{
			"obtuse-b": "obtuse-d", "obtuse-d": "obtuse-b",
			"south": "north", "north": "south",
			"east": "west", "west": "east",
		},
	}
}
