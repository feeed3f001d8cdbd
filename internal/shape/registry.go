package shape

import (
	"errors"
	"fmt"
	"sort"
)

// Registration failures. All are configuration errors surfaced at startup,
// never at evaluation time.
var (
	ErrAlreadyRegistered = errors.New("shape type already registered")
	ErrTooFewVertices    = errors.New("shape needs at least three vertices")
	ErrNotSimple         = errors.New("shape polygon is self-intersecting")
	ErrNotConvex         = errors.New("shape polygon is not convex")
	ErrBadWinding        = errors.New("shape polygon must be counter-clockwise")
	ErrDuplicateFeature  = errors.New("duplicate feature id")
	ErrCornerOutOfRange  = errors.New("corner references a vertex outside the polygon")
	ErrDegenerateEdge    = errors.New("edge has zero length")
	ErrEdgeUnknownCorner = errors.New("edge references an unknown corner")
	ErrOrphanCorner      = errors.New("corner is not referenced by any edge")
	ErrChiralityInvalid  = errors.New("chirality mapping is not an involutive bijection")
)

// Registry holds validated shape geometries keyed by type.
type Registry struct {
	shapes map[Type]Geometry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{shapes: make(map[Type]Geometry)}
}

// Register validates and stores a geometry. It fails on any structural
// defect; a registered geometry never needs re-validation.
func (r *Registry) Register(g Geometry) error {
	if _, exists := r.shapes[g.Type]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, g.Type)
	}
	if err := validateGeometry(g); err != nil {
		return fmt.Errorf("shape %s: %w", g.Type, err)
	}
	r.shapes[g.Type] = g
	return nil
}

// Lookup returns the geometry registered for the type.
func (r *Registry) Lookup(t Type) (Geometry, bool) {
	g, ok := r.shapes[t]
	return g, ok
}

// Types returns the registered types in ascending order.
func (r *Registry) Types() []Type {
	types := make([]Type, 0, len(r.shapes))
	for t := range r.shapes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func validateGeometry(g Geometry) error {
	if len(g.Vertices) < 3 {
		return ErrTooFewVertices
	}
	if !g.Vertices.IsSimple() {
		return ErrNotSimple
	}
	if !g.Vertices.IsCounterClockwise() {
		return ErrBadWinding
	}
	// Overlap detection clips convex polygons; concave shapes would need a
	// decomposition step the engine does not have.
	if !g.Vertices.IsConvex() {
		return ErrNotConvex
	}

	corners := make(map[string]Corner, len(g.Corners))
	for _, c := range g.Corners {
		if _, dup := corners[c.ID]; dup {
			return fmt.Errorf("%w: corner %q", ErrDuplicateFeature, c.ID)
		}
		if c.Vertex < 0 || c.Vertex >= len(g.Vertices) {
			return fmt.Errorf("%w: corner %q vertex %d", ErrCornerOutOfRange, c.ID, c.Vertex)
		}
		corners[c.ID] = c
	}

	referenced := make(map[string]bool, len(corners))
	edges := make(map[string]Edge, len(g.Edges))
	for _, e := range g.Edges {
		if _, dup := edges[e.ID]; dup {
			return fmt.Errorf("%w: edge %q", ErrDuplicateFeature, e.ID)
		}
		if _, dup := corners[e.ID]; dup {
			return fmt.Errorf("%w: %q names both a corner and an edge", ErrDuplicateFeature, e.ID)
		}
		start, ok := corners[e.Start]
		if !ok {
			return fmt.Errorf("%w: edge %q start %q", ErrEdgeUnknownCorner, e.ID, e.Start)
		}
		end, ok := corners[e.End]
		if !ok {
			return fmt.Errorf("%w: edge %q end %q", ErrEdgeUnknownCorner, e.ID, e.End)
		}
		if g.Vertices[start.Vertex].Dist(g.Vertices[end.Vertex]) == 0 {
			return fmt.Errorf("%w: edge %q", ErrDegenerateEdge, e.ID)
		}
		referenced[e.Start] = true
		referenced[e.End] = true
		edges[e.ID] = e
	}

	for _, c := range g.Corners {
		if !referenced[c.ID] {
			return fmt.Errorf("%w: corner %q", ErrOrphanCorner, c.ID)
		}
	}

	return validateChirality(g, corners, edges)
}

// validateChirality checks that the mapping is an involution whose entries
// pair corners with corners and edges with edges.
func validateChirality(g Geometry, corners map[string]Corner, edges map[string]Edge) error {
	for from, to := range g.Chirality {
		_, fromCorner := corners[from]
		_, fromEdge := edges[from]
		if !fromCorner && !fromEdge {
			return fmt.Errorf("%w: maps unknown feature %q", ErrChiralityInvalid, from)
		}
		_, toCorner := corners[to]
		_, toEdge := edges[to]
		if fromCorner && !toCorner {
			return fmt.Errorf("%w: corner %q maps to non-corner %q", ErrChiralityInvalid, from, to)
		}
		if fromEdge && !toEdge {
			return fmt.Errorf("%w: edge %q maps to non-edge %q", ErrChiralityInvalid, from, to)
		}
		if g.Chirality.resolve(to) != from {
			return fmt.Errorf("%w: %q -> %q -> %q", ErrChiralityInvalid, from, to, g.Chirality.resolve(to))
		}
	}
	return nil
}
