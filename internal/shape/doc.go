// Package shape defines the canonical geometry of every piece type: polygon
// vertices in a local frame, named corners and edges, and the chirality
// mapping that relates features to their mirrored counterparts.
//
// Shape descriptors are immutable and registered once at startup. The
// registry rejects malformed descriptors (degenerate edges, corners no edge
// references, chirality mappings that are not involutive bijections) as
// configuration errors so the validator never has to re-check them per
// evaluation. Lookups are by a closed Type enum rather than string keys, so
// resolution happens once at arrangement load time.
package shape
