// Package lattice validates discrete-grid arrangements. Unlike freeform
// mode there is no transform invariance: pieces occupy integer cells and
// validation is a direct comparison of cell indices.
//
// Cell uniqueness is built in. Adjacency and any further rules are supplied
// externally as a Lua script defining a check(placements) function; the
// script receives every placement's id, shape, cell, and rotation index and
// returns a list of violations. A compiled RuleSet owns its Lua state and is
// not safe for concurrent use; arrangements compile their own.
package lattice
