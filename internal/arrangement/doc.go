// Package arrangement defines the static puzzle definition the validator
// evaluates against: placed elements, the relation-constraint graph, and
// puzzle metadata with tolerances.
//
// Arrangements are authored by the editing tool, persisted externally as
// JSON, and loaded read-only at runtime. Validate performs every
// configuration check once at load time (dangling piece or feature
// references, illegal constraint option combinations, out-of-range rotation
// indices) so evaluation never encounters a malformed definition.
// Rotation is stored as discrete indices, never radians, to avoid
// floating-point drift in persisted data.
package arrangement
