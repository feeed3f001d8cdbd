// Package win ties the pose source, anchor manager, and constraint
// validator into one per-evaluation call. The orchestrator is stateless
// beyond references to its collaborators; authoring preview and runtime win
// detection share the same code path.
package win
