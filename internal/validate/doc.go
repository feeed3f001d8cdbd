// Package validate evaluates the relation graph and overlap rules of an
// arrangement against anchor-relative poses.
//
// A Validator is built once per loaded arrangement: configuration is
// checked, every constraint feature is resolved to local-frame geometry for
// both chirality states, and lattice rule scripts are compiled. Evaluate is
// then a pure function of the anchor frame; it holds no cross-call state,
// never short-circuits the constraint loop, and reports every failure with
// a structured reason code rather than a formatted message.
//
// Freeform results are invariant to the figure's absolute position and to
// any allowed global rotation: all geometry is compared in the anchor
// frame, and discrete rotation indices are corrected by the resolved global
// index before deltas are compared.
package validate
