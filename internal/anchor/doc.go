// Package anchor selects the reference piece for each evaluation and
// expresses every other piece's pose relative to it.
//
// Relative poses are recomputed from the world snapshot on every call and
// never chained from a previous frame's relatives; chaining would accumulate
// floating-point error across evaluations. The only state a manager carries
// is its selection policy's history (the current anchor and, in tracking
// mode, hysteresis bookkeeping), which is why one manager instance belongs
// to exactly one active arrangement.
package anchor
