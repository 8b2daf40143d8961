// Package pipeline runs the depth-one prefetch state machine that feeds the
// game.
//
// A Pipeline owns the remaining title queue, the current entry and at most one
// background computation for the next title. Start resolves the first title
// and kicks off the second; each Advance waits for the in-flight title,
// exposes it, and kicks off the one after. Calls to Start and Advance are
// serialized, so overlapping UI events each perform exactly one transition.
//
// Background computations are never cancelled: a title whose generation has
// started always finishes and lands in the cache even if nobody advances to
// it. Wait blocks until the outstanding computation is done.
//
// States:
//
//	Empty     -> Start -> Primed (next in flight) | Exhausted (nothing left)
//	Primed    -> Advance -> Advancing -> Primed | Exhausted
//	Exhausted -> Advance reports exhaustion, no error
//
// A failed title is still consumed: its error is returned from the call that
// exposed it and the pipeline moves on to the following title.
package pipeline
